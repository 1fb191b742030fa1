package repository

import (
	"context"

	"github.com/maxviazov/tennis-players-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// PlayerRepository declares persistence operations for players.
// Implementations return ErrNotFound for a missing id and ErrAlreadyExists when a
// write hits the id or shortname uniqueness constraint. Everything else is a system failure.
type PlayerRepository interface {
	Pinger

	GetByID(ctx context.Context, id int64) (model.Player, error)
	// List applies filter, sort and window and also reports the total number of matches.
	List(ctx context.Context, q ListQuery) (PageResult[model.Player], error)
	Count(ctx context.Context, f PlayerFilter) (int64, error)
	// All returns every stored player, unordered. Analytics work on the whole set.
	All(ctx context.Context) ([]model.Player, error)
	// Heights returns data.height of every player whose height is stored as a number.
	Heights(ctx context.Context) ([]float64, error)

	ExistsByIDOrShortname(ctx context.Context, id int64, shortname string) (bool, error)
	// ShortnameTaken reports whether a player other than exceptID owns shortname.
	ShortnameTaken(ctx context.Context, shortname string, exceptID int64) (bool, error)

	Create(ctx context.Context, p model.Player) (model.Player, error)
	CreateMany(ctx context.Context, ps []model.Player) ([]model.Player, error)
	// Replace overwrites every client-owned field of an existing player. CreatedAt is kept.
	Replace(ctx context.Context, p model.Player) (model.Player, error)
	// Update applies a field-scoped change in a single write and returns the new state.
	Update(ctx context.Context, id int64, u model.PlayerUpdate) (model.Player, error)
	Delete(ctx context.Context, id int64) error
}
