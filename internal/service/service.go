// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

// MergeMode selects how partial updates of nested objects reach the store.
type MergeMode string

const (
	// MergeReadModifyWrite reads the current record and writes the merged sub-document.
	// Two concurrent patches of the same sub-document may lose one update.
	MergeReadModifyWrite MergeMode = "read_modify_write"
	// MergeAtomic sends only the provided sub-fields in one field-scoped store update.
	MergeAtomic MergeMode = "atomic"
)

// MutationRecorder observes successful writes; metrics.Recorder implements it.
type MutationRecorder interface {
	PlayerMutation(op string, n int)
}

// Options tune the player service. Zero values fall back to defaults.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	MaxBulk      int
	MergeMode    MergeMode
	Recorder     MutationRecorder
}

func (o Options) withDefaults() Options {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = repository.DefaultPageLimit
	}
	if o.MaxLimit < o.DefaultLimit {
		o.MaxLimit = max(100, o.DefaultLimit)
	}
	if o.MaxBulk <= 0 {
		o.MaxBulk = 500
	}
	if o.MergeMode != MergeAtomic {
		o.MergeMode = MergeReadModifyWrite
	}
	return o
}

// ListParams are the raw listing parameters. Page and Limit below 1 take defaults.
type ListParams struct {
	Page    int
	Limit   int
	Sort    string
	Country string
	Sex     string
}

// PlayerService defines player-oriented use cases.
type PlayerService interface {
	ListPlayers(ctx context.Context, p ListParams) (model.PlayerPage, error)
	GetPlayer(ctx context.Context, id int64) (model.Player, error)
	CreatePlayer(ctx context.Context, in model.PlayerInput) (model.Player, error)
	CreatePlayers(ctx context.Context, in []model.PlayerInput) ([]model.Player, error)
	ReplacePlayer(ctx context.Context, id int64, in model.PlayerInput) (model.Player, error)
	UpdateRank(ctx context.Context, id int64, rank int) (model.Player, error)
	UpdateStats(ctx context.Context, id int64, stats model.StatsUpdate) (model.Player, error)
	UpdatePartial(ctx context.Context, id int64, in model.PlayerInput) (model.Player, error)
	DeletePlayer(ctx context.Context, id int64) (model.DeleteResult, error)
}

// AnalyticsService defines aggregate statistics over all players.
type AnalyticsService interface {
	BestAndWorstCountry(ctx context.Context) (model.CountryReport, error)
	PlayersBMI(ctx context.Context) (model.BMIReport, error)
	HeightStats(ctx context.Context) (model.HeightStats, error)
}
