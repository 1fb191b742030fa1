// Package memory is an in-process PlayerRepository. It backs the "memory" storage
// driver for local runs and gives service tests a real store without containers.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

// Store keeps players in a map guarded by a RWMutex. Every value crossing the
// boundary is a clone, so callers never share slices with the store.
type Store struct {
	mu      sync.RWMutex
	players map[int64]model.Player
	now     func() time.Time
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		players: make(map[int64]model.Player),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) GetByID(_ context.Context, id int64) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Store) List(_ context.Context, q repository.ListQuery) (repository.PageResult[model.Player], error) {
	s.mu.RLock()
	matched := s.filterLocked(q.Filter)
	s.mu.RUnlock()

	sortPlayers(matched, q.Sort)

	res := repository.PageResult[model.Player]{Total: int64(len(matched)), Items: []model.Player{}}
	start := min(max(q.Page.Offset, 0), len(matched))
	end := len(matched)
	if q.Page.Limit > 0 {
		end = min(start+q.Page.Limit, len(matched))
	}
	res.Items = append(res.Items, matched[start:end]...)
	return res, nil
}

func (s *Store) Count(_ context.Context, f repository.PlayerFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filterLocked(f))), nil
}

func (s *Store) All(_ context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterLocked(repository.PlayerFilter{}), nil
}

func (s *Store) Heights(_ context.Context) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]float64, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, float64(p.Data.Height))
	}
	return out, nil
}

func (s *Store) ExistsByIDOrShortname(_ context.Context, id int64, shortname string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.players[id]; ok {
		return true, nil
	}
	return s.shortnameHeldLocked(shortname, id), nil
}

func (s *Store) ShortnameTaken(_ context.Context, shortname string, exceptID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shortnameHeldLocked(shortname, exceptID), nil
}

func (s *Store) Create(_ context.Context, p model.Player) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked(p, false); err != nil {
		return model.Player{}, err
	}
	now := s.now()
	p = p.Clone()
	p.CreatedAt, p.UpdatedAt = now, now
	s.players[p.ID] = p
	return p.Clone(), nil
}

// CreateMany inserts all players or none.
func (s *Store) CreateMany(_ context.Context, ps []model.Player) ([]model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[int64]bool, len(ps))
	shorts := make(map[string]bool, len(ps))
	for _, p := range ps {
		if ids[p.ID] || shorts[p.Shortname] {
			return nil, repository.ErrAlreadyExists
		}
		ids[p.ID], shorts[p.Shortname] = true, true
		if err := s.checkUniqueLocked(p, false); err != nil {
			return nil, err
		}
	}

	now := s.now()
	out := make([]model.Player, 0, len(ps))
	for _, p := range ps {
		p = p.Clone()
		p.CreatedAt, p.UpdatedAt = now, now
		s.players[p.ID] = p
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *Store) Replace(_ context.Context, p model.Player) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.players[p.ID]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	if err := s.checkUniqueLocked(p, true); err != nil {
		return model.Player{}, err
	}
	p = p.Clone()
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now()
	s.players[p.ID] = p
	return p.Clone(), nil
}

func (s *Store) Update(_ context.Context, id int64, u model.PlayerUpdate) (model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.players[id]
	if !ok {
		return model.Player{}, repository.ErrNotFound
	}
	next := u.Apply(cur)
	if u.Shortname != nil {
		if err := s.checkUniqueLocked(next, true); err != nil {
			return model.Player{}, err
		}
	}
	next.UpdatedAt = s.now()
	s.players[id] = next
	return next.Clone(), nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.players, id)
	return nil
}

// checkUniqueLocked mirrors the unique indexes of the real stores.
// With existing=true the player's own id is allowed to be present.
func (s *Store) checkUniqueLocked(p model.Player, existing bool) error {
	if _, ok := s.players[p.ID]; ok && !existing {
		return repository.ErrAlreadyExists
	}
	if s.shortnameHeldLocked(p.Shortname, p.ID) {
		return repository.ErrAlreadyExists
	}
	return nil
}

// shortnameHeldLocked reports whether a player other than exceptID holds shortname.
func (s *Store) shortnameHeldLocked(shortname string, exceptID int64) bool {
	for id, p := range s.players {
		if id != exceptID && p.Shortname == shortname {
			return true
		}
	}
	return false
}

func (s *Store) filterLocked(f repository.PlayerFilter) []model.Player {
	out := make([]model.Player, 0, len(s.players))
	for _, p := range s.players {
		if f.CountryCode != "" && !strings.EqualFold(p.Country.Code, f.CountryCode) {
			continue
		}
		if f.Sex != "" && p.Sex != f.Sex {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

func sortPlayers(ps []model.Player, s repository.Sort) {
	if s.Field == "" {
		s = repository.DefaultSort
	}
	slices.SortStableFunc(ps, func(a, b model.Player) int {
		c := compareField(a, b, s.Field)
		if s.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareField(a, b model.Player, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "firstname":
		return cmp.Compare(a.Firstname, b.Firstname)
	case "lastname":
		return cmp.Compare(a.Lastname, b.Lastname)
	case "shortname":
		return cmp.Compare(a.Shortname, b.Shortname)
	case "sex":
		return cmp.Compare(a.Sex, b.Sex)
	case "country.code":
		return cmp.Compare(a.Country.Code, b.Country.Code)
	case "data.rank":
		return cmp.Compare(a.Data.Rank, b.Data.Rank)
	case "data.points":
		return cmp.Compare(a.Data.Points, b.Data.Points)
	case "data.weight":
		return cmp.Compare(a.Data.Weight, b.Data.Weight)
	case "data.height":
		return cmp.Compare(a.Data.Height, b.Data.Height)
	case "data.age":
		return cmp.Compare(a.Data.Age, b.Data.Age)
	}
	return 0
}

var _ repository.PlayerRepository = (*Store)(nil)
