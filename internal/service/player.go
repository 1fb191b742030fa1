package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

const (
	msgDuplicate        = "Player with same ID or shortname already exists"
	msgShortnameTaken   = "Another player with this shortname exists"
	msgIDImmutable      = "Player ID cannot be modified"
	msgNoStatsFields    = "No valid stats fields provided"
	msgNoPartialFields  = "No valid fields provided for update"
	msgRankNotPositive  = "Rank must be a positive number"
	msgBatchDuplication = "Batch contains the same ID or shortname more than once"
)

type playerService struct {
	players repository.PlayerRepository
	opts    Options
	log     zerolog.Logger
}

func NewPlayerService(players repository.PlayerRepository, opts Options, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{players: players, opts: opts.withDefaults(), log: l}
}

func (s *playerService) ListPlayers(ctx context.Context, p ListParams) (model.PlayerPage, error) {
	q, page, err := s.listQuery(p)
	if err != nil {
		return model.PlayerPage{}, err
	}
	res, err := s.players.List(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Int("limit", q.Page.Limit).Int("offset", q.Page.Offset).Msg("list players failed")
		return model.PlayerPage{}, internal("failed to list players", err)
	}

	limit := q.Page.Limit
	out := model.PlayerPage{
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((res.Total + int64(limit) - 1) / int64(limit)),
		Players:    res.Items,
	}
	if out.Players == nil {
		out.Players = []model.Player{}
	}
	return out, nil
}

// listQuery normalizes paging (page 1, configured default limit, capped at max)
// and validates sort and filters.
func (s *playerService) listQuery(p ListParams) (repository.ListQuery, int, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	// (page-1)*limit must stay representable; anything past it is empty anyway.
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}

	var ferrs []FieldError
	sort, ok := repository.ParseSort(p.Sort)
	if !ok {
		ferrs = append(ferrs, FieldError{Field: "sort", Message: fmt.Sprintf("Cannot sort by %q", p.Sort)})
	}
	country := strings.ToUpper(strings.TrimSpace(p.Country))
	if country != "" && len([]rune(country)) != 3 {
		ferrs = append(ferrs, FieldError{Field: "country", Message: "Country code must be exactly 3 letters"})
	}
	sex := strings.TrimSpace(p.Sex)
	if sex != "" && sex != "M" && sex != "F" {
		ferrs = append(ferrs, FieldError{Field: "sex", Message: `Sex must be "M" or "F"`})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return repository.ListQuery{}, 0, err
	}

	return repository.ListQuery{
		Filter: repository.PlayerFilter{CountryCode: country, Sex: sex},
		Sort:   sort,
		Page:   repository.Page{Limit: limit, Offset: (page - 1) * limit},
	}, page, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int64) (model.Player, error) {
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return model.Player{}, s.storeErr("get player", id, err)
	}
	return p, nil
}

func (s *playerService) CreatePlayer(ctx context.Context, in model.PlayerInput) (model.Player, error) {
	start := time.Now()
	if err := ValidatePlayerObject(&in, false); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("player validation failed")
		return model.Player{}, err
	}
	p := in.ToPlayer()

	// One combined lookup gives a clear message before the unique index has to.
	exists, err := s.players.ExistsByIDOrShortname(ctx, p.ID, p.Shortname)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", p.ID).Msg("existence check failed")
		return model.Player{}, internal("failed to create player", err)
	}
	if exists {
		return model.Player{}, conflict(msgDuplicate, nil)
	}

	out, err := s.players.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return model.Player{}, conflict(msgDuplicate, err)
		}
		s.log.Error().Err(err).Int64("player_id", p.ID).Str("shortname", p.Shortname).Msg("create player failed")
		return model.Player{}, internal("failed to create player", err)
	}
	s.recorded("create", 1)
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", out.ID).Msg("player created")
	return out, nil
}

// CreatePlayers validates the whole batch before writing anything.
func (s *playerService) CreatePlayers(ctx context.Context, in []model.PlayerInput) ([]model.Player, error) {
	start := time.Now()
	if len(in) > s.opts.MaxBulk {
		return nil, invalid("payload", fmt.Sprintf("Batch must not exceed %d players", s.opts.MaxBulk))
	}
	if err := ValidatePlayers(in); err != nil {
		return nil, err
	}

	ps := make([]model.Player, 0, len(in))
	ids := make(map[int64]bool, len(in))
	shorts := make(map[string]bool, len(in))
	for i := range in {
		p := in[i].ToPlayer()
		if ids[p.ID] || shorts[p.Shortname] {
			return nil, conflict(msgBatchDuplication, nil)
		}
		ids[p.ID], shorts[p.Shortname] = true, true

		exists, err := s.players.ExistsByIDOrShortname(ctx, p.ID, p.Shortname)
		if err != nil {
			s.log.Error().Err(err).Int64("player_id", p.ID).Msg("existence check failed")
			return nil, internal("failed to create players", err)
		}
		if exists {
			return nil, conflict(fmt.Sprintf("%s (id %d)", msgDuplicate, p.ID), nil)
		}
		ps = append(ps, p)
	}

	out, err := s.players.CreateMany(ctx, ps)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, conflict(msgDuplicate, err)
		}
		s.log.Error().Err(err).Int("count", len(ps)).Msg("bulk create failed")
		return nil, internal("failed to create players", err)
	}
	s.recorded("create_bulk", len(out))
	s.log.Info().Dur("took", time.Since(start)).Int("count", len(out)).Msg("players created")
	return out, nil
}

// ReplacePlayer overwrites every client-owned field. The payload id must match the path id.
func (s *playerService) ReplacePlayer(ctx context.Context, id int64, in model.PlayerInput) (model.Player, error) {
	if err := ValidatePlayerObject(&in, false); err != nil {
		return model.Player{}, err
	}
	if *in.ID != id {
		return model.Player{}, invalid("id", msgIDImmutable)
	}
	p := in.ToPlayer()

	// A missing player is reported as such even when its shortname would clash.
	if _, err := s.players.GetByID(ctx, id); err != nil {
		return model.Player{}, s.storeErr("replace player", id, err)
	}
	taken, err := s.players.ShortnameTaken(ctx, p.Shortname, id)
	if err != nil {
		s.log.Error().Err(err).Int64("player_id", id).Msg("shortname check failed")
		return model.Player{}, internal("failed to update player", err)
	}
	if taken {
		return model.Player{}, conflict(msgShortnameTaken, nil)
	}

	out, err := s.players.Replace(ctx, p)
	if err != nil {
		return model.Player{}, s.storeErr("replace player", id, err)
	}
	s.recorded("replace", 1)
	s.log.Info().Int64("player_id", id).Msg("player replaced")
	return out, nil
}

func (s *playerService) UpdateRank(ctx context.Context, id int64, rank int) (model.Player, error) {
	if rank <= 0 {
		return model.Player{}, invalid("rank", msgRankNotPositive)
	}
	out, err := s.players.Update(ctx, id, model.PlayerUpdate{Data: &model.DataPatch{Rank: &rank}})
	if err != nil {
		return model.Player{}, s.storeErr("update rank", id, err)
	}
	s.recorded("update_rank", 1)
	s.log.Info().Int64("player_id", id).Int("rank", rank).Msg("player rank updated")
	return out, nil
}

// UpdateStats touches only the data fields it was given. Rank has its own operation.
func (s *playerService) UpdateStats(ctx context.Context, id int64, stats model.StatsUpdate) (model.Player, error) {
	if stats.Empty() {
		return model.Player{}, invalid("data", msgNoStatsFields)
	}
	probe := &model.DataInput{Points: stats.Points, Weight: stats.Weight, Height: stats.Height, Age: stats.Age, Last: stats.Last}
	if err := ValidateData(probe, true); err != nil {
		return model.Player{}, err
	}

	patch := &model.DataPatch{Points: stats.Points, Weight: stats.Weight, Height: stats.Height, Age: stats.Age, Last: stats.Last}
	out, err := s.players.Update(ctx, id, model.PlayerUpdate{Data: patch})
	if err != nil {
		return model.Player{}, s.storeErr("update stats", id, err)
	}
	s.recorded("update_stats", 1)
	s.log.Info().Int64("player_id", id).Msg("player stats updated")
	return out, nil
}

// UpdatePartial applies any subset of firstname, lastname, shortname, sex, picture,
// country and data. Nested objects are merged field by field over the stored record.
func (s *playerService) UpdatePartial(ctx context.Context, id int64, in model.PlayerInput) (model.Player, error) {
	start := time.Now()
	if in.Has("id") {
		return model.Player{}, invalid("id", msgIDImmutable)
	}
	if err := ValidatePlayerObject(&in, true); err != nil {
		return model.Player{}, err
	}

	u := model.PlayerUpdate{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Shortname: in.Shortname,
		Sex:       in.Sex,
		Picture:   in.Picture,
	}
	if in.Country != nil {
		u.Country = &model.CountryPatch{Picture: in.Country.Picture, Code: in.Country.Code}
	}
	if in.Data != nil {
		d := in.Data
		u.Data = &model.DataPatch{Rank: d.Rank, Points: d.Points, Weight: d.Weight, Height: d.Height, Age: d.Age, Last: d.Last}
	}
	if u.Empty() {
		return model.Player{}, invalid("payload", msgNoPartialFields)
	}

	if s.opts.MergeMode == MergeReadModifyWrite && (u.Country != nil || u.Data != nil) {
		cur, err := s.players.GetByID(ctx, id)
		if err != nil {
			return model.Player{}, s.storeErr("load player", id, err)
		}
		mergeNested(&u, cur)
	}

	if u.Shortname != nil {
		taken, err := s.players.ShortnameTaken(ctx, *u.Shortname, id)
		if err != nil {
			s.log.Error().Err(err).Int64("player_id", id).Msg("shortname check failed")
			return model.Player{}, internal("failed to update player", err)
		}
		if taken {
			return model.Player{}, conflict(msgShortnameTaken, nil)
		}
	}

	out, err := s.players.Update(ctx, id, u)
	if err != nil {
		return model.Player{}, s.storeErr("patch player", id, err)
	}
	s.recorded("update_partial", 1)
	s.log.Info().Dur("took", time.Since(start)).Int64("player_id", id).Str("merge_mode", string(s.opts.MergeMode)).Msg("player patched")
	return out, nil
}

// mergeNested expands the nested patches to whole sub-documents: stored values
// first, provided values on top.
func mergeNested(u *model.PlayerUpdate, cur model.Player) {
	if u.Country != nil {
		merged := model.CountryPatch{Picture: &cur.Country.Picture, Code: &cur.Country.Code}
		if u.Country.Picture != nil {
			merged.Picture = u.Country.Picture
		}
		if u.Country.Code != nil {
			merged.Code = u.Country.Code
		}
		u.Country = &merged
	}
	if u.Data != nil {
		d := cur.Data
		merged := model.DataPatch{Rank: &d.Rank, Points: &d.Points, Weight: &d.Weight, Height: &d.Height, Age: &d.Age, Last: d.Last}
		p := u.Data
		if p.Rank != nil {
			merged.Rank = p.Rank
		}
		if p.Points != nil {
			merged.Points = p.Points
		}
		if p.Weight != nil {
			merged.Weight = p.Weight
		}
		if p.Height != nil {
			merged.Height = p.Height
		}
		if p.Age != nil {
			merged.Age = p.Age
		}
		if p.Last != nil {
			merged.Last = p.Last
		}
		u.Data = &merged
	}
}

func (s *playerService) DeletePlayer(ctx context.Context, id int64) (model.DeleteResult, error) {
	if err := s.players.Delete(ctx, id); err != nil {
		return model.DeleteResult{}, s.storeErr("delete player", id, err)
	}
	s.recorded("delete", 1)
	s.log.Info().Int64("player_id", id).Msg("player deleted")
	return model.DeleteResult{Message: fmt.Sprintf("Player with id %d deleted successfully", id)}, nil
}

// storeErr classifies a repository failure for one player. Only unexpected
// failures are logged here; the HTTP layer logs the classified ones.
func (s *playerService) storeErr(op string, id int64, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(id)
	case errors.Is(err, repository.ErrAlreadyExists):
		return conflict(msgShortnameTaken, err)
	default:
		s.log.Error().Err(err).Int64("player_id", id).Msg(op + " failed")
		return internal("failed to "+op, err)
	}
}

func (s *playerService) recorded(op string, n int) {
	if s.opts.Recorder != nil {
		s.opts.Recorder.PlayerMutation(op, n)
	}
}
