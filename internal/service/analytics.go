package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/tennis-players-service/internal/analytics"
	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository"
)

type analyticsService struct {
	players repository.PlayerRepository
	log     zerolog.Logger
}

func NewAnalyticsService(players repository.PlayerRepository, logger zerolog.Logger) AnalyticsService {
	l := logger.With().Str("module", "service").Str("component", "analytics").Logger()
	return &analyticsService{players: players, log: l}
}

func (s *analyticsService) BestAndWorstCountry(ctx context.Context) (model.CountryReport, error) {
	start := time.Now()
	players, err := s.loadAll(ctx, "No players found for analysis")
	if err != nil {
		return model.CountryReport{}, err
	}
	report := analytics.ComputeCountryWinRatios(players)
	s.log.Debug().Dur("took", time.Since(start)).Int("players", len(players)).Int("best", len(report.Best)).Msg("country ratios computed")
	return report, nil
}

// PlayersBMI lists players with a defined BMI, highest first. Equal values keep id order.
func (s *analyticsService) PlayersBMI(ctx context.Context) (model.BMIReport, error) {
	players, err := s.loadAll(ctx, "No players found for BMI analysis")
	if err != nil {
		return model.BMIReport{}, err
	}

	rows := make([]model.PlayerBMI, 0, len(players))
	values := make([]float64, 0, len(players))
	for _, p := range players {
		bmi, ok := analytics.CalculateBMI(float64(p.Data.Weight), float64(p.Data.Height))
		if !ok {
			continue
		}
		rows = append(rows, model.PlayerBMI{ID: p.ID, Name: p.FullName(), BMI: bmi})
		values = append(values, bmi)
	}
	slices.SortFunc(rows, func(a, b model.PlayerBMI) int {
		if c := cmp.Compare(b.BMI, a.BMI); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return model.BMIReport{Average: analytics.Average(values), Players: rows}, nil
}

func (s *analyticsService) HeightStats(ctx context.Context) (model.HeightStats, error) {
	n, err := s.players.Count(ctx, repository.PlayerFilter{})
	if err != nil {
		s.log.Error().Err(err).Msg("count players failed")
		return model.HeightStats{}, internal("failed to compute height statistics", err)
	}
	if n == 0 {
		return model.HeightStats{}, notFoundMsg("No players found for height analysis")
	}

	heights, err := s.players.Heights(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load heights failed")
		return model.HeightStats{}, internal("failed to compute height statistics", err)
	}
	if len(heights) == 0 {
		return model.HeightStats{}, invalid("data.height", "No valid height data found")
	}

	lo, hi := analytics.MinMax(heights)
	med, _ := analytics.Median(heights)
	return model.HeightStats{Min: lo, Max: hi, Average: analytics.Average(heights), Median: med}, nil
}

func (s *analyticsService) loadAll(ctx context.Context, emptyMsg string) ([]model.Player, error) {
	players, err := s.players.All(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load players failed")
		return nil, internal("failed to load players", err)
	}
	if len(players) == 0 {
		return nil, notFoundMsg(emptyMsg)
	}
	return players, nil
}
