package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

const (
	MsgNegativeValue  = "Values cannot be negative"
	MsgPercentTooHigh = "Percentages cannot be above 100"
)

// StatValues are the four measurements of one stat entry, already parsed.
type StatValues struct {
	Weight  float64
	BodyFat float64
	Water   float64
	Muscles float64
}

func (v StatValues) validate() error {
	for _, x := range []float64{v.Weight, v.BodyFat, v.Water, v.Muscles} {
		if x < 0 {
			return apperror.ValidationFailed("values", MsgNegativeValue)
		}
	}
	for _, x := range []float64{v.BodyFat, v.Water, v.Muscles} {
		if x > 100 {
			return apperror.ValidationFailed("values", MsgPercentTooHigh)
		}
	}
	return nil
}

func (v StatValues) entry(username string, date time.Time) *model.StatEntry {
	return &model.StatEntry{
		Username: username,
		Date:     date,
		Weight:   v.Weight,
		BodyFat:  v.BodyFat,
		Water:    v.Water,
		Muscles:  v.Muscles,
	}
}

// StatService records and reads body-composition entries.
type StatService struct {
	repo   repository.StatRepository
	now    Clock
	logger *slog.Logger
}

func NewStatService(repo repository.StatRepository, now Clock, logger *slog.Logger) *StatService {
	return &StatService{repo: repo, now: orNow(now), logger: logger}
}

// AddStat records v for username at the current second. A second entry in
// the same second is dropped without error; the entry returned is then the
// one already stored.
func (s *StatService) AddStat(ctx context.Context, username string, v StatValues) (*model.StatEntry, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}

	entry := v.entry(username, s.now().Truncate(time.Second))
	ok, err := s.repo.AddStat(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("service/stats: %w", err)
	}
	if !ok {
		s.logger.Debug("duplicate stat entry ignored",
			slog.String("username", username),
			slog.Int64("date", entry.Date.Unix()),
		)
		stored, err := s.repo.GetStat(ctx, username, entry.Date)
		if err != nil {
			return nil, fmt.Errorf("service/stats: %w", err)
		}
		return stored, nil
	}
	return entry, nil
}

// Stats returns every entry of username, oldest first.
func (s *StatService) Stats(ctx context.Context, username string) ([]model.StatEntry, error) {
	stats, err := s.repo.ListStats(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/stats: %w", err)
	}
	return stats, nil
}

// Category returns the (date, value) series of one category, oldest first.
// A name outside the category allow-list yields an empty series.
func (s *StatService) Category(ctx context.Context, username, name string) ([]model.Datapoint, error) {
	category, ok := model.ParseStatCategory(name)
	if !ok {
		return []model.Datapoint{}, nil
	}
	points, err := s.repo.ListStatCategory(ctx, username, category)
	if err != nil {
		return nil, fmt.Errorf("service/stats: %w", err)
	}
	return points, nil
}

// Stat returns the entry of username recorded at date.
func (s *StatService) Stat(ctx context.Context, username string, date time.Time) (*model.StatEntry, error) {
	entry, err := s.repo.GetStat(ctx, username, date)
	if err != nil {
		return nil, fmt.Errorf("service/stats: %w", err)
	}
	return entry, nil
}

// EditStat overwrites the measurements of an existing entry.
func (s *StatService) EditStat(ctx context.Context, username string, date time.Time, v StatValues) error {
	if err := v.validate(); err != nil {
		return err
	}
	if err := s.repo.UpdateStat(ctx, v.entry(username, date)); err != nil {
		return fmt.Errorf("service/stats: %w", err)
	}
	return nil
}

func (s *StatService) DeleteStat(ctx context.Context, username string, date time.Time) error {
	if err := s.repo.DeleteStat(ctx, username, date); err != nil {
		return fmt.Errorf("service/stats: %w", err)
	}
	return nil
}
