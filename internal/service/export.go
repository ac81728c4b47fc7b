package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
)

// ExportVersion is bumped when the layout of model.Export changes.
const ExportVersion = "1.0"

// ExportService assembles everything a user owns into one document.
type ExportService struct {
	users      repository.UserRepository
	stats      repository.StatRepository
	routes     repository.RouteRepository
	activities repository.ActivityRepository
	now        Clock
}

func NewExportService(
	users repository.UserRepository,
	stats repository.StatRepository,
	routes repository.RouteRepository,
	activities repository.ActivityRepository,
	now Clock,
) *ExportService {
	return &ExportService{users: users, stats: stats, routes: routes, activities: activities, now: orNow(now)}
}

// Export returns the full data set of username. The three lists are read
// concurrently; apperror.ErrNotFound is returned for an unknown user.
func (s *ExportService) Export(ctx context.Context, username string) (*model.Export, error) {
	if _, err := s.users.GetUserByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("service/export: %w", err)
	}

	out := &model.Export{
		Version:    ExportVersion,
		ExportedAt: s.now(),
		Username:   username,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.stats.ListStats(gctx, username)
		out.Stats = stats
		return err
	})
	g.Go(func() error {
		routes, err := s.routes.ListRoutes(gctx, username)
		out.Routes = routes
		return err
	})
	g.Go(func() error {
		activities, err := s.activities.ListActivities(gctx, username, "")
		out.Activities = activities
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service/export: %w", err)
	}
	return out, nil
}
