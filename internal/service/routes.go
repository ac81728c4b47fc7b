package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/fitness"
	"github.com/sakif/fittrack/internal/model"
	"github.com/sakif/fittrack/internal/repository"
	"github.com/sakif/fittrack/internal/validate"
)

const (
	MsgInvalidRouteName = "Route name can only contain letters, numbers and '-_'."
	MsgDistance         = "Distance must be greater than zero"
	MsgHeight           = "Height cannot be negative"
	MsgUnknownRoute     = "Unknown route"
	MsgMinutes          = "Time [min] cannot be negative"
	MsgSeconds          = "Time [s] must be between 0 and 59"
	MsgZeroTime         = "Time must be greater than zero"
	MsgHeartRate        = "Heart rate must be between 1 and 300"
	MsgMinutesTooLarge  = "Time [min] cannot be more than 10080 (one week)"
	MsgReservedRoute    = "Route name is reserved, please choose another one."
)

const (
	maxHeartRate = 300
	maxMinutes   = 7 * 24 * 60
)

// reservedRouteNames are path segments under /activities that a route name
// would otherwise shadow.
var reservedRouteNames = map[string]bool{"add": true}

// ActivityInput is a parsed activity form. HeartRate is 0 when not given.
type ActivityInput struct {
	RouteName string
	Minutes   int
	Seconds   int
	HeartRate int
}

// RouteService manages routes and the activities run on them.
type RouteService struct {
	routes     repository.RouteRepository
	activities repository.ActivityRepository
	now        Clock
	logger     *slog.Logger
}

func NewRouteService(routes repository.RouteRepository, activities repository.ActivityRepository, now Clock, logger *slog.Logger) *RouteService {
	return &RouteService{routes: routes, activities: activities, now: orNow(now), logger: logger}
}

// AddRoute records a route of distance meters with height meters of climb.
// An existing route of the same name is kept unchanged.
func (s *RouteService) AddRoute(ctx context.Context, username, name string, distance, height float64) (*model.Route, error) {
	if !validate.Identifier(name) {
		return nil, apperror.ValidationFailed("name", MsgInvalidRouteName)
	}
	if reservedRouteNames[name] {
		return nil, apperror.ValidationFailed("name", MsgReservedRoute)
	}
	if distance <= 0 {
		return nil, apperror.ValidationFailed("distance", MsgDistance)
	}
	if height < 0 {
		return nil, apperror.ValidationFailed("height", MsgHeight)
	}

	route := &model.Route{Username: username, Name: name, Distance: distance, Height: height}
	ok, err := s.routes.AddRoute(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("service/routes: %w", err)
	}
	if !ok {
		s.logger.Debug("duplicate route ignored",
			slog.String("username", username),
			slog.String("route", name),
		)
	}
	return route, nil
}

// Routes returns all routes of username ordered by name.
func (s *RouteService) Routes(ctx context.Context, username string) ([]model.Route, error) {
	return s.FindRoutes(ctx, username, "")
}

// FindRoutes returns every route when name is empty, otherwise the route
// with exactly that name. A malformed or unknown name yields no routes.
func (s *RouteService) FindRoutes(ctx context.Context, username, name string) ([]model.Route, error) {
	if name == "" {
		routes, err := s.routes.ListRoutes(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("service/routes: %w", err)
		}
		return routes, nil
	}
	if !validate.Identifier(name) {
		return []model.Route{}, nil
	}

	route, err := s.routes.GetRoute(ctx, username, name)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return []model.Route{}, nil
		}
		return nil, fmt.Errorf("service/routes: %w", err)
	}
	return []model.Route{*route}, nil
}

// DeleteRoute removes a route together with its activities.
func (s *RouteService) DeleteRoute(ctx context.Context, username, name string) error {
	if !validate.Identifier(name) {
		return apperror.NotFound("route", name)
	}
	if err := s.routes.DeleteRoute(ctx, username, name); err != nil {
		return fmt.Errorf("service/routes: %w", err)
	}
	s.logger.Info("route deleted", slog.String("username", username), slog.String("route", name))
	return nil
}

// AddActivity records a run of in.RouteName now, deriving pace and speed
// from the route.
func (s *RouteService) AddActivity(ctx context.Context, username string, in ActivityInput) (*model.Activity, error) {
	if in.Minutes < 0 {
		return nil, apperror.ValidationFailed("time_min", MsgMinutes)
	}
	if in.Minutes > maxMinutes {
		return nil, apperror.ValidationFailed("time_min", MsgMinutesTooLarge)
	}
	if in.Seconds < 0 || in.Seconds > 59 {
		return nil, apperror.ValidationFailed("time_s", MsgSeconds)
	}
	if in.HeartRate < 0 || in.HeartRate > maxHeartRate {
		return nil, apperror.ValidationFailed("heart_rate", MsgHeartRate)
	}

	routes, err := s.FindRoutes(ctx, username, in.RouteName)
	if err != nil {
		return nil, err
	}
	if in.RouteName == "" || len(routes) == 0 {
		return nil, apperror.ValidationFailed("route", MsgUnknownRoute)
	}
	route := routes[0]

	effort, err := fitness.Derive(route.Distance, route.Height, in.Minutes, in.Seconds)
	switch {
	case errors.Is(err, fitness.ErrZeroTime):
		return nil, apperror.ValidationFailed("time_min", MsgZeroTime)
	case errors.Is(err, fitness.ErrZeroDistance):
		return nil, apperror.ValidationFailed("route", MsgDistance)
	case err != nil:
		return nil, fmt.Errorf("service/routes: %w", err)
	}

	activity := &model.Activity{
		Username:  username,
		RouteName: route.Name,
		Date:      s.now().Truncate(time.Second),
		Seconds:   effort.Seconds,
		Pace:      effort.Pace,
		Speed:     effort.Speed,
		HeartRate: in.HeartRate,
	}
	ok, err := s.activities.AddActivity(ctx, activity)
	if err != nil {
		return nil, fmt.Errorf("service/routes: %w", err)
	}
	if !ok {
		s.logger.Debug("duplicate activity ignored",
			slog.String("username", username),
			slog.String("route", route.Name),
		)
	}
	return activity, nil
}

// Activities returns the activities of username oldest first, limited to
// one route when routeName is set. A malformed route name yields none.
func (s *RouteService) Activities(ctx context.Context, username, routeName string) ([]model.Activity, error) {
	if routeName != "" && !validate.Identifier(routeName) {
		return []model.Activity{}, nil
	}
	activities, err := s.activities.ListActivities(ctx, username, routeName)
	if err != nil {
		return nil, fmt.Errorf("service/routes: %w", err)
	}
	return activities, nil
}
