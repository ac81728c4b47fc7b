package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/sakif/fittrack/internal/apperror"
	"github.com/sakif/fittrack/internal/model"
)

func addTestRoute(t *testing.T, db *DB, username, name string, distance, height float64) {
	t.Helper()
	_, err := db.AddRoute(context.Background(), &model.Route{Username: username, Name: name, Distance: distance, Height: height})
	if err != nil {
		t.Fatalf("AddRoute() error = %v", err)
	}
}

// =========================================================================
// ROUTES
// =========================================================================

func TestAddRoute_DuplicateIsIgnored(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "alice")

	ok, err := db.AddRoute(ctx, &model.Route{Username: "alice", Name: "hill", Distance: 5000, Height: 120})
	if err != nil || !ok {
		t.Fatalf("AddRoute() = %v, %v; want true, nil", ok, err)
	}
	ok, err = db.AddRoute(ctx, &model.Route{Username: "alice", Name: "hill", Distance: 1, Height: 1})
	if err != nil || ok {
		t.Fatalf("duplicate AddRoute() = %v, %v; want false, nil", ok, err)
	}

	got, err := db.GetRoute(ctx, "alice", "hill")
	if err != nil {
		t.Fatalf("GetRoute() error = %v", err)
	}
	if got.Distance != 5000 || got.Height != 120 {
		t.Errorf("GetRoute() = %+v, want the original route", got)
	}
}

func TestListRoutes(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	addTestRoute(t, db, "alice", "river", 8000, 10)
	addTestRoute(t, db, "alice", "hill", 5000, 120)
	addTestRoute(t, db, "bob", "track", 400, 0)

	routes, err := db.ListRoutes(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListRoutes() error = %v", err)
	}
	want := []model.Route{
		{Username: "alice", Name: "hill", Distance: 5000, Height: 120},
		{Username: "alice", Name: "river", Distance: 8000, Height: 10},
	}
	if diff := cmp.Diff(want, routes); diff != "" {
		t.Errorf("ListRoutes() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteRoute_CascadesActivities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "alice")
	addTestRoute(t, db, "alice", "hill", 5000, 120)
	addTestRoute(t, db, "alice", "river", 8000, 10)

	for _, a := range []model.Activity{
		{Username: "alice", RouteName: "hill", Date: day(1), Seconds: 1800},
		{Username: "alice", RouteName: "river", Date: day(2), Seconds: 2400},
	} {
		if _, err := db.AddActivity(ctx, &a); err != nil {
			t.Fatalf("AddActivity() error = %v", err)
		}
	}

	if err := db.DeleteRoute(ctx, "alice", "hill"); err != nil {
		t.Fatalf("DeleteRoute() error = %v", err)
	}

	left, err := db.ListActivities(ctx, "alice", "")
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	if len(left) != 1 || left[0].RouteName != "river" {
		t.Errorf("activities after route deletion = %+v, want only river", left)
	}

	if err := db.DeleteRoute(ctx, "alice", "hill"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteRoute() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// ACTIVITIES
// =========================================================================

func TestAddActivity_UnknownRoute(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	_, err := db.AddActivity(context.Background(), &model.Activity{Username: "alice", RouteName: "nowhere", Date: day(1), Seconds: 60})
	if err == nil {
		t.Fatal("AddActivity() on a missing route should violate the foreign key")
	}
}

func TestListActivities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "alice")
	addTestRoute(t, db, "alice", "hill", 5000, 120)
	addTestRoute(t, db, "alice", "river", 8000, 10)

	in := []model.Activity{
		{Username: "alice", RouteName: "river", Date: day(3), Seconds: 2400, Pace: 5, Speed: 12, HeartRate: 150},
		{Username: "alice", RouteName: "hill", Date: day(1), Seconds: 1800, Pace: 6, Speed: 10},
		{Username: "alice", RouteName: "hill", Date: day(2), Seconds: 1700, Pace: 5.667, Speed: 10.588},
	}
	for i := range in {
		ok, err := db.AddActivity(ctx, &in[i])
		if err != nil || !ok {
			t.Fatalf("AddActivity(%d) = %v, %v", i, ok, err)
		}
	}

	dup := in[0]
	if ok, err := db.AddActivity(ctx, &dup); err != nil || ok {
		t.Errorf("duplicate AddActivity() = %v, %v; want false, nil", ok, err)
	}

	all, err := db.ListActivities(ctx, "alice", "")
	if err != nil {
		t.Fatalf("ListActivities() error = %v", err)
	}
	want := []model.Activity{in[1], in[2], in[0]}
	if diff := cmp.Diff(want, all, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("ListActivities(all) mismatch (-want +got):\n%s", diff)
	}

	hill, err := db.ListActivities(ctx, "alice", "hill")
	if err != nil {
		t.Fatalf("ListActivities(hill) error = %v", err)
	}
	if len(hill) != 2 {
		t.Errorf("ListActivities(hill) returned %d rows, want 2", len(hill))
	}
	if hill[0].HeartRate != 0 {
		t.Errorf("missing heart rate read back as %d, want 0", hill[0].HeartRate)
	}

	none, err := db.ListActivities(ctx, "alice", "unknown")
	if err != nil || len(none) != 0 {
		t.Errorf("ListActivities(unknown) = %v, %v; want empty", none, err)
	}
}
