package ledger

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chrisdamba/fleetops/internal/models"
)

func tripIDs(trips []models.Trip) []string {
	ids := make([]string, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
	}
	return ids
}

func TestActiveAndAtRiskTrips(t *testing.T) {
	trips := mockSeed().Trips
	trips = append(trips,
		models.Trip{ID: "planned", Status: models.TripStatusPlanned, OnTimeRisk: models.RiskHigh},
		models.Trip{ID: "delivered", Status: models.TripStatusDelivered, OnTimeRisk: models.RiskHigh},
		models.Trip{ID: "closed", Status: models.TripStatusClosed, OnTimeRisk: models.RiskMedium},
	)

	if diff := cmp.Diff([]string{"trip001", "trip002", "trip003", "trip004"}, tripIDs(ActiveTrips(trips))); diff != "" {
		t.Errorf("ActiveTrips (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"trip002", "trip003"}, tripIDs(AtRiskTrips(trips))); diff != "" {
		t.Errorf("AtRiskTrips (-want +got):\n%s", diff)
	}
	if got := AtRiskTrips(nil); got == nil || len(got) != 0 {
		t.Errorf("AtRiskTrips(nil) = %#v, want empty non-nil", got)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		planned, completed float64
		want               float64
		wantPct            int
	}{
		{planned: 283, completed: 185, want: 185.0 / 283, wantPct: 65},
		{planned: 100, completed: 0, want: 0, wantPct: 0},
		{planned: 0, completed: 10, want: 0, wantPct: 0},
		{planned: -5, completed: 10, want: 0, wantPct: 0},
		{planned: 100, completed: 150, want: 1, wantPct: 100},
		{planned: 100, completed: -3, want: 0, wantPct: 0},
	}
	for _, tt := range tests {
		trip := models.Trip{MilesPlanned: tt.planned, MilesCompleted: tt.completed}
		if got := Progress(trip); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Progress(%v/%v) = %v, want %v", tt.completed, tt.planned, got, tt.want)
		}
		if got := ProgressPercent(trip); got != tt.wantPct {
			t.Errorf("ProgressPercent(%v/%v) = %d, want %d", tt.completed, tt.planned, got, tt.wantPct)
		}
	}
}

func TestNextStop(t *testing.T) {
	trips := mockSeed().Trips

	next, ok := NextStop(trips[0])
	if !ok || next.ID != "stp2" {
		t.Errorf("NextStop(trip001) = %s, %v, want stp2, true", next.ID, ok)
	}
	next, ok = NextStop(trips[1])
	if !ok || next.ID != "stp3" {
		t.Errorf("NextStop(trip002) = %s, %v, want stp3, true", next.ID, ok)
	}

	done := trips[0].Clone()
	for i := range done.Stops {
		done.Stops[i].Status = models.StopStatusCompleted
	}
	if _, ok := NextStop(done); ok {
		t.Error("NextStop(all completed) ok = true, want false")
	}
}

func TestComputeBounds(t *testing.T) {
	if b := ComputeBounds(nil); !b.Empty {
		t.Errorf("ComputeBounds(nil) = %+v, want empty", b)
	}

	b := ComputeBounds(mockSeed().Trips)
	want := Bounds{MinLat: 39.7742, MaxLat: 43.0642, MinLon: -87.9673, MaxLon: -81.6934}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("ComputeBounds (-want +got):\n%s", diff)
	}
	for _, trip := range mockSeed().Trips {
		loc := trip.CurrentLocation
		if loc.Lat < b.MinLat || loc.Lat > b.MaxLat || loc.Lon < b.MinLon || loc.Lon > b.MaxLon {
			t.Errorf("trip %s position %s outside bounds %+v", trip.ID, loc, b)
		}
	}
}

func TestProjectSinglePoint(t *testing.T) {
	trip := models.Trip{
		Status:          models.TripStatusInTransit,
		CurrentLocation: models.Location{Lat: 40, Lon: -85},
	}
	b := ComputeBounds([]models.Trip{trip})
	if lat, lon := b.Span(); lat != 1 || lon != 1 {
		t.Errorf("Span() = %v, %v, want 1, 1", lat, lon)
	}
	if x, y := b.Project(trip.CurrentLocation); x != 50 || y != 50 {
		t.Errorf("Project(center) = %v, %v, want 50, 50", x, y)
	}
}

func TestProjectOrientation(t *testing.T) {
	b := Bounds{MinLat: 40, MaxLat: 42, MinLon: -88, MaxLon: -84}

	x, y := b.Project(models.Location{Lat: 42, Lon: -84})
	if x != 85 || y != 15 {
		t.Errorf("Project(north-east corner) = %v, %v, want 85, 15", x, y)
	}
	x, y = b.Project(models.Location{Lat: 40, Lon: -88})
	if x != 15 || y != 85 {
		t.Errorf("Project(south-west corner) = %v, %v, want 15, 85", x, y)
	}
}
