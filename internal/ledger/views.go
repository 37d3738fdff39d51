package ledger

import (
	"math"

	"github.com/chrisdamba/fleetops/internal/models"
)

// ActiveTrips returns trips that are dispatched and not yet delivered, in input order.
func ActiveTrips(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		if t.Status.Active() {
			out = append(out, t)
		}
	}
	return out
}

// AtRiskTrips returns active trips with medium or high on-time risk.
func AtRiskTrips(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0)
	for _, t := range ActiveTrips(trips) {
		if t.OnTimeRisk == models.RiskMedium || t.OnTimeRisk == models.RiskHigh {
			out = append(out, t)
		}
	}
	return out
}

// Progress is the completed share of planned miles, clamped to [0, 1].
// A trip with no planned miles has made no progress.
func Progress(t models.Trip) float64 {
	if t.MilesPlanned <= 0 {
		return 0
	}
	r := t.MilesCompleted / t.MilesPlanned
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

func ProgressPercent(t models.Trip) int {
	return int(math.Round(Progress(t) * 100))
}

// NextStop returns the first stop by seq that is not completed.
func NextStop(t models.Trip) (models.Stop, bool) {
	var (
		next  models.Stop
		found bool
	)
	for _, s := range t.Stops {
		if s.Status == models.StopStatusCompleted {
			continue
		}
		if !found || s.Seq < next.Seq {
			next, found = s, true
		}
	}
	return next, found
}

// Bounds is the lat/lon box around a set of points. Empty is set when no point
// contributed, in which case the box is zero.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
	Empty  bool    `json:"empty"`
}

// ComputeBounds covers the current position and every stop of each active trip.
func ComputeBounds(trips []models.Trip) Bounds {
	b := Bounds{Empty: true}
	add := func(lat, lon float64) {
		if b.Empty {
			b = Bounds{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon}
			return
		}
		b.MinLat = math.Min(b.MinLat, lat)
		b.MaxLat = math.Max(b.MaxLat, lat)
		b.MinLon = math.Min(b.MinLon, lon)
		b.MaxLon = math.Max(b.MaxLon, lon)
	}

	for _, t := range ActiveTrips(trips) {
		add(t.CurrentLocation.Lat, t.CurrentLocation.Lon)
		for _, s := range t.Stops {
			add(s.Place.Lat, s.Place.Lon)
		}
	}
	if b.Empty {
		return Bounds{Empty: true}
	}
	return b
}

func (b Bounds) Center() models.Location {
	return models.Location{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Span returns the lat and lon extents; a zero extent is reported as 1.
func (b Bounds) Span() (lat, lon float64) {
	lat, lon = b.MaxLat-b.MinLat, b.MaxLon-b.MinLon
	if lat == 0 {
		lat = 1
	}
	if lon == 0 {
		lon = 1
	}
	return lat, lon
}

// Project maps a point into a 0-100 display box with the bounds filling the
// middle 70 units; y grows southward.
func (b Bounds) Project(loc models.Location) (x, y float64) {
	center := b.Center()
	spanLat, spanLon := b.Span()
	x = (loc.Lon-center.Lon)/spanLon*70 + 50
	y = (center.Lat-loc.Lat)/spanLat*70 + 50
	return x, y
}
