package api

import (
	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
)

type AssignmentRequest struct {
	DriverID  string `json:"driver_id"`
	AssetID   string `json:"asset_id"`
	TrailerID string `json:"trailer_id"`
}

type ExceptionRequest struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// TripSummary is a trip row with the labels a board shows next to it.
type TripSummary struct {
	models.Trip
	StatusLabel string `json:"status_label"`
	ProgressPct int    `json:"progress_pct"`
	Countdown   string `json:"countdown"`
	Miles       string `json:"miles"`
}

// TripDetail adds the next stop and the resolved resources to a summary.
type TripDetail struct {
	TripSummary
	NextStop *models.Stop    `json:"next_stop,omitempty"`
	Driver   *models.Driver  `json:"driver,omitempty"`
	Asset    *models.Asset   `json:"asset,omitempty"`
	Trailer  *models.Trailer `json:"trailer,omitempty"`
}

type DriverView struct {
	models.Driver
	HOSLabel string `json:"hos_label"`
}

type KPIView struct {
	models.KPIMetrics
	OnTarget map[string]bool `json:"on_target"`
}

type MapPin struct {
	TripID   string            `json:"trip_id"`
	OrderRef string            `json:"order_ref"`
	Status   models.TripStatus `json:"status"`
	Risk     models.Risk       `json:"risk"`
	Location models.Location   `json:"location"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
}

type MapView struct {
	Bounds ledger.Bounds   `json:"bounds"`
	Center models.Location `json:"center"`
	Pins   []MapPin        `json:"pins"`
}

func (h *Handler) summarize(t models.Trip) TripSummary {
	return TripSummary{
		Trip:        t,
		StatusLabel: t.Status.Label(),
		ProgressPct: ledger.ProgressPercent(t),
		Countdown:   models.FormatCountdown(t.ETA, h.now()),
		Miles:       models.FormatMiles(t.MilesPlanned),
	}
}

func (h *Handler) detail(t models.Trip) TripDetail {
	d := TripDetail{TripSummary: h.summarize(t)}
	if s, ok := ledger.NextStop(t); ok {
		d.NextStop = &s
	}
	if t.DriverID != "" {
		if v, err := h.ledger.Driver(t.DriverID); err == nil {
			d.Driver = &v
		}
	}
	if t.AssetID != "" {
		if v, err := h.ledger.Asset(t.AssetID); err == nil {
			d.Asset = &v
		}
	}
	if t.TrailerID != "" {
		if v, err := h.ledger.Trailer(t.TrailerID); err == nil {
			d.Trailer = &v
		}
	}
	return d
}
