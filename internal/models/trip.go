package models

import "time"

type Stop struct {
	ID               string     `json:"id"`
	Seq              int        `json:"seq"`
	Place            Place      `json:"location"`
	Type             StopType   `json:"type"`
	AppointmentStart time.Time  `json:"appointment_start"`
	AppointmentEnd   time.Time  `json:"appointment_end"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	ActualDeparture  *time.Time `json:"actual_departure,omitempty"`
	Status           StopStatus `json:"status"`
}

func (s Stop) Clone() Stop {
	if s.ActualArrival != nil {
		at := *s.ActualArrival
		s.ActualArrival = &at
	}
	if s.ActualDeparture != nil {
		at := *s.ActualDeparture
		s.ActualDeparture = &at
	}
	return s
}

// Trip is a single order moving through pickup and delivery. It references its driver,
// asset and trailer by ID; the records themselves live in their own collections.
type Trip struct {
	ID              string      `json:"id"`
	OrderRef        string      `json:"order_ref"`
	Status          TripStatus  `json:"status"`
	DriverID        string      `json:"driver_id,omitempty"`
	AssetID         string      `json:"asset_id,omitempty"`
	TrailerID       string      `json:"trailer_id,omitempty"`
	Stops           []Stop      `json:"stops"`
	CurrentLocation Location    `json:"current_location"`
	ETA             time.Time   `json:"eta"`
	OnTimeRisk      Risk        `json:"on_time_risk"`
	MilesPlanned    float64     `json:"miles_planned"`
	MilesCompleted  float64     `json:"miles_completed"`
	Customer        string      `json:"customer"`
	Commodity       string      `json:"commodity"`
	Exceptions      []Exception `json:"exceptions"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (t Trip) Clone() Trip {
	stops := make([]Stop, len(t.Stops))
	for i, s := range t.Stops {
		stops[i] = s.Clone()
	}
	t.Stops = stops

	exceptions := make([]Exception, len(t.Exceptions))
	for i, e := range t.Exceptions {
		exceptions[i] = e.Clone()
	}
	t.Exceptions = exceptions
	return t
}

// HasResources reports whether driver, asset and trailer are all set.
func (t Trip) HasResources() bool {
	return t.DriverID != "" && t.AssetID != "" && t.TrailerID != ""
}

// NoResources reports whether driver, asset and trailer are all empty.
func (t Trip) NoResources() bool {
	return t.DriverID == "" && t.AssetID == "" && t.TrailerID == ""
}

// Rank returns the status position in the lifecycle, or -1 for an unknown status.
func (s TripStatus) Rank() int {
	for i, st := range tripStatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s TripStatus) Valid() bool {
	return s.Rank() >= 0
}

// Dispatched reports whether the status is at or past dispatch.
func (s TripStatus) Dispatched() bool {
	return s.Rank() >= TripStatusDispatched.Rank()
}

// Active reports whether a trip in this status is on the road or about to be.
func (s TripStatus) Active() bool {
	switch s {
	case TripStatusDispatched, TripStatusAtPickup, TripStatusDepartedPickup, TripStatusInTransit, TripStatusAtDelivery:
		return true
	}
	return false
}

// Open reports whether a trip still holds its resources.
func (s TripStatus) Open() bool {
	return s != TripStatusClosed
}
