package models

import "time"

// Exception is a delivery problem logged against a trip. Once recorded it is never removed.
type Exception struct {
	ID          string        `json:"id"`
	TripID      string        `json:"trip_id"`
	Type        ExceptionType `json:"type"`
	Severity    Severity      `json:"severity"`
	Description string        `json:"description"`
	ReportedAt  time.Time     `json:"reported_at"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

func (e Exception) Clone() Exception {
	if e.ResolvedAt != nil {
		at := *e.ResolvedAt
		e.ResolvedAt = &at
	}
	return e
}

func (t ExceptionType) Valid() bool {
	for _, k := range ExceptionTypes {
		if k == t {
			return true
		}
	}
	return false
}

func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}
