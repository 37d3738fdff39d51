package models

import (
	"fmt"
	"math"
	"time"
)

var tripStatusLabels = map[TripStatus]string{
	TripStatusPlanned:        "Planned",
	TripStatusDispatched:     "Dispatched",
	TripStatusAtPickup:       "At Pickup",
	TripStatusDepartedPickup: "Departed",
	TripStatusInTransit:      "In Transit",
	TripStatusAtDelivery:     "At Delivery",
	TripStatusDelivered:      "Delivered",
	TripStatusClosed:         "Closed",
}

var exceptionTypeLabels = map[ExceptionType]string{
	ExceptionDelay:          "Delay",
	ExceptionRouteDeviation: "Route Deviation",
	ExceptionEquipmentIssue: "Equipment Issue",
	ExceptionCustomerIssue:  "Customer Issue",
	ExceptionWeather:        "Weather",
	ExceptionAccident:       "Accident",
	ExceptionDwellLong:      "Extended Dwell",
}

func (s TripStatus) Label() string {
	if l, ok := tripStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (t ExceptionType) Label() string {
	if l, ok := exceptionTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// FormatHOS renders fractional hours as "8h 30m".
func FormatHOS(hours float64) string {
	h := math.Floor(hours)
	m := math.Round((hours - h) * 60)
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%dh %dm", int(h), int(m))
}

// FormatCountdown renders the time left until eta as "2h 5m", "45m" or "3h",
// and "Overdue" once eta has passed.
func FormatCountdown(eta, now time.Time) string {
	diff := eta.Sub(now)
	if diff < 0 {
		return "Overdue"
	}

	hours := int(diff / time.Hour)
	minutes := int((diff % time.Hour) / time.Minute)

	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatMiles renders a distance with thousands separators, e.g. "1,234 mi".
func FormatMiles(miles float64) string {
	n := int64(math.Round(miles))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return sign + string(out) + " mi"
}
