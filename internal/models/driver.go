package models

type Driver struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CDLNo        string       `json:"cdl_no"`
	Status       DriverStatus `json:"status"`
	HOSRemaining float64      `json:"hos_remaining"` // hours of service left before mandatory rest
	LastLocation *Location    `json:"last_location,omitempty"`
	Phone        string       `json:"phone"`
	Avatar       string       `json:"avatar,omitempty"` // initials
}

func (d Driver) Clone() Driver {
	if d.LastLocation != nil {
		loc := *d.LastLocation
		d.LastLocation = &loc
	}
	return d
}
