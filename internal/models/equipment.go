package models

// Asset is a powered unit: a tractor or a straight truck.
type Asset struct {
	ID       string          `json:"id"`
	UnitNo   string          `json:"unit_no"`
	Type     AssetType       `json:"type"`
	Make     string          `json:"make"`
	Model    string          `json:"model"`
	Status   EquipmentStatus `json:"status"`
	Location Location        `json:"location"`
	Odometer int             `json:"odometer"`
}

type Trailer struct {
	ID        string          `json:"id"`
	TrailerNo string          `json:"trailer_no"`
	Type      TrailerType     `json:"type"`
	Status    EquipmentStatus `json:"status"`
	Location  *Location       `json:"location,omitempty"`
}

func (t Trailer) Clone() Trailer {
	if t.Location != nil {
		loc := *t.Location
		t.Location = &loc
	}
	return t
}
