package models

// Fleet is a full snapshot of every persisted collection.
type Fleet struct {
	Trips    []Trip     `json:"trips"`
	Drivers  []Driver   `json:"drivers"`
	Assets   []Asset    `json:"assets"`
	Trailers []Trailer  `json:"trailers"`
	KPIs     KPIMetrics `json:"kpis"`
}

func (f Fleet) Clone() Fleet {
	out := Fleet{
		Trips:    make([]Trip, len(f.Trips)),
		Drivers:  make([]Driver, len(f.Drivers)),
		Assets:   make([]Asset, len(f.Assets)),
		Trailers: make([]Trailer, len(f.Trailers)),
		KPIs:     f.KPIs,
	}
	for i, t := range f.Trips {
		out.Trips[i] = t.Clone()
	}
	for i, d := range f.Drivers {
		out.Drivers[i] = d.Clone()
	}
	copy(out.Assets, f.Assets)
	for i, t := range f.Trailers {
		out.Trailers[i] = t.Clone()
	}
	return out
}
