package models

type KPIMetrics struct {
	OnTimeDeliveryRate float64 `json:"on_time_delivery_rate"` // percent
	AvgDwellTime       float64 `json:"avg_dwell_time"`        // minutes
	TrailerUtilization float64 `json:"trailer_utilization"`   // percent
	EmptyMilesPercent  float64 `json:"empty_miles_percent"`
	ActiveTrips        int     `json:"active_trips"`
	AvailableDrivers   int     `json:"available_drivers"`
	AvailableAssets    int     `json:"available_assets"`
}

// KPI targets shown next to each metric on the dashboard.
const (
	TargetOnTimeDeliveryRate = 95.0
	TargetAvgDwellTime       = 75.0
	TargetTrailerUtilization = 80.0
	TargetEmptyMilesPercent  = 15.0
)

// OnTarget reports, per metric, whether the snapshot meets its target.
func (k KPIMetrics) OnTarget() map[string]bool {
	return map[string]bool{
		"on_time_delivery_rate": k.OnTimeDeliveryRate >= TargetOnTimeDeliveryRate,
		"avg_dwell_time":        k.AvgDwellTime <= TargetAvgDwellTime,
		"trailer_utilization":   k.TrailerUtilization >= TargetTrailerUtilization,
		"empty_miles_percent":   k.EmptyMilesPercent <= TargetEmptyMilesPercent,
	}
}
