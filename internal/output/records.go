package output

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/fleetops/internal/ledger"
	"github.com/chrisdamba/fleetops/internal/models"
)

const (
	TableTrips      = "trips"
	TableExceptions = "exceptions"
)

// TripRecord is one flattened trip row.
type TripRecord struct {
	SnapshotAt     int64   `json:"snapshot_at" parquet:"name=snapshot_at,type=INT64"`
	TripID         string  `json:"trip_id" parquet:"name=trip_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderRef       string  `json:"order_ref" parquet:"name=order_ref,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status         string  `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	OnTimeRisk     string  `json:"on_time_risk" parquet:"name=on_time_risk,type=BYTE_ARRAY,convertedtype=UTF8"`
	Customer       string  `json:"customer" parquet:"name=customer,type=BYTE_ARRAY,convertedtype=UTF8"`
	Commodity      string  `json:"commodity" parquet:"name=commodity,type=BYTE_ARRAY,convertedtype=UTF8"`
	DriverID       string  `json:"driver_id" parquet:"name=driver_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	DriverName     string  `json:"driver_name" parquet:"name=driver_name,type=BYTE_ARRAY,convertedtype=UTF8"`
	AssetID        string  `json:"asset_id" parquet:"name=asset_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	AssetUnitNo    string  `json:"asset_unit_no" parquet:"name=asset_unit_no,type=BYTE_ARRAY,convertedtype=UTF8"`
	TrailerID      string  `json:"trailer_id" parquet:"name=trailer_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	TrailerNo      string  `json:"trailer_no" parquet:"name=trailer_no,type=BYTE_ARRAY,convertedtype=UTF8"`
	Origin         string  `json:"origin" parquet:"name=origin,type=BYTE_ARRAY,convertedtype=UTF8"`
	Destination    string  `json:"destination" parquet:"name=destination,type=BYTE_ARRAY,convertedtype=UTF8"`
	CurrentLat     float64 `json:"current_lat" parquet:"name=current_lat,type=DOUBLE"`
	CurrentLon     float64 `json:"current_lon" parquet:"name=current_lon,type=DOUBLE"`
	ETA            int64   `json:"eta" parquet:"name=eta,type=INT64"`
	MilesPlanned   float64 `json:"miles_planned" parquet:"name=miles_planned,type=DOUBLE"`
	MilesCompleted float64 `json:"miles_completed" parquet:"name=miles_completed,type=DOUBLE"`
	ProgressPct    int32   `json:"progress_pct" parquet:"name=progress_pct,type=INT32"`
	ExceptionCount int32   `json:"exception_count" parquet:"name=exception_count,type=INT32"`
	CreatedAt      int64   `json:"created_at" parquet:"name=created_at,type=INT64"`
}

// ExceptionRecord is one exception row, denormalised with its trip's order ref.
type ExceptionRecord struct {
	SnapshotAt  int64  `json:"snapshot_at" parquet:"name=snapshot_at,type=INT64"`
	ExceptionID string `json:"exception_id" parquet:"name=exception_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	TripID      string `json:"trip_id" parquet:"name=trip_id,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderRef    string `json:"order_ref" parquet:"name=order_ref,type=BYTE_ARRAY,convertedtype=UTF8"`
	Type        string `json:"type" parquet:"name=type,type=BYTE_ARRAY,convertedtype=UTF8"`
	Severity    string `json:"severity" parquet:"name=severity,type=BYTE_ARRAY,convertedtype=UTF8"`
	Description string `json:"description" parquet:"name=description,type=BYTE_ARRAY,convertedtype=UTF8"`
	ReportedAt  int64  `json:"reported_at" parquet:"name=reported_at,type=INT64"`
	Resolved    bool   `json:"resolved" parquet:"name=resolved,type=BOOLEAN"`
}

// prototype returns the record type parquet-go derives a table's schema from.
func prototype(table string) (any, error) {
	switch table {
	case TableTrips:
		return new(TripRecord), nil
	case TableExceptions:
		return new(ExceptionRecord), nil
	}
	return nil, fmt.Errorf("unknown table: %s", table)
}

// Flatten turns a fleet snapshot into trip and exception rows. Resource names
// are resolved by ID; a dangling reference leaves the name empty.
func Flatten(f models.Fleet, snapshotAt int64) ([]TripRecord, []ExceptionRecord) {
	drivers := make(map[string]models.Driver, len(f.Drivers))
	for _, d := range f.Drivers {
		drivers[d.ID] = d
	}
	assets := make(map[string]models.Asset, len(f.Assets))
	for _, a := range f.Assets {
		assets[a.ID] = a
	}
	trailers := make(map[string]models.Trailer, len(f.Trailers))
	for _, t := range f.Trailers {
		trailers[t.ID] = t
	}

	trips := make([]TripRecord, 0, len(f.Trips))
	var excs []ExceptionRecord
	for _, t := range f.Trips {
		rec := TripRecord{
			SnapshotAt:     snapshotAt,
			TripID:         t.ID,
			OrderRef:       t.OrderRef,
			Status:         string(t.Status),
			OnTimeRisk:     string(t.OnTimeRisk),
			Customer:       t.Customer,
			Commodity:      t.Commodity,
			DriverID:       t.DriverID,
			DriverName:     drivers[t.DriverID].Name,
			AssetID:        t.AssetID,
			AssetUnitNo:    assets[t.AssetID].UnitNo,
			TrailerID:      t.TrailerID,
			TrailerNo:      trailers[t.TrailerID].TrailerNo,
			CurrentLat:     t.CurrentLocation.Lat,
			CurrentLon:     t.CurrentLocation.Lon,
			ETA:            t.ETA.Unix(),
			MilesPlanned:   t.MilesPlanned,
			MilesCompleted: t.MilesCompleted,
			ProgressPct:    int32(ledger.ProgressPercent(t)),
			ExceptionCount: int32(len(t.Exceptions)),
			CreatedAt:      t.CreatedAt.Unix(),
		}
		if n := len(t.Stops); n > 0 {
			rec.Origin = cityState(t.Stops[0].Place)
			rec.Destination = cityState(t.Stops[n-1].Place)
		}
		trips = append(trips, rec)

		for _, e := range t.Exceptions {
			excs = append(excs, ExceptionRecord{
				SnapshotAt:  snapshotAt,
				ExceptionID: e.ID,
				TripID:      t.ID,
				OrderRef:    t.OrderRef,
				Type:        string(e.Type),
				Severity:    string(e.Severity),
				Description: e.Description,
				ReportedAt:  e.ReportedAt.Unix(),
				Resolved:    e.ResolvedAt != nil,
			})
		}
	}
	return trips, excs
}

func cityState(p models.Place) string {
	return strings.TrimSuffix(p.City+", "+p.State, ", ")
}
