package factories

import (
	"time"

	"github.com/chrisdamba/fleetops/internal/models"
)

// Places used by the mock dataset.
var Places = []models.Place{
	{ID: "loc1", Name: "Chicago Distribution Center", Address: "1500 W Fulton St", City: "Chicago", State: "IL", Lat: 41.8868, Lon: -87.6564},
	{ID: "loc2", Name: "Detroit Warehouse", Address: "2800 E Grand Blvd", City: "Detroit", State: "MI", Lat: 42.3681, Lon: -83.0758},
	{ID: "loc3", Name: "Indianapolis Hub", Address: "4701 W Washington St", City: "Indianapolis", State: "IN", Lat: 39.7742, Lon: -86.2384},
	{ID: "loc4", Name: "Columbus Depot", Address: "1234 Alum Creek Dr", City: "Columbus", State: "OH", Lat: 39.9848, Lon: -82.9853},
	{ID: "loc5", Name: "Milwaukee Plant", Address: "800 W Capitol Dr", City: "Milwaukee", State: "WI", Lat: 43.0642, Lon: -87.9673},
	{ID: "loc6", Name: "Cleveland Facility", Address: "3100 Chester Ave", City: "Cleveland", State: "OH", Lat: 41.5051, Lon: -81.6934},
}

func mockDrivers() []models.Driver {
	return []models.Driver{
		{ID: "drv1", Name: "John Martinez", CDLNo: "CDL-IL-8829", Status: models.DriverStatusAssigned, HOSRemaining: 8.5, Phone: "312-555-0101", Avatar: "JM"},
		{ID: "drv2", Name: "Sarah Chen", CDLNo: "CDL-MI-4432", Status: models.DriverStatusAssigned, HOSRemaining: 6.2, Phone: "313-555-0202", Avatar: "SC"},
		{ID: "drv3", Name: "Michael Johnson", CDLNo: "CDL-IN-7651", Status: models.DriverStatusAvailable, HOSRemaining: 11.0, Phone: "317-555-0303", Avatar: "MJ"},
		{ID: "drv4", Name: "Emily Davis", CDLNo: "CDL-OH-3345", Status: models.DriverStatusAssigned, HOSRemaining: 4.8, Phone: "614-555-0404", Avatar: "ED"},
		{ID: "drv5", Name: "Robert Wilson", CDLNo: "CDL-WI-9982", Status: models.DriverStatusAvailable, HOSRemaining: 9.5, Phone: "414-555-0505", Avatar: "RW"},
		{ID: "drv6", Name: "Lisa Thompson", CDLNo: "CDL-OH-2276", Status: models.DriverStatusOffDuty, HOSRemaining: 0, Phone: "216-555-0606", Avatar: "LT"},
	}
}

func mockAssets() []models.Asset {
	return []models.Asset{
		{ID: "ast1", UnitNo: "T-1842", Type: models.AssetTypeTractor, Make: "Freightliner", Model: "Cascadia", Status: models.EquipmentStatusAssigned, Location: models.Location{Lat: 41.8868, Lon: -87.6564}, Odometer: 145230},
		{ID: "ast2", UnitNo: "T-1895", Type: models.AssetTypeTractor, Make: "Volvo", Model: "VNL 760", Status: models.EquipmentStatusAssigned, Location: models.Location{Lat: 42.3681, Lon: -83.0758}, Odometer: 98450},
		{ID: "ast3", UnitNo: "T-2003", Type: models.AssetTypeTractor, Make: "Kenworth", Model: "T680", Status: models.EquipmentStatusAvailable, Location: models.Location{Lat: 39.7742, Lon: -86.2384}, Odometer: 67890},
		{ID: "ast4", UnitNo: "T-2156", Type: models.AssetTypeTractor, Make: "Peterbilt", Model: "579", Status: models.EquipmentStatusAssigned, Location: models.Location{Lat: 39.9848, Lon: -82.9853}, Odometer: 112340},
		{ID: "ast5", UnitNo: "T-2298", Type: models.AssetTypeTractor, Make: "Freightliner", Model: "Cascadia", Status: models.EquipmentStatusAvailable, Location: models.Location{Lat: 43.0642, Lon: -87.9673}, Odometer: 54120},
	}
}

func mockTrailers() []models.Trailer {
	return []models.Trailer{
		{ID: "trl1", TrailerNo: "TR-5432", Type: models.TrailerTypeDry, Status: models.EquipmentStatusAssigned},
		{ID: "trl2", TrailerNo: "TR-5489", Type: models.TrailerTypeReefer, Status: models.EquipmentStatusAssigned},
		{ID: "trl3", TrailerNo: "TR-5501", Type: models.TrailerTypeDry, Status: models.EquipmentStatusAvailable},
		{ID: "trl4", TrailerNo: "TR-5623", Type: models.TrailerTypeFlatbed, Status: models.EquipmentStatusAssigned},
		{ID: "trl5", TrailerNo: "TR-5778", Type: models.TrailerTypeReefer, Status: models.EquipmentStatusAvailable},
	}
}

// MockKPIs is the dashboard KPI snapshot that ships with the mock dataset.
func MockKPIs() models.KPIMetrics {
	return models.KPIMetrics{
		OnTimeDeliveryRate: 94.2,
		AvgDwellTime:       68,
		TrailerUtilization: 87.5,
		EmptyMilesPercent:  12.3,
		ActiveTrips:        4,
		AvailableDrivers:   2,
		AvailableAssets:    2,
	}
}

func mockTrips(now time.Time) []models.Trip {
	at := func(hours float64) time.Time {
		return now.Add(time.Duration(hours * float64(time.Hour)))
	}
	ptr := func(t time.Time) *time.Time { return &t }

	return []models.Trip{
		{
			ID:        "trip001",
			OrderRef:  "ORD-2024-0482",
			Status:    models.TripStatusInTransit,
			DriverID:  "drv1",
			AssetID:   "ast1",
			TrailerID: "trl1",
			Stops: []models.Stop{
				{ID: "stp1", Seq: 1, Place: Places[0], Type: models.StopTypePickup, AppointmentStart: at(-4), AppointmentEnd: at(-3), ActualArrival: ptr(at(-3.5)), ActualDeparture: ptr(at(-3)), Status: models.StopStatusCompleted},
				{ID: "stp2", Seq: 2, Place: Places[1], Type: models.StopTypeDropoff, AppointmentStart: at(1), AppointmentEnd: at(2), Status: models.StopStatusPending},
			},
			CurrentLocation: models.Location{Lat: 42.1, Lon: -86.3},
			ETA:             at(1.2),
			OnTimeRisk:      models.RiskLow,
			MilesPlanned:    283,
			MilesCompleted:  185,
			Customer:        "Midwest Manufacturing Co.",
			Commodity:       "Industrial Equipment",
			Exceptions:      []models.Exception{},
			CreatedAt:       at(-5),
		},
		{
			ID:        "trip002",
			OrderRef:  "ORD-2024-0495",
			Status:    models.TripStatusAtPickup,
			DriverID:  "drv2",
			AssetID:   "ast2",
			TrailerID: "trl2",
			Stops: []models.Stop{
				{ID: "stp3", Seq: 1, Place: Places[4], Type: models.StopTypePickup, AppointmentStart: at(-0.5), AppointmentEnd: at(0.5), ActualArrival: ptr(at(-0.3)), Status: models.StopStatusArrived},
				{ID: "stp4", Seq: 2, Place: Places[5], Type: models.StopTypeDropoff, AppointmentStart: at(4), AppointmentEnd: at(5), Status: models.StopStatusPending},
			},
			CurrentLocation: Places[4].Location(),
			ETA:             at(4.5),
			OnTimeRisk:      models.RiskMedium,
			MilesPlanned:    412,
			MilesCompleted:  0,
			Customer:        "Fresh Foods Distribution",
			Commodity:       "Refrigerated Goods",
			Exceptions: []models.Exception{
				{ID: "exc1", TripID: "trip002", Type: models.ExceptionDwellLong, Severity: models.SeverityMedium, Description: "Extended dwell time at pickup location - loading delay", ReportedAt: at(-0.2)},
			},
			CreatedAt: at(-2),
		},
		{
			ID:        "trip003",
			OrderRef:  "ORD-2024-0501",
			Status:    models.TripStatusInTransit,
			DriverID:  "drv4",
			AssetID:   "ast4",
			TrailerID: "trl4",
			Stops: []models.Stop{
				{ID: "stp5", Seq: 1, Place: Places[2], Type: models.StopTypePickup, AppointmentStart: at(-6), AppointmentEnd: at(-5), ActualArrival: ptr(at(-5.5)), ActualDeparture: ptr(at(-5)), Status: models.StopStatusCompleted},
				{ID: "stp6", Seq: 2, Place: Places[3], Type: models.StopTypeDropoff, AppointmentStart: at(-0.5), AppointmentEnd: at(0.5), Status: models.StopStatusPending},
			},
			CurrentLocation: models.Location{Lat: 39.88, Lon: -85.12},
			ETA:             at(0.8),
			OnTimeRisk:      models.RiskHigh,
			MilesPlanned:    176,
			MilesCompleted:  142,
			Customer:        "BuildRight Construction",
			Commodity:       "Steel Beams",
			Exceptions: []models.Exception{
				{ID: "exc2", TripID: "trip003", Type: models.ExceptionDelay, Severity: models.SeverityHigh, Description: "Traffic delay on I-70 due to construction", ReportedAt: at(-1)},
			},
			CreatedAt: at(-7),
		},
		{
			// dispatched but still waiting on resources
			ID:       "trip004",
			OrderRef: "ORD-2024-0489",
			Status:   models.TripStatusDispatched,
			Stops: []models.Stop{
				{ID: "stp7", Seq: 1, Place: Places[0], Type: models.StopTypePickup, AppointmentStart: at(2), AppointmentEnd: at(3), Status: models.StopStatusPending},
				{ID: "stp8", Seq: 2, Place: Places[2], Type: models.StopTypeDropoff, AppointmentStart: at(6), AppointmentEnd: at(7), Status: models.StopStatusPending},
			},
			CurrentLocation: Places[0].Location(),
			ETA:             at(6.5),
			OnTimeRisk:      models.RiskLow,
			MilesPlanned:    185,
			MilesCompleted:  0,
			Customer:        "Global Retail Corp",
			Commodity:       "Consumer Electronics",
			Exceptions:      []models.Exception{},
			CreatedAt:       at(-1),
		},
	}
}

// MockFleet returns the dashboard's mock dataset with timestamps relative to now.
// Every call returns fresh slices.
func MockFleet(now time.Time) models.Fleet {
	return models.Fleet{
		Trips:    mockTrips(now),
		Drivers:  mockDrivers(),
		Assets:   mockAssets(),
		Trailers: mockTrailers(),
		KPIs:     MockKPIs(),
	}
}
