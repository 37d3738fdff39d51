package models

type TripStatus string

const (
	TripStatusPlanned        TripStatus = "planned"
	TripStatusDispatched     TripStatus = "dispatched"
	TripStatusAtPickup       TripStatus = "at_pickup"
	TripStatusDepartedPickup TripStatus = "departed_pickup"
	TripStatusInTransit      TripStatus = "in_transit"
	TripStatusAtDelivery     TripStatus = "at_delivery"
	TripStatusDelivered      TripStatus = "delivered"
	TripStatusClosed         TripStatus = "closed"
)

// tripStatusOrder is the lifecycle order; a status's index is its rank.
var tripStatusOrder = []TripStatus{
	TripStatusPlanned,
	TripStatusDispatched,
	TripStatusAtPickup,
	TripStatusDepartedPickup,
	TripStatusInTransit,
	TripStatusAtDelivery,
	TripStatusDelivered,
	TripStatusClosed,
}

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Severity shares the three levels of Risk.
type Severity = Risk

const (
	SeverityLow    = RiskLow
	SeverityMedium = RiskMedium
	SeverityHigh   = RiskHigh
)

type StopType string

const (
	StopTypePickup  StopType = "pickup"
	StopTypeDropoff StopType = "dropoff"
)

type StopStatus string

const (
	StopStatusPending   StopStatus = "pending"
	StopStatusArrived   StopStatus = "arrived"
	StopStatusCompleted StopStatus = "completed"
)

type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusAssigned  DriverStatus = "assigned"
	DriverStatusOffDuty   DriverStatus = "off_duty"
)

// EquipmentStatus is shared by assets and trailers.
type EquipmentStatus string

const (
	EquipmentStatusAvailable   EquipmentStatus = "available"
	EquipmentStatusAssigned    EquipmentStatus = "assigned"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
)

type AssetType string

const (
	AssetTypeTractor  AssetType = "tractor"
	AssetTypeStraight AssetType = "straight"
)

type TrailerType string

const (
	TrailerTypeDry     TrailerType = "dry"
	TrailerTypeReefer  TrailerType = "reefer"
	TrailerTypeFlatbed TrailerType = "flatbed"
)

type ExceptionType string

const (
	ExceptionDelay          ExceptionType = "delay"
	ExceptionRouteDeviation ExceptionType = "route_deviation"
	ExceptionEquipmentIssue ExceptionType = "equipment_issue"
	ExceptionCustomerIssue  ExceptionType = "customer_issue"
	ExceptionWeather        ExceptionType = "weather"
	ExceptionAccident       ExceptionType = "accident"
	ExceptionDwellLong      ExceptionType = "dwell_long"
)

var ExceptionTypes = []ExceptionType{
	ExceptionDelay,
	ExceptionRouteDeviation,
	ExceptionEquipmentIssue,
	ExceptionCustomerIssue,
	ExceptionWeather,
	ExceptionAccident,
	ExceptionDwellLong,
}

// Storage keys, one per persisted collection.
const (
	KeyTrips    = "fleet-trips"
	KeyDrivers  = "fleet-drivers"
	KeyAssets   = "fleet-assets"
	KeyTrailers = "fleet-trailers"
	KeyKPIs     = "fleet-kpis"
)
