package factories

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chrisdamba/fleetops/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var commodities = []string{
	"Industrial Equipment", "Refrigerated Goods", "Steel Beams", "Consumer Electronics",
	"Paper Products", "Auto Parts", "Building Materials", "Packaged Food", "Beverages",
}

var assetMakes = []struct {
	Make   string
	Models []string
}{
	{"Freightliner", []string{"Cascadia", "M2 106"}},
	{"Volvo", []string{"VNL 760", "VNR 640"}},
	{"Kenworth", []string{"T680", "W990"}},
	{"Peterbilt", []string{"579", "389"}},
	{"International", []string{"LT", "MV"}},
}

// generatedStatuses are the trip statuses the generator draws from; closed trips
// are left out because their resources would already be released.
var generatedStatuses = []models.TripStatus{
	models.TripStatusPlanned,
	models.TripStatusDispatched,
	models.TripStatusAtPickup,
	models.TripStatusDepartedPickup,
	models.TripStatusInTransit,
	models.TripStatusAtDelivery,
	models.TripStatusDelivered,
}

// FleetFactory builds random but internally consistent fleets: every trip at or past
// dispatch holds a driver, asset and trailer that nothing else holds.
type FleetFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

func NewFleetFactory(seed int64) *FleetFactory {
	return &FleetFactory{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (ff *FleetFactory) CreatePlace() models.Place {
	city := ff.fake.Address().City()
	return models.Place{
		ID:      cuid.New(),
		Name:    fmt.Sprintf("%s %s", city, ff.fake.RandomStringElement([]string{"Distribution Center", "Warehouse", "Hub", "Depot", "Plant", "Facility"})),
		Address: ff.fake.Address().StreetAddress(),
		City:    city,
		State:   ff.fake.Address().StateAbbr(),
		Lat:     ff.fake.Float64(4, 38, 44),
		Lon:     -ff.fake.Float64(4, 81, 90),
	}
}

func (ff *FleetFactory) CreateDriver() models.Driver {
	first := ff.fake.Person().FirstName()
	last := ff.fake.Person().LastName()

	status := models.DriverStatusAvailable
	hos := ff.fake.Float64(1, 0, 11)
	if ff.rng.Float64() < 0.15 {
		status = models.DriverStatusOffDuty
		hos = 0
	}

	return models.Driver{
		ID:           cuid.New(),
		Name:         first + " " + last,
		CDLNo:        fmt.Sprintf("CDL-%s-%04d", ff.fake.Address().StateAbbr(), ff.fake.IntBetween(1000, 9999)),
		Status:       status,
		HOSRemaining: hos,
		Phone:        ff.fake.Phone().Number(),
		Avatar:       initials(first, last),
	}
}

func (ff *FleetFactory) CreateAsset() models.Asset {
	mk := assetMakes[ff.rng.Intn(len(assetMakes))]

	assetType := models.AssetTypeTractor
	if ff.rng.Float64() < 0.2 {
		assetType = models.AssetTypeStraight
	}
	status := models.EquipmentStatusAvailable
	if ff.rng.Float64() < 0.1 {
		status = models.EquipmentStatusMaintenance
	}

	return models.Asset{
		ID:       cuid.New(),
		UnitNo:   fmt.Sprintf("T-%04d", ff.fake.IntBetween(1000, 9999)),
		Type:     assetType,
		Make:     mk.Make,
		Model:    mk.Models[ff.rng.Intn(len(mk.Models))],
		Status:   status,
		Location: models.Location{Lat: ff.fake.Float64(4, 38, 44), Lon: -ff.fake.Float64(4, 81, 90)},
		Odometer: ff.fake.IntBetween(10000, 400000),
	}
}

func (ff *FleetFactory) CreateTrailer() models.Trailer {
	types := []models.TrailerType{models.TrailerTypeDry, models.TrailerTypeReefer, models.TrailerTypeFlatbed}
	status := models.EquipmentStatusAvailable
	if ff.rng.Float64() < 0.1 {
		status = models.EquipmentStatusMaintenance
	}
	return models.Trailer{
		ID:        cuid.New(),
		TrailerNo: fmt.Sprintf("TR-%04d", ff.fake.IntBetween(1000, 9999)),
		Type:      types[ff.rng.Intn(len(types))],
		Status:    status,
	}
}

// CreateFleet generates a fleet of the configured size. Trips that would need
// resources fall back to planned once the available pools run dry.
func (ff *FleetFactory) CreateFleet(cfg models.FixtureConfig, now time.Time) models.Fleet {
	fleet := models.Fleet{
		Drivers:  make([]models.Driver, 0, cfg.Drivers),
		Assets:   make([]models.Asset, 0, cfg.Assets),
		Trailers: make([]models.Trailer, 0, cfg.Trailers),
		Trips:    make([]models.Trip, 0, cfg.Trips),
	}
	for i := 0; i < cfg.Drivers; i++ {
		fleet.Drivers = append(fleet.Drivers, ff.CreateDriver())
	}
	for i := 0; i < cfg.Assets; i++ {
		fleet.Assets = append(fleet.Assets, ff.CreateAsset())
	}
	for i := 0; i < cfg.Trailers; i++ {
		fleet.Trailers = append(fleet.Trailers, ff.CreateTrailer())
	}

	places := make([]models.Place, 0, 8)
	for i := 0; i < 8; i++ {
		places = append(places, ff.CreatePlace())
	}

	for i := 0; i < cfg.Trips; i++ {
		trip := ff.createTrip(i, places, now)
		if trip.Status.Dispatched() {
			d, a, t := claimDriver(fleet.Drivers), claimAsset(fleet.Assets), claimTrailer(fleet.Trailers)
			if d < 0 || a < 0 || t < 0 {
				// release partial claims
				if d >= 0 {
					fleet.Drivers[d].Status = models.DriverStatusAvailable
				}
				if a >= 0 {
					fleet.Assets[a].Status = models.EquipmentStatusAvailable
				}
				if t >= 0 {
					fleet.Trailers[t].Status = models.EquipmentStatusAvailable
				}
				ff.rewind(&trip, models.TripStatusPlanned)
			} else {
				trip.DriverID = fleet.Drivers[d].ID
				trip.AssetID = fleet.Assets[a].ID
				trip.TrailerID = fleet.Trailers[t].ID
				loc := trip.CurrentLocation
				fleet.Drivers[d].LastLocation = &loc
				fleet.Assets[a].Location = loc
				fleet.Trailers[t].Location = &loc
			}
		}
		fleet.Trips = append(fleet.Trips, trip)
	}

	fleet.KPIs = models.KPIMetrics{
		OnTimeDeliveryRate: ff.fake.Float64(1, 85, 99),
		AvgDwellTime:       float64(ff.fake.IntBetween(45, 110)),
		TrailerUtilization: ff.fake.Float64(1, 60, 95),
		EmptyMilesPercent:  ff.fake.Float64(1, 8, 20),
	}
	return fleet
}

func (ff *FleetFactory) createTrip(i int, places []models.Place, now time.Time) models.Trip {
	pickup := places[ff.rng.Intn(len(places))]
	dropoff := places[ff.rng.Intn(len(places))]
	for dropoff.ID == pickup.ID {
		dropoff = places[ff.rng.Intn(len(places))]
	}

	start := now.Add(time.Duration(ff.fake.IntBetween(-6, 6)) * time.Hour)
	transit := time.Duration(ff.fake.IntBetween(3, 9)) * time.Hour

	trip := models.Trip{
		ID:       cuid.New(),
		OrderRef: fmt.Sprintf("ORD-%d-%04d", now.Year(), 1000+i),
		Stops: []models.Stop{
			{ID: cuid.New(), Seq: 1, Place: pickup, Type: models.StopTypePickup, AppointmentStart: start, AppointmentEnd: start.Add(time.Hour)},
			{ID: cuid.New(), Seq: 2, Place: dropoff, Type: models.StopTypeDropoff, AppointmentStart: start.Add(transit), AppointmentEnd: start.Add(transit + time.Hour)},
		},
		ETA:          start.Add(transit + 30*time.Minute),
		OnTimeRisk:   []models.Risk{models.RiskLow, models.RiskLow, models.RiskMedium, models.RiskHigh}[ff.rng.Intn(4)],
		MilesPlanned: float64(ff.fake.IntBetween(80, 650)),
		Customer:     ff.fake.Company().Name(),
		Commodity:    commodities[ff.rng.Intn(len(commodities))],
		Exceptions:   []models.Exception{},
		CreatedAt:    start.Add(-time.Duration(ff.fake.IntBetween(1, 24)) * time.Hour),
	}
	ff.rewind(&trip, generatedStatuses[ff.rng.Intn(len(generatedStatuses))])
	return trip
}

// rewind puts the trip's stops, position and mileage in line with status.
func (ff *FleetFactory) rewind(trip *models.Trip, status models.TripStatus) {
	trip.Status = status
	pickup, dropoff := &trip.Stops[0], &trip.Stops[1]
	pickup.Status, dropoff.Status = models.StopStatusPending, models.StopStatusPending
	pickup.ActualArrival, pickup.ActualDeparture = nil, nil
	dropoff.ActualArrival, dropoff.ActualDeparture = nil, nil
	trip.CurrentLocation = pickup.Place.Location()
	trip.MilesCompleted = 0

	arrived := func(s *models.Stop) {
		at := s.AppointmentStart.Add(10 * time.Minute)
		s.ActualArrival = &at
		s.Status = models.StopStatusArrived
	}
	completed := func(s *models.Stop) {
		arrived(s)
		at := s.AppointmentEnd
		s.ActualDeparture = &at
		s.Status = models.StopStatusCompleted
	}

	switch status {
	case models.TripStatusAtPickup:
		arrived(pickup)
	case models.TripStatusDepartedPickup:
		completed(pickup)
		trip.MilesCompleted = trip.MilesPlanned * 0.05
	case models.TripStatusInTransit:
		completed(pickup)
		frac := 0.2 + ff.rng.Float64()*0.6
		trip.MilesCompleted = float64(int(trip.MilesPlanned * frac))
		trip.CurrentLocation = models.Location{
			Lat: pickup.Place.Lat + (dropoff.Place.Lat-pickup.Place.Lat)*frac,
			Lon: pickup.Place.Lon + (dropoff.Place.Lon-pickup.Place.Lon)*frac,
		}
	case models.TripStatusAtDelivery:
		completed(pickup)
		arrived(dropoff)
		trip.MilesCompleted = trip.MilesPlanned
		trip.CurrentLocation = dropoff.Place.Location()
	case models.TripStatusDelivered, models.TripStatusClosed:
		completed(pickup)
		completed(dropoff)
		trip.MilesCompleted = trip.MilesPlanned
		trip.CurrentLocation = dropoff.Place.Location()
	}
}

func claimDriver(drivers []models.Driver) int {
	for i := range drivers {
		if drivers[i].Status == models.DriverStatusAvailable && drivers[i].HOSRemaining >= 4 {
			drivers[i].Status = models.DriverStatusAssigned
			return i
		}
	}
	return -1
}

func claimAsset(assets []models.Asset) int {
	for i := range assets {
		if assets[i].Status == models.EquipmentStatusAvailable {
			assets[i].Status = models.EquipmentStatusAssigned
			return i
		}
	}
	return -1
}

func claimTrailer(trailers []models.Trailer) int {
	for i := range trailers {
		if trailers[i].Status == models.EquipmentStatusAvailable {
			trailers[i].Status = models.EquipmentStatusAssigned
			return i
		}
	}
	return -1
}

func initials(first, last string) string {
	var b strings.Builder
	for _, s := range []string{first, last} {
		if s != "" {
			b.WriteString(strings.ToUpper(s[:1]))
		}
	}
	return b.String()
}
