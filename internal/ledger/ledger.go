package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/models"
	"github.com/chrisdamba/fleetops/internal/repositories"
)

// SeedFunc supplies the initial fleet for any collection the store does not hold yet.
type SeedFunc func() models.Fleet

type Option func(*Ledger)

func WithPolicy(p Policy) Option {
	return func(l *Ledger) { l.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// Ledger owns trips, drivers, assets and trailers and is the only thing that
// changes them. Every write is applied to a copy of the state, persisted, and
// only then made visible, so a failed write leaves nothing behind.
type Ledger struct {
	mu     sync.Mutex
	state  models.Fleet
	store  repositories.SnapshotStore
	seed   SeedFunc
	policy Policy
	now    func() time.Time
	newID  func() string
	logger *zap.Logger

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

var allKeys = []string{models.KeyTrips, models.KeyDrivers, models.KeyAssets, models.KeyTrailers, models.KeyKPIs}

// Open loads every collection from store. Collections the store has never seen
// are taken from seed and written back, so the first run persists the fixtures.
func Open(ctx context.Context, store repositories.SnapshotStore, seed SeedFunc, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("open ledger: store must be non-nil")
	}
	if seed == nil {
		return nil, errors.New("open ledger: seed must be non-nil")
	}

	l := &Ledger{
		store:  store,
		seed:   seed,
		policy: DefaultPolicy(),
		now:    time.Now,
		newID:  cuid.New,
		logger: zap.NewNop(),
		subs:   make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(l)
	}

	var seeded *models.Fleet
	fromSeed := func() models.Fleet {
		if seeded == nil {
			f := l.seed().Clone()
			seeded = &f
		}
		return *seeded
	}

	var missing []string
	for _, key := range allKeys {
		b, err := store.Get(ctx, key)
		if errors.Is(err, repositories.ErrNotFound) {
			missing = append(missing, key)
			if err := copyCollection(&l.state, fromSeed(), key); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open ledger: load %s: %w", key, err)
		}
		if err := decodeCollection(&l.state, key, b); err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
	}

	if len(missing) > 0 {
		snap, err := encodeCollections(l.state, missing...)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		if err := store.PutMany(ctx, snap); err != nil {
			return nil, fmt.Errorf("open ledger: persist seed: %w", err)
		}
		l.logger.Info("seeded collections from fixtures", zap.Strings("keys", missing))
	}

	l.warnViolations("loaded state")
	return l, nil
}

// AssignResources puts a driver, asset and trailer on a trip and dispatches it.
// All four records change together or none do.
func (l *Ledger) AssignResources(ctx context.Context, tripID, driverID, assetID, trailerID string) error {
	l.mu.Lock()
	ev, err := l.assign(ctx, tripID, driverID, assetID, trailerID)
	l.mu.Unlock()

	if err != nil {
		l.logger.Info("assignment rejected",
			zap.String("trip_id", tripID),
			zap.String("driver_id", driverID),
			zap.String("asset_id", assetID),
			zap.String("trailer_id", trailerID),
			zap.Error(err),
		)
		return err
	}

	l.logger.Info("resources assigned",
		zap.String("trip_id", tripID),
		zap.String("driver_id", driverID),
		zap.String("asset_id", assetID),
		zap.String("trailer_id", trailerID),
	)
	l.notify(ev)
	return nil
}

func (l *Ledger) assign(ctx context.Context, tripID, driverID, assetID, trailerID string) (Event, error) {
	ti := indexOf(l.state.Trips, tripID, func(t models.Trip) string { return t.ID })
	if ti < 0 {
		return Event{}, &NotFoundError{Kind: "trip", ID: tripID}
	}
	trip := l.state.Trips[ti]
	if !trip.NoResources() {
		return Event{}, invalid("trip %s is already assigned", trip.OrderRef)
	}
	if trip.Status != models.TripStatusPlanned && trip.Status != models.TripStatusDispatched {
		return Event{}, invalid("trip %s is %s and cannot be assigned", trip.OrderRef, strings.ToLower(trip.Status.Label()))
	}

	if strings.TrimSpace(driverID) == "" {
		return Event{}, invalid("select a driver")
	}
	di := indexOf(l.state.Drivers, driverID, func(d models.Driver) string { return d.ID })
	if di < 0 {
		return Event{}, &NotFoundError{Kind: "driver", ID: driverID}
	}
	driver := l.state.Drivers[di]
	if !l.selectable(driver) {
		return Event{}, invalid("driver %s is %s and cannot be assigned", driver.Name, driver.Status)
	}
	if driver.HOSRemaining < l.policy.MinHOSHours {
		return Event{}, invalid("insufficient hours-of-service: driver %s has %s remaining, %s required",
			driver.Name, models.FormatHOS(driver.HOSRemaining), models.FormatHOS(l.policy.MinHOSHours))
	}

	if strings.TrimSpace(assetID) == "" {
		return Event{}, invalid("select an asset")
	}
	ai := indexOf(l.state.Assets, assetID, func(a models.Asset) string { return a.ID })
	if ai < 0 {
		return Event{}, &NotFoundError{Kind: "asset", ID: assetID}
	}
	if asset := l.state.Assets[ai]; asset.Status != models.EquipmentStatusAvailable {
		return Event{}, invalid("asset %s is %s and cannot be assigned", asset.UnitNo, asset.Status)
	}

	if strings.TrimSpace(trailerID) == "" {
		return Event{}, invalid("select a trailer")
	}
	tri := indexOf(l.state.Trailers, trailerID, func(t models.Trailer) string { return t.ID })
	if tri < 0 {
		return Event{}, &NotFoundError{Kind: "trailer", ID: trailerID}
	}
	if trailer := l.state.Trailers[tri]; trailer.Status != models.EquipmentStatusAvailable {
		return Event{}, invalid("trailer %s is %s and cannot be assigned", trailer.TrailerNo, trailer.Status)
	}

	next := l.state.Clone()
	t := &next.Trips[ti]
	t.DriverID, t.AssetID, t.TrailerID = driverID, assetID, trailerID
	t.Status = models.TripStatusDispatched
	next.Drivers[di].Status = models.DriverStatusAssigned
	next.Assets[ai].Status = models.EquipmentStatusAssigned
	next.Trailers[tri].Status = models.EquipmentStatusAssigned

	if err := l.commit(ctx, next, models.KeyTrips, models.KeyDrivers, models.KeyAssets, models.KeyTrailers); err != nil {
		return Event{}, err
	}

	return Event{
		Kind:      EventAssignment,
		TripID:    tripID,
		DriverID:  driverID,
		AssetID:   assetID,
		TrailerID: trailerID,
		At:        l.now().UTC(),
	}, nil
}

// ReportException appends an exception to a trip. A high-severity exception
// raises the trip's on-time risk to high; nothing here ever lowers it.
func (l *Ledger) ReportException(ctx context.Context, tripID string, kind models.ExceptionType, severity models.Severity, description string) (models.Exception, error) {
	l.mu.Lock()
	exc, err := l.report(ctx, tripID, kind, severity, description)
	l.mu.Unlock()

	if err != nil {
		l.logger.Info("exception rejected", zap.String("trip_id", tripID), zap.Error(err))
		return models.Exception{}, err
	}

	l.logger.Info("exception reported",
		zap.String("trip_id", tripID),
		zap.String("exception_id", exc.ID),
		zap.String("type", string(kind)),
		zap.String("severity", string(severity)),
	)
	l.notify(Event{
		Kind:        EventException,
		TripID:      tripID,
		ExceptionID: exc.ID,
		Severity:    severity,
		At:          exc.ReportedAt,
	})
	return exc, nil
}

func (l *Ledger) report(ctx context.Context, tripID string, kind models.ExceptionType, severity models.Severity, description string) (models.Exception, error) {
	ti := indexOf(l.state.Trips, tripID, func(t models.Trip) string { return t.ID })
	if ti < 0 {
		return models.Exception{}, &NotFoundError{Kind: "trip", ID: tripID}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return models.Exception{}, invalid("description required")
	}
	if !kind.Valid() {
		return models.Exception{}, invalid("unknown exception type %q", kind)
	}
	if !severity.Valid() {
		return models.Exception{}, invalid("unknown severity %q", severity)
	}

	exc := models.Exception{
		ID:          "exc-" + l.newID(),
		TripID:      tripID,
		Type:        kind,
		Severity:    severity,
		Description: description,
		ReportedAt:  l.now().UTC(),
	}

	next := l.state.Clone()
	t := &next.Trips[ti]
	t.Exceptions = append(t.Exceptions, exc)
	if severity == models.SeverityHigh {
		t.OnTimeRisk = models.RiskHigh
	}

	if err := l.commit(ctx, next, models.KeyTrips); err != nil {
		return models.Exception{}, err
	}
	return exc, nil
}

// Reset replaces every collection with a fresh seed. It is the only operation
// that can lower a trip's on-time risk.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	err := l.commit(ctx, l.seed().Clone(), allKeys...)
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.logger.Info("ledger reset from fixtures")
	l.warnViolations("reset state")
	l.notify(Event{Kind: EventReset, At: l.now().UTC()})
	return nil
}

// commit persists the given collections of next and then swaps it in. Callers hold mu.
func (l *Ledger) commit(ctx context.Context, next models.Fleet, keys ...string) error {
	snap, err := encodeCollections(next, keys...)
	if err != nil {
		return err
	}
	if err := l.store.PutMany(ctx, snap); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	l.state = next
	return nil
}

func (l *Ledger) selectable(d models.Driver) bool {
	switch d.Status {
	case models.DriverStatusAvailable:
		return true
	case models.DriverStatusAssigned:
		return l.policy.AllowAssignedDrivers
	}
	return false
}

func (l *Ledger) warnViolations(what string) {
	l.mu.Lock()
	err := Audit(l.state)
	l.mu.Unlock()

	for _, v := range multierr.Errors(err) {
		l.logger.Warn("invariant violation in "+what, zap.Error(v))
	}
}

func (l *Ledger) Policy() Policy { return l.policy }

// Trips returns a copy of every trip in insertion order.
func (l *Ledger) Trips() []models.Trip {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Trip, len(l.state.Trips))
	for i, t := range l.state.Trips {
		out[i] = t.Clone()
	}
	return out
}

func (l *Ledger) Drivers() []models.Driver {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Driver, len(l.state.Drivers))
	for i, d := range l.state.Drivers {
		out[i] = d.Clone()
	}
	return out
}

func (l *Ledger) Assets() []models.Asset {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Asset, len(l.state.Assets))
	copy(out, l.state.Assets)
	return out
}

func (l *Ledger) Trailers() []models.Trailer {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Trailer, len(l.state.Trailers))
	for i, t := range l.state.Trailers {
		out[i] = t.Clone()
	}
	return out
}

// Snapshot returns a deep copy of the whole state.
func (l *Ledger) Snapshot() models.Fleet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

func (l *Ledger) Trip(id string) (models.Trip, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := indexOf(l.state.Trips, id, func(t models.Trip) string { return t.ID }); i >= 0 {
		return l.state.Trips[i].Clone(), nil
	}
	return models.Trip{}, &NotFoundError{Kind: "trip", ID: id}
}

func (l *Ledger) Driver(id string) (models.Driver, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := indexOf(l.state.Drivers, id, func(d models.Driver) string { return d.ID }); i >= 0 {
		return l.state.Drivers[i].Clone(), nil
	}
	return models.Driver{}, &NotFoundError{Kind: "driver", ID: id}
}

func (l *Ledger) Asset(id string) (models.Asset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := indexOf(l.state.Assets, id, func(a models.Asset) string { return a.ID }); i >= 0 {
		return l.state.Assets[i], nil
	}
	return models.Asset{}, &NotFoundError{Kind: "asset", ID: id}
}

func (l *Ledger) Trailer(id string) (models.Trailer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := indexOf(l.state.Trailers, id, func(t models.Trailer) string { return t.ID }); i >= 0 {
		return l.state.Trailers[i].Clone(), nil
	}
	return models.Trailer{}, &NotFoundError{Kind: "trailer", ID: id}
}

// KPIs returns the stored KPI snapshot with the resource counts taken from live state.
func (l *Ledger) KPIs() models.KPIMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := l.state.KPIs
	k.ActiveTrips = len(ActiveTrips(l.state.Trips))
	k.AvailableDrivers = 0
	for _, d := range l.state.Drivers {
		if d.Status == models.DriverStatusAvailable {
			k.AvailableDrivers++
		}
	}
	k.AvailableAssets = 0
	for _, a := range l.state.Assets {
		if a.Status == models.EquipmentStatusAvailable {
			k.AvailableAssets++
		}
	}
	return k
}

// Candidates are the records an assignment may pick from under the current policy.
type Candidates struct {
	Drivers  []models.Driver  `json:"drivers"`
	Assets   []models.Asset   `json:"assets"`
	Trailers []models.Trailer `json:"trailers"`
}

// Candidates lists selectable drivers, assets and trailers. Drivers short on
// hours-of-service are included, since a dispatcher should see why they fail.
func (l *Ledger) Candidates() Candidates {
	l.mu.Lock()
	defer l.mu.Unlock()

	c := Candidates{
		Drivers:  []models.Driver{},
		Assets:   []models.Asset{},
		Trailers: []models.Trailer{},
	}
	for _, d := range l.state.Drivers {
		if l.selectable(d) {
			c.Drivers = append(c.Drivers, d.Clone())
		}
	}
	for _, a := range l.state.Assets {
		if a.Status == models.EquipmentStatusAvailable {
			c.Assets = append(c.Assets, a)
		}
	}
	for _, t := range l.state.Trailers {
		if t.Status == models.EquipmentStatusAvailable {
			c.Trailers = append(c.Trailers, t.Clone())
		}
	}
	return c
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}

func encodeCollections(f models.Fleet, keys ...string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		var v any
		switch key {
		case models.KeyTrips:
			v = f.Trips
		case models.KeyDrivers:
			v = f.Drivers
		case models.KeyAssets:
			v = f.Assets
		case models.KeyTrailers:
			v = f.Trailers
		case models.KeyKPIs:
			v = f.KPIs
		default:
			return nil, fmt.Errorf("encode snapshot: unknown key %q", key)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot %s: %w", key, err)
		}
		out[key] = b
	}
	return out, nil
}

func decodeCollection(f *models.Fleet, key string, b []byte) error {
	var err error
	switch key {
	case models.KeyTrips:
		err = json.Unmarshal(b, &f.Trips)
	case models.KeyDrivers:
		err = json.Unmarshal(b, &f.Drivers)
	case models.KeyAssets:
		err = json.Unmarshal(b, &f.Assets)
	case models.KeyTrailers:
		err = json.Unmarshal(b, &f.Trailers)
	case models.KeyKPIs:
		err = json.Unmarshal(b, &f.KPIs)
	default:
		return fmt.Errorf("decode snapshot: unknown key %q", key)
	}
	if err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

func copyCollection(dst *models.Fleet, src models.Fleet, key string) error {
	switch key {
	case models.KeyTrips:
		dst.Trips = src.Trips
	case models.KeyDrivers:
		dst.Drivers = src.Drivers
	case models.KeyAssets:
		dst.Assets = src.Assets
	case models.KeyTrailers:
		dst.Trailers = src.Trailers
	case models.KeyKPIs:
		dst.KPIs = src.KPIs
	default:
		return fmt.Errorf("seed snapshot: unknown key %q", key)
	}
	return nil
}
