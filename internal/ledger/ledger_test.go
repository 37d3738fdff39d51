package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	"github.com/chrisdamba/fleetops/internal/factories"
	"github.com/chrisdamba/fleetops/internal/models"
	"github.com/chrisdamba/fleetops/internal/repositories"
	"github.com/chrisdamba/fleetops/internal/repositories/memory"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// flakyStore fails PutMany while failing is set.
type flakyStore struct {
	*memory.Store
	failing atomic.Bool
	puts    atomic.Int32
}

func (s *flakyStore) PutMany(ctx context.Context, snap map[string][]byte) error {
	s.puts.Add(1)
	if s.failing.Load() {
		return errors.New("disk full")
	}
	return s.Store.PutMany(ctx, snap)
}

func mockSeed() models.Fleet { return factories.MockFleet(testNow) }

func newTestLedger(t *testing.T, seed SeedFunc, opts ...Option) (*Ledger, *flakyStore) {
	t.Helper()
	store := &flakyStore{Store: memory.NewStore()}
	opts = append([]Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "test" }),
	}, opts...)
	l, err := Open(context.Background(), store, seed, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return l, store
}

func TestOpenSeedsMissingCollections(t *testing.T) {
	l, store := newTestLedger(t, mockSeed)

	if got := len(l.Trips()); got != 4 {
		t.Fatalf("len(Trips()) = %d, want 4", got)
	}
	for _, key := range allKeys {
		if _, err := store.Get(context.Background(), key); err != nil {
			t.Errorf("store.Get(%q) error = %v, want seeded value", key, err)
		}
	}
}

func TestOpenPrefersStoredCollections(t *testing.T) {
	ctx := context.Background()
	first, store := newTestLedger(t, mockSeed)
	if err := first.AssignResources(ctx, "trip004", "drv3", "ast3", "trl3"); err != nil {
		t.Fatalf("AssignResources() error = %v", err)
	}

	second, err := Open(ctx, store, mockSeed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	trip, err := second.Trip("trip004")
	if err != nil {
		t.Fatalf("Trip() error = %v", err)
	}
	if trip.DriverID != "drv3" || trip.AssetID != "ast3" || trip.TrailerID != "trl3" {
		t.Errorf("reopened trip004 resources = %s/%s/%s, want drv3/ast3/trl3", trip.DriverID, trip.AssetID, trip.TrailerID)
	}
}

func TestOpenSeedsOnlyMissingKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	if err := store.PutMany(ctx, map[string][]byte{models.KeyDrivers: []byte(`[{"id":"only","name":"Solo Driver","status":"available","hos_remaining":10}]`)}); err != nil {
		t.Fatalf("PutMany() error = %v", err)
	}

	l, err := Open(ctx, store, mockSeed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	drivers := l.Drivers()
	if len(drivers) != 1 || drivers[0].ID != "only" {
		t.Errorf("Drivers() = %+v, want the stored driver only", drivers)
	}
	if got := len(l.Assets()); got != 5 {
		t.Errorf("len(Assets()) = %d, want 5 from seed", got)
	}
}

func TestOpenRejectsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	_ = store.PutMany(ctx, map[string][]byte{models.KeyTrips: []byte(`{not json`)})

	if _, err := Open(ctx, store, mockSeed); err == nil {
		t.Fatal("Open() error = nil, want decode error")
	}
}

func TestAssignResources(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, mockSeed)

	if err := l.AssignResources(ctx, "trip004", "drv3", "ast3", "trl3"); err != nil {
		t.Fatalf("AssignResources() error = %v", err)
	}

	trip, _ := l.Trip("trip004")
	if trip.Status != models.TripStatusDispatched {
		t.Errorf("trip status = %s, want %s", trip.Status, models.TripStatusDispatched)
	}
	if trip.DriverID != "drv3" || trip.AssetID != "ast3" || trip.TrailerID != "trl3" {
		t.Errorf("trip resources = %s/%s/%s, want drv3/ast3/trl3", trip.DriverID, trip.AssetID, trip.TrailerID)
	}
	if d, _ := l.Driver("drv3"); d.Status != models.DriverStatusAssigned {
		t.Errorf("drv3 status = %s, want assigned", d.Status)
	}
	if a, _ := l.Asset("ast3"); a.Status != models.EquipmentStatusAssigned {
		t.Errorf("ast3 status = %s, want assigned", a.Status)
	}
	if tr, _ := l.Trailer("trl3"); tr.Status != models.EquipmentStatusAssigned {
		t.Errorf("trl3 status = %s, want assigned", tr.Status)
	}
	if err := Audit(l.Snapshot()); err != nil {
		t.Errorf("Audit() after assignment = %v, want nil", err)
	}
}

func TestAssignResourcesRejections(t *testing.T) {
	lowHOS := func() models.Fleet {
		f := mockSeed()
		f.Drivers[2].HOSRemaining = 3.5
		return f
	}

	tests := []struct {
		name                         string
		seed                         SeedFunc
		trip, driver, asset, trailer string
		wantValidation               bool
		wantNotFound                 bool
		wantMsg                      string
	}{
		{name: "insufficient hos", seed: lowHOS, trip: "trip004", driver: "drv3", asset: "ast3", trailer: "trl3", wantValidation: true, wantMsg: "hours-of-service"},
		{name: "asset in use", seed: mockSeed, trip: "trip004", driver: "drv3", asset: "ast1", trailer: "trl3", wantValidation: true, wantMsg: "T-1842"},
		{name: "trailer in use", seed: mockSeed, trip: "trip004", driver: "drv3", asset: "ast3", trailer: "trl2", wantValidation: true, wantMsg: "TR-5489"},
		{name: "driver off duty", seed: mockSeed, trip: "trip004", driver: "drv6", asset: "ast3", trailer: "trl3", wantValidation: true, wantMsg: "off_duty"},
		{name: "driver already assigned", seed: mockSeed, trip: "trip004", driver: "drv1", asset: "ast3", trailer: "trl3", wantValidation: true},
		{name: "missing driver", seed: mockSeed, trip: "trip004", asset: "ast3", trailer: "trl3", wantValidation: true, wantMsg: "select a driver"},
		{name: "missing asset", seed: mockSeed, trip: "trip004", driver: "drv3", trailer: "trl3", wantValidation: true, wantMsg: "select an asset"},
		{name: "missing trailer", seed: mockSeed, trip: "trip004", driver: "drv3", asset: "ast3", wantValidation: true, wantMsg: "select a trailer"},
		{name: "trip already assigned", seed: mockSeed, trip: "trip001", driver: "drv3", asset: "ast3", trailer: "trl3", wantValidation: true, wantMsg: "already assigned"},
		{name: "unknown trip", seed: mockSeed, trip: "trip999", driver: "drv3", asset: "ast3", trailer: "trl3", wantNotFound: true},
		{name: "unknown driver", seed: mockSeed, trip: "trip004", driver: "drv9", asset: "ast3", trailer: "trl3", wantNotFound: true},
		{name: "unknown asset", seed: mockSeed, trip: "trip004", driver: "drv3", asset: "ast9", trailer: "trl3", wantNotFound: true},
		{name: "unknown trailer", seed: mockSeed, trip: "trip004", driver: "drv3", asset: "ast3", trailer: "trl9", wantNotFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(t, tt.seed)
			before := l.Snapshot()
			puts := store.puts.Load()

			err := l.AssignResources(context.Background(), tt.trip, tt.driver, tt.asset, tt.trailer)
			if err == nil {
				t.Fatal("AssignResources() error = nil, want rejection")
			}
			if got := IsValidation(err); got != tt.wantValidation {
				t.Errorf("IsValidation(%v) = %v, want %v", err, got, tt.wantValidation)
			}
			if got := IsNotFound(err); got != tt.wantNotFound {
				t.Errorf("IsNotFound(%v) = %v, want %v", err, got, tt.wantNotFound)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
			if diff := cmp.Diff(before, l.Snapshot()); diff != "" {
				t.Errorf("state changed after rejection (-before +after):\n%s", diff)
			}
			if got := store.puts.Load(); got != puts {
				t.Errorf("store writes = %d, want %d", got, puts)
			}
		})
	}
}

func TestAssignResourcesAllowAssignedDrivers(t *testing.T) {
	l, _ := newTestLedger(t, mockSeed, WithPolicy(Policy{MinHOSHours: DefaultMinHOSHours, AllowAssignedDrivers: true}))

	if err := l.AssignResources(context.Background(), "trip004", "drv1", "ast3", "trl3"); err != nil {
		t.Fatalf("AssignResources() error = %v, want nil with assigned drivers allowed", err)
	}
	if err := Audit(l.Snapshot()); err == nil {
		t.Error("Audit() = nil, want a double-held driver reported")
	}
}

func TestAssignResourcesMinHOSBoundary(t *testing.T) {
	seed := func() models.Fleet {
		f := mockSeed()
		f.Drivers[2].HOSRemaining = DefaultMinHOSHours
		return f
	}
	l, _ := newTestLedger(t, seed)

	if err := l.AssignResources(context.Background(), "trip004", "drv3", "ast3", "trl3"); err != nil {
		t.Fatalf("AssignResources() at exactly the minimum error = %v, want nil", err)
	}
}

func TestAssignResourcesPersistFailure(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t, mockSeed)
	before := l.Snapshot()

	var events atomic.Int32
	l.Subscribe(func(Event) { events.Add(1) })

	store.failing.Store(true)
	err := l.AssignResources(ctx, "trip004", "drv3", "ast3", "trl3")
	if err == nil {
		t.Fatal("AssignResources() error = nil, want persist error")
	}
	if IsValidation(err) || IsNotFound(err) {
		t.Errorf("persist error classified as %T, want plain error", err)
	}
	if diff := cmp.Diff(before, l.Snapshot()); diff != "" {
		t.Errorf("state changed after failed persist (-before +after):\n%s", diff)
	}
	if got := events.Load(); got != 0 {
		t.Errorf("events = %d, want 0", got)
	}

	store.failing.Store(false)
	if err := l.AssignResources(ctx, "trip004", "drv3", "ast3", "trl3"); err != nil {
		t.Fatalf("retry AssignResources() error = %v", err)
	}
}

func TestReportException(t *testing.T) {
	ctx := context.Background()

	t.Run("high severity raises risk", func(t *testing.T) {
		l, _ := newTestLedger(t, mockSeed)

		exc, err := l.ReportException(ctx, "trip001", models.ExceptionEquipmentIssue, models.SeverityHigh, "  Flat tire on I-94  ")
		if err != nil {
			t.Fatalf("ReportException() error = %v", err)
		}
		want := models.Exception{
			ID:          "exc-test",
			TripID:      "trip001",
			Type:        models.ExceptionEquipmentIssue,
			Severity:    models.SeverityHigh,
			Description: "Flat tire on I-94",
			ReportedAt:  testNow,
		}
		if diff := cmp.Diff(want, exc); diff != "" {
			t.Errorf("exception mismatch (-want +got):\n%s", diff)
		}

		trip, _ := l.Trip("trip001")
		if trip.OnTimeRisk != models.RiskHigh {
			t.Errorf("risk = %s, want high", trip.OnTimeRisk)
		}
		if n := len(trip.Exceptions); n != 1 || trip.Exceptions[0].ID != exc.ID {
			t.Errorf("exceptions = %+v, want the new one appended", trip.Exceptions)
		}
	})

	t.Run("lower severity keeps risk", func(t *testing.T) {
		l, _ := newTestLedger(t, mockSeed)

		for _, sev := range []models.Severity{models.SeverityLow, models.SeverityMedium} {
			if _, err := l.ReportException(ctx, "trip001", models.ExceptionDelay, sev, "slow traffic"); err != nil {
				t.Fatalf("ReportException(%s) error = %v", sev, err)
			}
		}
		trip, _ := l.Trip("trip001")
		if trip.OnTimeRisk != models.RiskLow {
			t.Errorf("risk = %s, want low", trip.OnTimeRisk)
		}
		if len(trip.Exceptions) != 2 {
			t.Errorf("len(exceptions) = %d, want 2", len(trip.Exceptions))
		}
	})

	t.Run("never lowers risk", func(t *testing.T) {
		l, _ := newTestLedger(t, mockSeed)

		if _, err := l.ReportException(ctx, "trip003", models.ExceptionCustomerIssue, models.SeverityLow, "paperwork"); err != nil {
			t.Fatalf("ReportException() error = %v", err)
		}
		trip, _ := l.Trip("trip003")
		if trip.OnTimeRisk != models.RiskHigh {
			t.Errorf("risk = %s, want high", trip.OnTimeRisk)
		}
	})

	t.Run("appends in order", func(t *testing.T) {
		n := 0
		l, _ := newTestLedger(t, mockSeed, WithIDGenerator(func() string { n++; return fmt.Sprint(n) }))

		for i := 0; i < 3; i++ {
			if _, err := l.ReportException(ctx, "trip002", models.ExceptionDelay, models.SeverityLow, "update"); err != nil {
				t.Fatalf("ReportException() error = %v", err)
			}
		}
		trip, _ := l.Trip("trip002")
		var ids []string
		for _, e := range trip.Exceptions {
			ids = append(ids, e.ID)
		}
		if diff := cmp.Diff([]string{"exc1", "exc-1", "exc-2", "exc-3"}, ids); diff != "" {
			t.Errorf("exception ids (-want +got):\n%s", diff)
		}
	})
}

func TestReportExceptionRejections(t *testing.T) {
	tests := []struct {
		name         string
		trip         string
		kind         models.ExceptionType
		severity     models.Severity
		description  string
		wantNotFound bool
	}{
		{name: "empty description", trip: "trip001", kind: models.ExceptionDelay, severity: models.SeverityLow, description: ""},
		{name: "blank description", trip: "trip001", kind: models.ExceptionDelay, severity: models.SeverityLow, description: " \t\n"},
		{name: "unknown type", trip: "trip001", kind: "meteor", severity: models.SeverityLow, description: "sky"},
		{name: "unknown severity", trip: "trip001", kind: models.ExceptionDelay, severity: "critical", description: "late"},
		{name: "unknown trip", trip: "nope", kind: models.ExceptionDelay, severity: models.SeverityLow, description: "late", wantNotFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t, mockSeed)
			before := l.Snapshot()

			_, err := l.ReportException(context.Background(), tt.trip, tt.kind, tt.severity, tt.description)
			if err == nil {
				t.Fatal("ReportException() error = nil, want rejection")
			}
			if tt.wantNotFound && !IsNotFound(err) {
				t.Errorf("error = %v, want NotFoundError", err)
			}
			if !tt.wantNotFound && !IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
			if diff := cmp.Diff(before, l.Snapshot()); diff != "" {
				t.Errorf("state changed after rejection (-before +after):\n%s", diff)
			}
		})
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, mockSeed)

	var got []Event
	unsubscribe := l.Subscribe(func(e Event) { got = append(got, e) })

	_ = l.AssignResources(ctx, "trip004", "drv3", "ast3", "trl3")
	_ = l.AssignResources(ctx, "trip004", "drv5", "ast5", "trl5") // rejected, no event
	_, _ = l.ReportException(ctx, "trip001", models.ExceptionDelay, models.SeverityHigh, "late")

	want := []Event{
		{Kind: EventAssignment, TripID: "trip004", DriverID: "drv3", AssetID: "ast3", TrailerID: "trl3", At: testNow},
		{Kind: EventException, TripID: "trip001", ExceptionID: "exc-test", Severity: models.SeverityHigh, At: testNow},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}

	unsubscribe()
	unsubscribe()
	if err := l.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("events after unsubscribe = %d, want 2", len(got))
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t, mockSeed)
	before := l.Snapshot()

	_ = l.AssignResources(ctx, "trip004", "drv3", "ast3", "trl3")
	_, _ = l.ReportException(ctx, "trip001", models.ExceptionDelay, models.SeverityHigh, "late")

	var kinds []EventKind
	l.Subscribe(func(e Event) { kinds = append(kinds, e.Kind) })

	if err := l.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if diff := cmp.Diff(before, l.Snapshot()); diff != "" {
		t.Errorf("state after reset (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]EventKind{EventReset}, kinds); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestKPIsTrackLiveState(t *testing.T) {
	l, _ := newTestLedger(t, mockSeed)

	k := l.KPIs()
	if k.ActiveTrips != 4 || k.AvailableDrivers != 2 || k.AvailableAssets != 2 {
		t.Fatalf("KPIs() = %+v, want 4 active, 2 drivers, 2 assets", k)
	}

	if err := l.AssignResources(context.Background(), "trip004", "drv3", "ast3", "trl3"); err != nil {
		t.Fatalf("AssignResources() error = %v", err)
	}
	k = l.KPIs()
	if k.ActiveTrips != 4 || k.AvailableDrivers != 1 || k.AvailableAssets != 1 {
		t.Errorf("KPIs() = %+v, want 4 active, 1 driver, 1 asset", k)
	}
	if k.OnTimeDeliveryRate != 94.2 {
		t.Errorf("OnTimeDeliveryRate = %v, want stored 94.2", k.OnTimeDeliveryRate)
	}
}

func TestCandidates(t *testing.T) {
	l, _ := newTestLedger(t, mockSeed)

	c := l.Candidates()
	ids := func(n int, id func(int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = id(i)
		}
		return out
	}
	if diff := cmp.Diff([]string{"drv3", "drv5"}, ids(len(c.Drivers), func(i int) string { return c.Drivers[i].ID })); diff != "" {
		t.Errorf("candidate drivers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ast3", "ast5"}, ids(len(c.Assets), func(i int) string { return c.Assets[i].ID })); diff != "" {
		t.Errorf("candidate assets (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"trl3", "trl5"}, ids(len(c.Trailers), func(i int) string { return c.Trailers[i].ID })); diff != "" {
		t.Errorf("candidate trailers (-want +got):\n%s", diff)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	l, _ := newTestLedger(t, mockSeed)

	trips := l.Trips()
	trips[0].Status = models.TripStatusClosed
	trips[1].Exceptions[0].Description = "mutated"

	trip, _ := l.Trip(trips[0].ID)
	if trip.Status == models.TripStatusClosed {
		t.Error("mutating Trips() result changed ledger state")
	}
	trip, _ = l.Trip(trips[1].ID)
	if trip.Exceptions[0].Description == "mutated" {
		t.Error("mutating an exception from Trips() changed ledger state")
	}
}

func TestAuditMockFleet(t *testing.T) {
	errs := multierr.Errors(Audit(mockSeed()))
	if len(errs) != 1 {
		t.Fatalf("Audit(mock) = %v, want exactly the unresourced dispatched trip", errs)
	}
	if !strings.Contains(errs[0].Error(), "trip004") {
		t.Errorf("violation %q does not name trip004", errs[0])
	}
}

func TestAuditViolations(t *testing.T) {
	f := mockSeed()
	f.Drivers[0].HOSRemaining = -1
	f.Trips[1].DriverID = "drv1" // held by trip001 too
	f.Trips[2].AssetID = "ghost"

	errs := multierr.Errors(Audit(f))
	var text []string
	for _, e := range errs {
		text = append(text, e.Error())
	}
	joined := strings.Join(text, "\n")
	for _, want := range []string{"negative hours-of-service", "drv1", "ghost"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Audit() violations missing %q:\n%s", want, joined)
		}
	}
}

func TestOpenRequiresStoreAndSeed(t *testing.T) {
	if _, err := Open(context.Background(), nil, mockSeed); err == nil {
		t.Error("Open(nil store) error = nil")
	}
	var store repositories.SnapshotStore = memory.NewStore()
	if _, err := Open(context.Background(), store, nil); err == nil {
		t.Error("Open(nil seed) error = nil")
	}
}
