package ledger

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/chrisdamba/fleetops/internal/models"
)

// Audit checks a fleet snapshot against the ledger's invariants and returns every
// violation combined into one error, or nil. Use multierr.Errors to list them.
func Audit(f models.Fleet) error {
	var err error

	drivers := make(map[string]bool, len(f.Drivers))
	for _, d := range f.Drivers {
		drivers[d.ID] = true
		if d.HOSRemaining < 0 {
			err = multierr.Append(err, fmt.Errorf("driver %s: negative hours-of-service %v", d.ID, d.HOSRemaining))
		}
	}
	assets := make(map[string]bool, len(f.Assets))
	for _, a := range f.Assets {
		assets[a.ID] = true
	}
	trailers := make(map[string]bool, len(f.Trailers))
	for _, t := range f.Trailers {
		trailers[t.ID] = true
	}

	holders := map[string][]string{}
	for _, t := range f.Trips {
		err = multierr.Append(err, auditTrip(t, drivers, assets, trailers))

		if !t.Status.Open() {
			continue
		}
		hold := func(kind, id string) {
			if id != "" {
				holders[kind+" "+id] = append(holders[kind+" "+id], t.ID)
			}
		}
		hold("driver", t.DriverID)
		hold("asset", t.AssetID)
		hold("trailer", t.TrailerID)
	}
	for _, ref := range sortedKeys(holders) {
		if ids := holders[ref]; len(ids) > 1 {
			err = multierr.Append(err, fmt.Errorf("%s is held by %d open trips %v", ref, len(ids), ids))
		}
	}
	return err
}

func auditTrip(t models.Trip, drivers, assets, trailers map[string]bool) error {
	var err error
	if !t.Status.Valid() {
		return fmt.Errorf("trip %s: unknown status %q", t.ID, t.Status)
	}

	switch {
	case t.Status.Dispatched() && !t.HasResources():
		err = multierr.Append(err, fmt.Errorf("trip %s: status %s without driver, asset and trailer", t.ID, t.Status))
	case !t.Status.Dispatched() && !t.NoResources():
		err = multierr.Append(err, fmt.Errorf("trip %s: status %s but resources assigned", t.ID, t.Status))
	}

	if t.DriverID != "" && !drivers[t.DriverID] {
		err = multierr.Append(err, fmt.Errorf("trip %s: unknown driver %s", t.ID, t.DriverID))
	}
	if t.AssetID != "" && !assets[t.AssetID] {
		err = multierr.Append(err, fmt.Errorf("trip %s: unknown asset %s", t.ID, t.AssetID))
	}
	if t.TrailerID != "" && !trailers[t.TrailerID] {
		err = multierr.Append(err, fmt.Errorf("trip %s: unknown trailer %s", t.ID, t.TrailerID))
	}

	pendingSeen := false
	for i, s := range t.Stops {
		if i > 0 {
			prev := t.Stops[i-1]
			if s.Seq <= prev.Seq {
				err = multierr.Append(err, fmt.Errorf("trip %s: stop %s seq %d not after %d", t.ID, s.ID, s.Seq, prev.Seq))
			}
			if s.AppointmentStart.Before(prev.AppointmentStart) {
				err = multierr.Append(err, fmt.Errorf("trip %s: stop %s appointment before stop %s", t.ID, s.ID, prev.ID))
			}
		}
		if s.Status != models.StopStatusCompleted {
			pendingSeen = true
		} else if pendingSeen {
			err = multierr.Append(err, fmt.Errorf("trip %s: stop %s completed before an earlier stop", t.ID, s.ID))
		}
	}
	return err
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
