package ledger

import (
	"slices"
	"time"

	"github.com/chrisdamba/fleetops/internal/models"
)

type EventKind string

const (
	EventAssignment EventKind = "assignment"
	EventException  EventKind = "exception"
	EventReset      EventKind = "reset"
)

// Event describes a committed change. Subscribers receive it after the state
// is persisted and visible, once per successful operation.
type Event struct {
	Kind        EventKind       `json:"kind"`
	TripID      string          `json:"trip_id,omitempty"`
	DriverID    string          `json:"driver_id,omitempty"`
	AssetID     string          `json:"asset_id,omitempty"`
	TrailerID   string          `json:"trailer_id,omitempty"`
	ExceptionID string          `json:"exception_id,omitempty"`
	Severity    models.Severity `json:"severity,omitempty"`
	At          time.Time       `json:"at"`
}

// Subscribe registers fn for every future event and returns a func that
// removes it. fn runs synchronously on the writer's goroutine and must not
// call back into the ledger's write operations.
func (l *Ledger) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.subMu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.subMu.Unlock()

	return func() {
		l.subMu.Lock()
		delete(l.subs, id)
		l.subMu.Unlock()
	}
}

func (l *Ledger) notify(e Event) {
	l.subMu.Lock()
	ids := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, l.subs[id])
	}
	l.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
