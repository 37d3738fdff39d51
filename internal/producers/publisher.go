package producers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/ledger"
)

// Publisher sends a message to a topic. Implementations must be safe for
// sequential use by a single forwarder.
type Publisher interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// keyedPublisher is implemented by publishers that can partition by key.
type keyedPublisher interface {
	WriteKeyedMessage(topic, key string, msg []byte) error
}

// Message is the published envelope around a ledger event.
type Message struct {
	ID          string `json:"id"`
	PublishedAt int64  `json:"timestamp"`
	ledger.Event
}

// Subscriber is the part of the ledger Forward needs.
type Subscriber interface {
	Subscribe(fn func(ledger.Event)) (unsubscribe func())
}

// Forward publishes every ledger event to topic as JSON until the returned
// func is called. Publish failures are logged and dropped; the ledger state is
// already committed by the time an event is seen.
func Forward(src Subscriber, pub Publisher, topic string, logger *zap.Logger) (stop func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return src.Subscribe(func(e ledger.Event) {
		msg := Message{ID: uuid.NewString(), PublishedAt: time.Now().Unix(), Event: e}
		if err := publish(pub, topic, msg); err != nil {
			logger.Error("failed to publish ledger event",
				zap.String("topic", topic),
				zap.String("kind", string(e.Kind)),
				zap.String("trip_id", e.TripID),
				zap.Error(err),
			)
			return
		}
		logger.Debug("published ledger event", zap.String("id", msg.ID), zap.String("kind", string(e.Kind)))
	})
}

func publish(pub Publisher, topic string, msg Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if kp, ok := pub.(keyedPublisher); ok && msg.TripID != "" {
		return kp.WriteKeyedMessage(topic, msg.TripID, b)
	}
	return pub.WriteMessage(topic, b)
}
