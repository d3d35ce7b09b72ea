package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is any domain event with a name identifier.
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// Record is an event persisted in the same unit of work as the state change
// that produced it. It stays pending until a relay has published it.
type Record struct {
	ID        int64
	EventID   string
	Name      string
	Key       string
	Payload   []byte
	CreatedAt time.Time
	SentAt    *time.Time
}

// Keyed events choose the partition key used by brokers.
type Keyed interface {
	EventKey() string
}

// NewRecord serialises e into a pending record.
func NewRecord(e Event) (Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("outbox: encode %s: %w", e.EventName(), err)
	}
	var key string
	if k, ok := e.(Keyed); ok {
		key = k.EventKey()
	}
	return Record{
		EventID:   uuid.NewString(),
		Name:      e.EventName(),
		Key:       key,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Message is a relayed record. It satisfies Event so it can travel through
// any Publisher.
type Message struct {
	Record
}

func (m Message) EventName() string { return m.Name }

func (m Message) EventKey() string { return m.Key }

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}

type Store interface {
	Append(ctx context.Context, e Event) error
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id int64, at time.Time) error
}
