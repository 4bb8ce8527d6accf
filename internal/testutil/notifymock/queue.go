package notifymock

import (
	"context"
	"sync"

	"coinlend-backend/internal/domain/notify"
)

// Recorder captures queued events for assertions. Err, when set, is
// returned from every Queue call (the caller must swallow it).
type Recorder struct {
	mu     sync.Mutex
	Err    error
	events []Event
}

type Event struct {
	Type    string
	Payload any
}

var _ notify.Queue = (*Recorder)(nil)

func (r *Recorder) Queue(ctx context.Context, eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: eventType, Payload: payload})
	return r.Err
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the queued event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
