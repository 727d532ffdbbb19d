package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	appoutbox "concierge/internal/app/outbox"
	infraoutbox "concierge/internal/infra/outbox"
)

// DefaultOutboxLimit caps queued records when no worker keeps up.
const DefaultOutboxLimit = 10000

// Outbox stages records per command batch until Flush. A publishing outbox
// queues flushed records for the outbox worker; a local one drops them.
type Outbox struct {
	mu      sync.Mutex
	staged  map[string][]appoutbox.EventRecord
	queue   []*entry
	publish bool
	limit   int
	logger  *slog.Logger
}

type entry struct {
	record    appoutbox.EventRecord
	attempts  int
	next      time.Time
	claimedBy string
}

// NewOutbox returns an outbox drained by infraoutbox.Worker.
func NewOutbox() *Outbox {
	return &Outbox{staged: map[string][]appoutbox.EventRecord{}, publish: true, limit: DefaultOutboxLimit}
}

// NewLocalOutbox returns an outbox for deployments without a broker: flushed
// records are logged at debug level and dropped.
func NewLocalOutbox(logger *slog.Logger) *Outbox {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Outbox{staged: map[string][]appoutbox.EventRecord{}, logger: logger}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	batch := appoutbox.BatchID(ctx)
	o.staged[batch] = append(o.staged[batch], record)
	return nil
}

// Flush commits the records staged under ctx's batch only.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	batch := appoutbox.BatchID(ctx)
	records := o.staged[batch]
	delete(o.staged, batch)
	if !o.publish {
		for _, rec := range records {
			o.logger.DebugContext(ctx, "outbox event dropped, no broker", "event", rec.Name, "id", rec.ID, "key", rec.PartitionKey())
		}
		return nil
	}
	now := time.Now()
	for _, rec := range records {
		o.queue = append(o.queue, &entry{record: rec, next: now})
	}
	if over := len(o.queue) - o.limit; o.limit > 0 && over > 0 {
		o.queue = append(o.queue[:0], o.queue[over:]...)
	}
	return nil
}

func (o *Outbox) Discard(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.staged, appoutbox.BatchID(ctx))
	return nil
}

func (o *Outbox) Claim(_ context.Context, workerID string) (*infraoutbox.Pending, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, e := range o.queue {
		if e.claimedBy != "" || e.next.After(now) {
			continue
		}
		e.claimedBy = workerID
		return &infraoutbox.Pending{Record: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

// MarkSent drops the record; the in-memory queue keeps no history.
func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.queue[:0]
	for _, e := range o.queue {
		if e.record.ID != id {
			kept = append(kept, e)
		}
	}
	o.queue = kept
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.queue {
		if e.record.ID == id {
			e.attempts++
			e.next = next
			e.claimedBy = ""
		}
	}
	return nil
}

// Len reports staged plus queued records.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.queue)
	for _, recs := range o.staged {
		n += len(recs)
	}
	return n
}

var (
	_ appoutbox.Outbox    = (*Outbox)(nil)
	_ appoutbox.Discarder = (*Outbox)(nil)
	_ infraoutbox.Queue   = (*Outbox)(nil)
)
