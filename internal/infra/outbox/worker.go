package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "concierge/internal/app/outbox"
)

// Pending is an outbox record claimed for publication.
type Pending struct {
	Record   appoutbox.EventRecord
	Attempts int
}

// Queue is the claim side of an outbox store.
type Queue interface {
	// Claim returns nil, nil when nothing is due.
	Claim(ctx context.Context, workerID string) (*Pending, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker publishes outbox records as CloudEvents, one topic per event family.
type Worker struct {
	Queue       Queue
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
	// Batch caps how many records are drained per tick.
	Batch int
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil && w.Logger != nil {
				w.Logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes due records until the queue is empty or the batch is used up.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < w.batch(); i++ {
		ok, published, err := w.processOnce(ctx)
		if err != nil {
			return sent, err
		}
		if !ok {
			break
		}
		if published {
			sent++
		}
	}
	return sent, nil
}

func (w *Worker) processOnce(ctx context.Context) (claimed bool, published bool, err error) {
	p, err := w.Queue.Claim(ctx, w.ID)
	if err != nil || p == nil {
		return false, false, err
	}
	rec := p.Record
	payload, headers, err := w.formatPayload(rec)
	if err != nil {
		return true, false, w.Queue.MarkFailed(ctx, rec.ID, w.nextRetry(p.Attempts), err.Error())
	}
	if err := w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.PartitionKey(), payload, headers); err != nil {
		if w.Logger != nil {
			w.Logger.WarnContext(ctx, "outbox publish failed", "event", rec.Name, "id", rec.ID, "attempts", p.Attempts+1, "error", err)
		}
		return true, false, w.Queue.MarkFailed(ctx, rec.ID, w.nextRetry(p.Attempts), err.Error())
	}
	return true, true, w.Queue.MarkSent(ctx, rec.ID)
}

func (w *Worker) formatPayload(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(rec.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              rec.ID,
		"type":            rec.Name + ".v1",
		"source":          w.source(),
		"subject":         rec.Aggregate,
		"time":            rec.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := rec.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps "concierge.plan_generated" to "<prefix>concierge.events.v1".
func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return w.TopicPrefix + base + ".events.v1"
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batch() int {
	if w.Batch <= 0 {
		return 50
	}
	return w.Batch
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://concierge"
}
