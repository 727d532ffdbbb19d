package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appoutbox "concierge/internal/app/outbox"
)

type fakeQueue struct {
	pending []*Pending
	sent    []string
	failed  map[string]time.Time
}

func (q *fakeQueue) Claim(context.Context, string) (*Pending, error) {
	if len(q.pending) == 0 {
		return nil, nil
	}
	p := q.pending[0]
	q.pending = q.pending[1:]
	return p, nil
}

func (q *fakeQueue) MarkSent(_ context.Context, id string) error {
	q.sent = append(q.sent, id)
	return nil
}

func (q *fakeQueue) MarkFailed(_ context.Context, id string, next time.Time, _ string) error {
	if q.failed == nil {
		q.failed = map[string]time.Time{}
	}
	q.failed[id] = next
	return nil
}

type published struct {
	topic, key string
	payload    []byte
	headers    map[string]string
}

type fakeProducer struct {
	msgs []published
	err  error
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic, key, payload, headers})
	return nil
}

func pending(id, name, payload string, attempts int) *Pending {
	return &Pending{
		Record: appoutbox.EventRecord{
			ID:         id,
			Name:       name,
			Payload:    []byte(payload),
			Aggregate:  "plan-" + id,
			OccurredAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Headers:    map[string]string{"x-request-id": "req-1"},
		},
		Attempts: attempts,
	}
}

func TestDrainPublishesCloudEvents(t *testing.T) {
	exported := pending("e2", "concierge.plan_exported", `{"url":"http://x"}`, 0)
	exported.Record.Key = "booking-7"
	q := &fakeQueue{pending: []*Pending{
		pending("e1", "concierge.plan_generated", `{"plan_id":"p1","days":3}`, 0),
		exported,
	}}
	prod := &fakeProducer{}
	w := &Worker{Queue: q, Producer: prod, TopicPrefix: "dev.", ID: "w1"}

	n, err := w.Drain(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("drain: n=%d err=%v", n, err)
	}
	if len(q.sent) != 2 || q.sent[0] != "e1" {
		t.Fatalf("unexpected sent %v", q.sent)
	}
	msg := prod.msgs[0]
	if msg.topic != "dev.concierge.events.v1" || msg.key != "plan-e1" {
		t.Fatalf("unexpected routing %s %s", msg.topic, msg.key)
	}
	if prod.msgs[1].key != "booking-7" {
		t.Fatalf("expected partition key to win over aggregate, got %s", prod.msgs[1].key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" || msg.headers["x-request-id"] != "req-1" {
		t.Fatalf("unexpected headers %v", msg.headers)
	}
	var evt map[string]any
	if err := json.Unmarshal(msg.payload, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt["specversion"] != "1.0" || evt["type"] != "concierge.plan_generated.v1" || evt["source"] != "app://concierge" || evt["id"] != "e1" {
		t.Fatalf("unexpected envelope %v", evt)
	}
	if data, ok := evt["data"].(map[string]any); !ok || data["plan_id"] != "p1" {
		t.Fatalf("unexpected data %v", evt["data"])
	}
}

func TestDrainBacksOffOnFailure(t *testing.T) {
	q := &fakeQueue{pending: []*Pending{
		pending("e1", "concierge.plan_generated", `{}`, 1),
		pending("e2", "concierge.plan_generated", `not json`, 0),
	}}
	w := &Worker{Queue: q, Producer: &fakeProducer{err: errors.New("broker down")}, Backoff: []time.Duration{time.Second, time.Minute}}

	before := time.Now()
	n, err := w.Drain(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("drain: n=%d err=%v", n, err)
	}
	if len(q.failed) != 2 {
		t.Fatalf("expected both records failed, got %v", q.failed)
	}
	if next := q.failed["e1"]; next.Before(before.Add(time.Minute)) {
		t.Fatalf("second attempt must use the second backoff step, got %v", next.Sub(before))
	}
	if next := q.failed["e2"]; next.After(before.Add(2 * time.Second)) {
		t.Fatalf("first attempt must use the first backoff step, got %v", next.Sub(before))
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}
