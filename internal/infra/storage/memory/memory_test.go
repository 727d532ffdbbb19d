package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"concierge/internal/app/commands"
	"concierge/internal/app/middleware"
	appoutbox "concierge/internal/app/outbox"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/domain/trip"
)

func TestPlanRepositoryLatest(t *testing.T) {
	repo := NewPlanRepository()
	ctx := context.Background()
	if _, err := repo.Latest(ctx, "b1"); !errors.Is(err, domainplans.ErrPlanNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	resp := trip.Failure("")
	resp.Success = true
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []domainplans.PlanID{"p1", "p2"} {
		plan, err := domainplans.NewPlan(domainplans.NewPlanParams{ID: id, BookingID: "b1", Response: resp, Now: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("new plan: %v", err)
		}
		_ = repo.Save(ctx, plan)
	}
	latest, err := repo.Latest(ctx, "b1")
	if err != nil || latest.ID != "p2" {
		t.Fatalf("expected p2, got %+v err=%v", latest, err)
	}
}

func TestIdempotencyStoreExpires(t *testing.T) {
	store := NewIdempotencyStore(time.Hour)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	_ = store.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte("{}"), OccurredAt: now})

	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("expected fresh record")
	}
	now = now.Add(2 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("expected expired record")
	}
}

func TestOutboxQueueLifecycle(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	_ = box.Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "concierge.plan_generated"})

	if p, _ := box.Claim(ctx, "w"); p != nil {
		t.Fatal("staged records must not be claimable before Flush")
	}
	_ = box.Flush(ctx)
	p, err := box.Claim(ctx, "w")
	if err != nil || p == nil || p.Record.ID != "e1" {
		t.Fatalf("expected claim, got %+v err=%v", p, err)
	}
	if again, _ := box.Claim(ctx, "w"); again != nil {
		t.Fatal("claimed record must not be handed out twice")
	}

	_ = box.MarkFailed(ctx, "e1", time.Now().Add(-time.Second), "broker down")
	p, _ = box.Claim(ctx, "w")
	if p == nil || p.Attempts != 1 {
		t.Fatalf("expected retry with one attempt, got %+v", p)
	}
	_ = box.MarkSent(ctx, "e1")
	if box.Len() != 0 {
		t.Fatalf("expected empty outbox, got %d", box.Len())
	}
}

type stageCommand struct{ n int }

func (stageCommand) Key() string { return "test.stage" }

func stagingBus(box *Outbox, fail bool) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[stageCommand, string](bus, "test.stage", commands.HandlerFunc[stageCommand, string](
		func(ctx context.Context, cmd stageCommand) (string, error) {
			rec := appoutbox.EventRecord{ID: fmt.Sprintf("e%d", cmd.n), Name: "concierge.plan_generated"}
			if err := box.Add(ctx, rec); err != nil {
				return "", err
			}
			if fail {
				return "", errors.New("save failed")
			}
			return rec.ID, nil
		}))
	return middleware.ChainCommands(bus, middleware.OutboxFlush(box))
}

func TestLocalOutboxStaysBoundedWithoutWorker(t *testing.T) {
	box := NewLocalOutbox(nil)
	bus := stagingBus(box, false)
	for i := 0; i < 1000; i++ {
		if _, err := bus.Dispatch(context.Background(), stageCommand{n: i}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if n := box.Len(); n != 0 {
		t.Fatalf("records retained after 1000 commands with no worker: %d", n)
	}
	if p, _ := box.Claim(context.Background(), "w"); p != nil {
		t.Fatalf("local outbox must not queue records, got %+v", p)
	}
}

func TestOutboxQueueIsCapped(t *testing.T) {
	box := NewOutbox()
	box.limit = 3
	bus := stagingBus(box, false)
	for i := 0; i < 10; i++ {
		if _, err := bus.Dispatch(context.Background(), stageCommand{n: i}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if n := box.Len(); n != 3 {
		t.Fatalf("expected queue capped at 3, got %d", n)
	}
	p, _ := box.Claim(context.Background(), "w")
	if p == nil || p.Record.ID != "e7" {
		t.Fatalf("expected oldest kept record e7, got %+v", p)
	}
}

func TestOutboxFlushOnlyCommitsOwnBatch(t *testing.T) {
	box := NewOutbox()
	first := appoutbox.WithBatch(context.Background())
	second := appoutbox.WithBatch(context.Background())
	_ = box.Add(first, appoutbox.EventRecord{ID: "a"})
	_ = box.Add(second, appoutbox.EventRecord{ID: "b"})

	_ = box.Flush(first)
	p, _ := box.Claim(context.Background(), "w")
	if p == nil || p.Record.ID != "a" {
		t.Fatalf("expected only a to be queued, got %+v", p)
	}
	if again, _ := box.Claim(context.Background(), "w"); again != nil {
		t.Fatalf("b is still in flight and must not be queued, got %+v", again)
	}
	if n := box.Len(); n != 2 {
		t.Fatalf("expected a queued and b staged, got %d", n)
	}
	_ = box.Discard(second)
	if n := box.Len(); n != 1 {
		t.Fatalf("expected discarded batch to be gone, got %d", n)
	}
}

func TestFailedCommandDropsItsBatch(t *testing.T) {
	box := NewOutbox()
	bus := stagingBus(box, true)
	if _, err := bus.Dispatch(context.Background(), stageCommand{n: 1}); err == nil {
		t.Fatal("expected handler error")
	}
	if n := box.Len(); n != 0 {
		t.Fatalf("failed command left %d records behind", n)
	}
}

func TestInboxSeen(t *testing.T) {
	in := NewInbox()
	ctx := context.Background()
	if seen, _ := in.Seen(ctx, "evt"); seen {
		t.Fatal("first delivery must be new")
	}
	if seen, _ := in.Seen(ctx, "evt"); !seen {
		t.Fatal("second delivery must be a duplicate")
	}
}
