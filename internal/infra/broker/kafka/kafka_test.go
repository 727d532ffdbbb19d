package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"concierge/internal/app/commands"
	"concierge/internal/app/concierge"
	planhandlers "concierge/internal/app/handlers/plans"
	domainplans "concierge/internal/domain/plans"
	"concierge/internal/infra/storage/memory"
)

type dispatchLog struct {
	cmds []planhandlers.GeneratePlanCommand
	err  error
}

func (d *dispatchLog) bus() commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[planhandlers.GeneratePlanCommand, *planhandlers.GeneratePlanResult](bus, "concierge.plan.generate",
		commands.HandlerFunc[planhandlers.GeneratePlanCommand, *planhandlers.GeneratePlanResult](
			func(_ context.Context, cmd planhandlers.GeneratePlanCommand) (*planhandlers.GeneratePlanResult, error) {
				d.cmds = append(d.cmds, cmd)
				if d.err != nil {
					return nil, d.err
				}
				return &planhandlers.GeneratePlanResult{}, nil
			}))
	return bus
}

func message(body string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "booking-status-updates", Value: []byte(body)}
}

func TestBookingStatusAcceptedGeneratesOnce(t *testing.T) {
	log := &dispatchLog{}
	h := &BookingStatusHandler{Bus: log.bus(), Inbox: memory.NewInbox()}
	body := `{"id":"status-b1-1","bookingId":"b1","status":"ACCEPTED","updatedBy":"owner","timestamp":"2024-03-01T10:00:00Z"}`

	for i := 0; i < 2; i++ {
		if err := h.Handle(context.Background(), message(body)); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}
	if len(log.cmds) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(log.cmds))
	}
	cmd := log.cmds[0]
	if cmd.BookingID != "b1" || cmd.Source != domainplans.SourceBookingEvent || cmd.Preferences.Budget != "medium" {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestBookingStatusIgnoresOtherEvents(t *testing.T) {
	log := &dispatchLog{}
	h := &BookingStatusHandler{Bus: log.bus(), Inbox: memory.NewInbox()}
	for _, body := range []string{
		`{"bookingId":"b1","status":"CANCELLED"}`,
		`{"status":"ACCEPTED"}`,
		`not json`,
	} {
		if err := h.Handle(context.Background(), message(body)); err != nil {
			t.Fatalf("handle %q: %v", body, err)
		}
	}
	if len(log.cmds) != 0 {
		t.Fatalf("expected no dispatch, got %v", log.cmds)
	}
}

func TestBookingStatusRetriesAfterFailure(t *testing.T) {
	log := &dispatchLog{err: errors.New("mongo down")}
	h := &BookingStatusHandler{Bus: log.bus(), Inbox: memory.NewInbox()}
	body := `{"bookingId":"b1","status":"ACCEPTED","timestamp":"t1"}`

	if err := h.Handle(context.Background(), message(body)); err == nil {
		t.Fatal("expected error")
	}
	log.err = nil
	if err := h.Handle(context.Background(), message(body)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(log.cmds) != 2 {
		t.Fatalf("failed event must be reprocessed, got %d dispatches", len(log.cmds))
	}

	log.err = concierge.ErrBookingNotFound
	if err := h.Handle(context.Background(), message(`{"bookingId":"gone","status":"ACCEPTED","timestamp":"t2"}`)); err != nil {
		t.Fatalf("unknown booking must be acknowledged, got %v", err)
	}
}

func TestProducerPublishesKeyedEventWithOrderedHeaders(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sp := mocks.NewSyncProducer(t, cfg)
	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "concierge.events.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		if key, _ := msg.Key.Encode(); string(key) != "booking-7" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != "ce_type" || string(msg.Headers[1].Key) != "content-type" {
			return errors.New("headers must be sorted by name")
		}
		return nil
	})
	p := newProducerWith(sp)
	headers := map[string]string{"content-type": "application/cloudevents+json", "ce_type": "concierge.plan_generated"}
	if err := p.Publish(context.Background(), "concierge.events.v1", "booking-7", []byte(`{}`), headers); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestProducerWrapsBrokerFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, mocks.NewTestConfig())
	sp.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	p := newProducerWith(sp)
	err := p.Publish(context.Background(), "concierge.events.v1", "booking-7", []byte(`{}`), nil)
	if !errors.Is(err, sarama.ErrNotLeaderForPartition) {
		t.Fatalf("expected broker error to be wrapped, got %v", err)
	}
	_ = p.Close()
}

type fakeSession struct {
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32                        { return nil }
func (s *fakeSession) MemberID() string                                  { return "m" }
func (s *fakeSession) GenerationID() int32                               { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)           {}
func (s *fakeSession) Commit()                                           {}
func (s *fakeSession) ResetOffset(string, int32, int64, string)          {}
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) { s.marked = append(s.marked, msg.Offset) }
func (s *fakeSession) Context() context.Context                          { return s.ctx }

type fakeClaim struct{ ch chan *sarama.ConsumerMessage }

func (c fakeClaim) Topic() string                            { return "booking-status-updates" }
func (c fakeClaim) Partition() int32                         { return 0 }
func (c fakeClaim) InitialOffset() int64                     { return 0 }
func (c fakeClaim) HighWaterMarkOffset() int64               { return 2 }
func (c fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

type flakyHandler struct {
	failures map[int64]int
	calls    map[int64]int
}

func (h *flakyHandler) Handle(_ context.Context, msg *sarama.ConsumerMessage) error {
	h.calls[msg.Offset]++
	if h.calls[msg.Offset] <= h.failures[msg.Offset] {
		return errors.New("transient")
	}
	return nil
}

func TestConsumeClaimRetriesThenSkips(t *testing.T) {
	h := &flakyHandler{failures: map[int64]int{0: 1, 1: 5}, calls: map[int64]int{}}
	ch := make(chan *sarama.ConsumerMessage, 2)
	ch <- &sarama.ConsumerMessage{Offset: 0}
	ch <- &sarama.ConsumerMessage{Offset: 1}
	close(ch)
	sess := &fakeSession{ctx: context.Background()}

	claims := claimHandler{handler: h, logger: slog.New(slog.DiscardHandler), attempts: 3}
	if err := claims.ConsumeClaim(sess, fakeClaim{ch: ch}); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if h.calls[0] != 2 {
		t.Fatalf("offset 0 should succeed on the second attempt, calls=%d", h.calls[0])
	}
	if h.calls[1] != 3 {
		t.Fatalf("offset 1 should stop after 3 attempts, calls=%d", h.calls[1])
	}
	if len(sess.marked) != 2 {
		t.Fatalf("both messages must be marked, got %v", sess.marked)
	}
}

type scriptedGroup struct {
	results []error
	calls   int
	cancel  context.CancelFunc
	errs    chan error
}

func (g *scriptedGroup) Consume(context.Context, []string, sarama.ConsumerGroupHandler) error {
	g.calls++
	if g.calls > len(g.results) {
		g.cancel()
		return nil
	}
	return g.results[g.calls-1]
}

func (g *scriptedGroup) Errors() <-chan error      { return g.errs }
func (g *scriptedGroup) Close() error              { return nil }
func (g *scriptedGroup) Pause(map[string][]int32)  {}
func (g *scriptedGroup) Resume(map[string][]int32) {}
func (g *scriptedGroup) PauseAll()                 {}
func (g *scriptedGroup) ResumeAll()                {}

func TestConsumerRunRejoinsAfterSessionErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := make(chan error)
	close(errs)
	group := &scriptedGroup{
		results: []error{sarama.ErrOutOfBrokers, errors.New("rebalance failed"), nil},
		cancel:  cancel,
		errs:    errs,
	}
	c := &Consumer{group: group, logger: slog.New(slog.DiscardHandler), Attempts: 1, Backoff: time.Millisecond}

	err := c.Run(ctx, []string{"booking-status-updates"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Run to stop on cancellation, got %v", err)
	}
	if group.calls != 4 {
		t.Fatalf("expected rejoin after each failure, consume calls=%d", group.calls)
	}
}

func TestConsumerRunStopsWhenGroupClosed(t *testing.T) {
	errs := make(chan error)
	close(errs)
	group := &scriptedGroup{results: []error{sarama.ErrClosedConsumerGroup}, cancel: func() {}, errs: errs}
	c := &Consumer{group: group, logger: slog.New(slog.DiscardHandler), Backoff: time.Millisecond}

	if err := c.Run(context.Background(), []string{"t"}); !errors.Is(err, sarama.ErrClosedConsumerGroup) {
		t.Fatalf("expected closed group error, got %v", err)
	}
	if group.calls != 1 {
		t.Fatalf("closed group must not be retried, calls=%d", group.calls)
	}
}
