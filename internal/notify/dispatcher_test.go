package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	mu        sync.Mutex
	published []publishedEvent
	err       error
	block     chan struct{}
}

type publishedEvent struct {
	topic string
	key   string
	event domain.NotificationEvent
}

func (p *fakeProducer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedEvent{topic: topic, key: key, event: payload.(domain.NotificationEvent)})
	return nil
}

func (p *fakeProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func event(id string, kind domain.NotificationKind) domain.NotificationEvent {
	return domain.NotificationEvent{Kind: kind, BookingID: id, UserID: 1, FlightID: 123, SeatNumber: "12A"}
}

func TestDispatcher_Delivers(t *testing.T) {
	producer := &fakeProducer{}
	d := NewDispatcher(producer, "booking_notifications", 8, 3, testLogger())

	d.Notify(event("bk-1", domain.NotificationBookingCreated))
	d.Notify(event("bk-1", domain.NotificationBookingConfirmed))
	d.Close()

	require.Equal(t, 2, producer.count())
	assert.Equal(t, "booking_notifications", producer.published[0].topic)
	assert.Equal(t, "bk-1", producer.published[0].key)
	// Events for the same booking leave in the order they were queued.
	assert.Equal(t, domain.NotificationBookingCreated, producer.published[0].event.Kind)
	assert.Equal(t, domain.NotificationBookingConfirmed, producer.published[1].event.Kind)
}

func TestDispatcher_NotifyNeverBlocks(t *testing.T) {
	producer := &fakeProducer{block: make(chan struct{})}
	d := NewDispatcher(producer, "booking_notifications", 1, 3, testLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(event("bk-1", domain.NotificationBookingCreated))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(producer.block)
	d.Close()

	// Overflow is dropped, not delivered late: at most the in-flight event
	// plus the queue capacity make it through.
	assert.LessOrEqual(t, producer.count(), 2)
}

// A settlement goroutine that outlives shutdown still calls Notify after
// the deferred Close has run; the event is dropped, not a crash.
func TestDispatcher_NotifyAfterCloseDrops(t *testing.T) {
	producer := &fakeProducer{}
	d := NewDispatcher(producer, "booking_notifications", 8, 3, testLogger())
	d.Close()

	assert.NotPanics(t, func() {
		d.Notify(event("bk-1", domain.NotificationPaymentFailed))
	})
	assert.Equal(t, 0, producer.count())

	// Close is idempotent too.
	assert.NotPanics(t, d.Close)
}

func TestDispatcher_DeliveryFailureDoesNotStopWorker(t *testing.T) {
	producer := &fakeProducer{err: errors.New("kafka down")}
	d := NewDispatcher(producer, "booking_notifications", 8, 2, testLogger())

	d.Notify(event("bk-1", domain.NotificationBookingCreated))
	d.Notify(event("bk-2", domain.NotificationPaymentFailed))
	d.Close()

	// Both events were attempted and dropped; Close still drains cleanly.
	assert.Equal(t, 0, producer.count())
}
