package notify

import (
	"context"
	"sync"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// Dispatcher queues status-change events and publishes them to the
// notifications topic from a single worker goroutine. Notify never blocks
// the caller and never reports an error back into booking state: when the
// queue is full, or the dispatcher is already closed, the event is dropped
// and logged, and the bounded publish retry is the only delivery effort
// made. Order per booking is best-effort FIFO through the single worker,
// nothing more.
type Dispatcher struct {
	producer   Producer
	topic      string
	maxRetries int
	log        *logrus.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan domain.NotificationEvent
	wg     sync.WaitGroup
}

func NewDispatcher(producer Producer, topic string, queueSize, maxRetries int, log *logrus.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		producer:   producer,
		topic:      topic,
		maxRetries: maxRetries,
		log:        log,
		queue:      make(chan domain.NotificationEvent, queueSize),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) Notify(event domain.NotificationEvent) {
	// The read lock keeps Close from closing the queue under an in-flight
	// send; a late Notify from a settlement that outlived shutdown is a
	// drop, never a panic.
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.WithFields(logrus.Fields{
			"booking_id": event.BookingID,
			"kind":       event.Kind,
		}).Warn("dispatcher closed, dropping event")
		return
	}
	select {
	case d.queue <- event:
	default:
		d.log.WithFields(logrus.Fields{
			"booking_id": event.BookingID,
			"kind":       event.Kind,
		}).Warn("notification queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain. Safe to
// call more than once; Notify after Close is a no-op.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for event := range d.queue {
		err := d.producer.PublishWithRetry(context.Background(), d.topic, event.BookingID, event, d.maxRetries)
		if err != nil {
			d.log.WithFields(logrus.Fields{
				"booking_id": event.BookingID,
				"kind":       event.Kind,
			}).WithError(err).Error("failed to deliver notification")
			continue
		}
		d.log.WithFields(logrus.Fields{
			"booking_id": event.BookingID,
			"kind":       event.Kind,
		}).Debug("notification published")
	}
}
