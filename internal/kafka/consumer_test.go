package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var errReaderDrained = errors.New("reader drained")

type scriptedReader struct {
	messages []kafka.Message
	next     int
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.next >= len(r.messages) {
		return kafka.Message{}, errReaderDrained
	}
	msg := r.messages[r.next]
	r.next++
	return msg, nil
}

func (r *scriptedReader) Close() error { return nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// One bad message must not stop delivery for the ones behind it.
func TestConsume_HandlerErrorDoesNotStopLoop(t *testing.T) {
	reader := &scriptedReader{messages: []kafka.Message{
		{Value: []byte("a")},
		{Value: []byte("b")},
		{Value: []byte("c")},
	}}
	c := &Consumer{reader: reader, log: testLogger()}

	var handled []string
	err := c.Consume(context.Background(), func(ctx context.Context, msg kafka.Message) error {
		handled = append(handled, string(msg.Value))
		if string(msg.Value) == "b" {
			return errors.New("smtp down")
		}
		return nil
	})

	assert.ErrorIs(t, err, errReaderDrained)
	assert.Equal(t, []string{"a", "b", "c"}, handled)
}
