package kafka

import (
	"context"

	"github.com/Domenick1991/bookingsaga/config"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer is a group reader over the notifications topic. Heartbeat and
// session timings come from the kafka config section.
type Consumer struct {
	reader messageReader
	log    *logrus.Logger
}

func NewConsumer(cfg config.KafkaConfig, log *logrus.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			GroupID:           cfg.GroupID,
			Topic:             cfg.NotificationsTopic,
			HeartbeatInterval: cfg.HeartbeatInterval(),
			SessionTimeout:    cfg.SessionTimeout(),
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads messages until the reader fails or ctx is cancelled. A
// handler error concerns that one message: it is logged and the loop moves
// on to the next message.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			c.log.WithFields(logrus.Fields{
				"topic":     msg.Topic,
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).WithError(err).Error("message handler failed, skipping message")
		}
	}
}
