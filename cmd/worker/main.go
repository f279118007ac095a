package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookingsaga/config"
	"github.com/Domenick1991/bookingsaga/internal/clients"
	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/Domenick1991/bookingsaga/internal/email"
	"github.com/Domenick1991/bookingsaga/internal/kafka"
	"github.com/Domenick1991/bookingsaga/internal/notify"
	"github.com/Domenick1991/bookingsaga/internal/payment"
	"github.com/Domenick1991/bookingsaga/internal/repository"
	"github.com/Domenick1991/bookingsaga/internal/seatlock"
	"github.com/Domenick1991/bookingsaga/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// The worker does two things: it delivers notification events as email, and
// it sweeps bookings whose payment deadline passed while no replica was
// around to settle them.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	lock := seatlock.NewRedisLock(cfg.Redis)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	attemptRepo := repository.NewPaymentAttemptRepository(pool)
	directory := clients.NewDirectory(cfg.Services)
	gateway := payment.NewHTTPGateway(cfg.Services)

	orchestrator := payment.NewOrchestrator(gateway, attemptRepo,
		cfg.Booking.PaymentMaxRetries, cfg.Booking.PaymentRetryBackoff(), log)
	dispatcher := notify.NewDispatcher(producer, cfg.Kafka.NotificationsTopic,
		cfg.Booking.NotificationQueueSize, cfg.Booking.NotificationMaxRetries, log)
	defer dispatcher.Close()

	saga := booking.NewBookingSaga(bookingRepo, lock, orchestrator, dispatcher, directory,
		cfg.Booking.SeatLockTTL(), cfg.Booking.PaymentDeadline(), cfg.Booking.ReleaseRetryAttempts, log)

	consumer := kafka.NewConsumer(cfg.Kafka, log)
	defer consumer.Close()

	sender := email.NewSender(log)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event domain.NotificationEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.WithError(err).Error("decode notification event")
				return nil
			}
			return sender.Send(ctx, event)
		}); err != nil {
			log.WithError(err).Warn("consumer stopped")
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepIntervalSeconds) * time.Second)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			expired, err := saga.ExpireOverduePayments(ctx)
			if err != nil {
				log.WithError(err).Error("payment expiry sweep failed")
				continue
			}
			if len(expired) > 0 {
				log.WithField("count", len(expired)).Info("expired overdue bookings")
			}
		case s := <-sig:
			log.WithField("signal", s.String()).Info("shutting down")
			return
		}
	}
}
