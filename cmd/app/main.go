package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/bookingsaga/api"
	"github.com/Domenick1991/bookingsaga/config"
	"github.com/Domenick1991/bookingsaga/internal/clients"
	"github.com/Domenick1991/bookingsaga/internal/kafka"
	"github.com/Domenick1991/bookingsaga/internal/notify"
	"github.com/Domenick1991/bookingsaga/internal/payment"
	"github.com/Domenick1991/bookingsaga/internal/repository"
	"github.com/Domenick1991/bookingsaga/internal/seatlock"
	"github.com/Domenick1991/bookingsaga/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "booking-saga"})
	})
	api.NewBookingHandler(saga).Register(router.Group("/bookings"))

	server := &http.Server{Addr: cfg.HTTP.Address, Handler: router}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	log.WithField("address", cfg.HTTP.Address).Info("booking service started")

	select {
	case err := <-errCh:
		log.WithError(err).Fatal("server error")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown http server")
	}
	// Let in-flight settlements reach a terminal state before the process
	// exits; the worker sweep covers anything that does not make it.
	if err := saga.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("settlements still in flight at shutdown")
	}
	log.Info("stopped")
}
