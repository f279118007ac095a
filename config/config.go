package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Services ServicesConfig `yaml:"services"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers                  []string `yaml:"brokers"`
	NotificationsTopic       string   `yaml:"notifications_topic"`
	GroupID                  string   `yaml:"group_id"`
	HeartbeatIntervalSeconds int      `yaml:"heartbeat_interval_seconds"`
	SessionTimeoutSeconds    int      `yaml:"session_timeout_seconds"`
}

func (k KafkaConfig) HeartbeatInterval() time.Duration {
	return time.Duration(k.HeartbeatIntervalSeconds) * time.Second
}

func (k KafkaConfig) SessionTimeout() time.Duration {
	return time.Duration(k.SessionTimeoutSeconds) * time.Second
}

// ServicesConfig points at the external collaborators the saga consults:
// the user directory, the flight/seat directory and the payment gateway.
type ServicesConfig struct {
	UserServiceURL    string `yaml:"user_service_url"`
	FlightServiceURL  string `yaml:"flight_service_url"`
	PaymentServiceURL string `yaml:"payment_service_url"`
}

type BookingConfig struct {
	SeatLockTTLSeconds     int `yaml:"seat_lock_ttl_seconds"`
	PaymentDeadlineSeconds int `yaml:"payment_deadline_seconds"`
	PaymentMaxRetries      int `yaml:"payment_max_retries"`
	PaymentRetryBackoffMS  int `yaml:"payment_retry_backoff_ms"`
	ReleaseRetryAttempts   int `yaml:"release_retry_attempts"`
	NotificationQueueSize  int `yaml:"notification_queue_size"`
	NotificationMaxRetries int `yaml:"notification_max_retries"`
}

func (b BookingConfig) SeatLockTTL() time.Duration {
	return time.Duration(b.SeatLockTTLSeconds) * time.Second
}

func (b BookingConfig) PaymentDeadline() time.Duration {
	return time.Duration(b.PaymentDeadlineSeconds) * time.Second
}

func (b BookingConfig) PaymentRetryBackoff() time.Duration {
	return time.Duration(b.PaymentRetryBackoffMS) * time.Millisecond
}

type WorkerConfig struct {
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills policy knobs left at zero in the file. The seat lock
// TTL must stay well above the payment deadline so the lock never expires
// under a booking that is still settling.
func (c *Config) applyDefaults() {
	if c.Booking.SeatLockTTLSeconds == 0 {
		c.Booking.SeatLockTTLSeconds = 300
	}
	if c.Booking.PaymentDeadlineSeconds == 0 {
		c.Booking.PaymentDeadlineSeconds = 90
	}
	if c.Booking.PaymentMaxRetries == 0 {
		c.Booking.PaymentMaxRetries = 3
	}
	if c.Booking.PaymentRetryBackoffMS == 0 {
		c.Booking.PaymentRetryBackoffMS = 500
	}
	if c.Booking.ReleaseRetryAttempts == 0 {
		c.Booking.ReleaseRetryAttempts = 3
	}
	if c.Booking.NotificationQueueSize == 0 {
		c.Booking.NotificationQueueSize = 256
	}
	if c.Booking.NotificationMaxRetries == 0 {
		c.Booking.NotificationMaxRetries = 3
	}
	if c.Kafka.HeartbeatIntervalSeconds == 0 {
		c.Kafka.HeartbeatIntervalSeconds = 3
	}
	if c.Kafka.SessionTimeoutSeconds == 0 {
		c.Kafka.SessionTimeoutSeconds = 30
	}
	if c.Worker.SweepIntervalSeconds == 0 {
		c.Worker.SweepIntervalSeconds = 60
	}
}
