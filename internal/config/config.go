// Package config defines the process-wide configuration for the cropwatch
// services. Configuration is loaded once at startup and immutable
// thereafter; values come from the OS environment, with a .env file as a
// development fallback. Any missing required value or invalid format fails
// the process immediately.
package config

import (
	"time"

	"cropwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for connection strings and API keys.
type SecretString = types.SecretString

// Config is the top-level configuration for the cropwatch services.
// Sub-components receive only the subsets they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"cropwatch"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Alerts   AlertsConfig
	Notify   NotifyConfig
	Archive  ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	// APITokenHash is the bcrypt hash of the API token. Empty disables auth,
	// which is only acceptable for local development.
	APITokenHash SecretString `envconfig:"API_TOKEN_HASH"`
}

// DatabaseConfig holds connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// EngineConfig tunes the recommendation engine.
type EngineConfig struct {
	CacheTTL time.Duration `envconfig:"RECOMMENDATION_CACHE_TTL" default:"30m"`
}

// AlertsConfig tunes the alert sweep.
type AlertsConfig struct {
	SweepInterval time.Duration `envconfig:"ALERT_SWEEP_INTERVAL" default:"15m"`
	Recipient     string        `envconfig:"ALERT_RECIPIENT" validate:"required,email"`
	// Retention is how long dispatched alerts stay queryable before the
	// retention sweep purges them.
	Retention time.Duration `envconfig:"ALERT_RETENTION" default:"720h"`
}

// NotifyConfig holds per-channel delivery settings. A channel with an empty
// endpoint is not registered.
type NotifyConfig struct {
	EmailFrom        string        `envconfig:"NOTIFY_EMAIL_FROM" default:"alerts@cropwatch.example"`
	SMTPAddr         string        `envconfig:"NOTIFY_SMTP_ADDR"`
	SMTPUser         string        `envconfig:"NOTIFY_SMTP_USER"`
	SMTPPassword     SecretString  `envconfig:"NOTIFY_SMTP_PASSWORD"`
	SMSEndpoint      string        `envconfig:"NOTIFY_SMS_ENDPOINT"`
	SMSAPIKey        SecretString  `envconfig:"NOTIFY_SMS_API_KEY"`
	WhatsAppEndpoint string        `envconfig:"NOTIFY_WHATSAPP_ENDPOINT"`
	WhatsAppAPIKey   SecretString  `envconfig:"NOTIFY_WHATSAPP_API_KEY"`
	PushEndpoint     string        `envconfig:"NOTIFY_PUSH_ENDPOINT"`
	PushAPIKey       SecretString  `envconfig:"NOTIFY_PUSH_API_KEY"`
	ChannelTimeout   time.Duration `envconfig:"NOTIFY_CHANNEL_TIMEOUT" default:"5s"`
}

// ArchiveConfig tunes the recommendation history archiver.
type ArchiveConfig struct {
	// OlderThan is the age at which stored recommendations are archived.
	OlderThan time.Duration `envconfig:"ARCHIVE_OLDER_THAN" default:"2160h"`
	BatchSize int           `envconfig:"ARCHIVE_BATCH_SIZE" default:"500"`
	Dir       string        `envconfig:"ARCHIVE_DIR" default:"/var/lib/cropwatch/archive"`
}
