// Package config loads SkyDial configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/skydial/skydial/internal/database"
)

// Config is the full service configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Telemetry TelemetryConfig `mapstructure:"otel"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Session   SessionConfig   `mapstructure:"session"`
	Tomorrow  TomorrowConfig  `mapstructure:"tomorrow"`
	GeoNames  GeoNamesConfig  `mapstructure:"geonames"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

// AppConfig holds HTTP server settings.
type AppConfig struct {
	Port       string `mapstructure:"port"`
	Env        string `mapstructure:"env"`
	RequireTLS bool   `mapstructure:"require_tls"`

	// AllowedOrigins may open the sun stream websocket. Empty means same
	// origin only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// DatabaseConfig holds PostgreSQL settings. When disabled, preferences are
// kept in memory.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SessionConfig holds anonymous session token settings.
type SessionConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// TomorrowConfig holds forecast provider settings.
type TomorrowConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeoNamesConfig holds city search settings.
type GeoNamesConfig struct {
	Username string `mapstructure:"username"`
	BaseURL  string `mapstructure:"base_url"`
}

// MQTTConfig holds broker settings for sun state publishing.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// PubSubConfig holds worker trigger subscription settings.
type PubSubConfig struct {
	ProjectID    string `mapstructure:"project_id"`
	Subscription string `mapstructure:"subscription"`
}

// WorkerConfig holds refresh job settings.
type WorkerConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Concurrency     int           `mapstructure:"concurrency"`
}

// envBindings maps config keys to the environment variables operators set.
var envBindings = map[string]string{
	"app.port":                "APP_PORT",
	"app.env":                 "APP_ENV",
	"app.require_tls":         "REQUIRE_TLS",
	"app.allowed_origins":     "ALLOWED_ORIGINS",
	"otel.enabled":            "OTEL_ENABLED",
	"otel.endpoint":           "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otel.sample_ratio":       "OTEL_SAMPLE_RATIO",
	"db.enabled":              "DB_ENABLED",
	"db.host":                 "DB_HOST",
	"db.port":                 "DB_PORT",
	"db.user":                 "DB_USER",
	"db.password":             "DB_PASSWORD",
	"db.name":                 "DB_NAME",
	"db.ssl_mode":             "DB_SSL_MODE",
	"db.max_open_conns":       "DB_MAX_OPEN_CONNS",
	"db.max_idle_conns":       "DB_MAX_IDLE_CONNS",
	"db.conn_max_lifetime":    "DB_CONN_MAX_LIFETIME",
	"session.signing_key":     "SESSION_SIGNING_KEY",
	"session.ttl":             "SESSION_TTL",
	"tomorrow.api_key":        "TOMORROW_API_KEY",
	"tomorrow.base_url":       "TOMORROW_API_URL",
	"tomorrow.timeout":        "TOMORROW_TIMEOUT",
	"geonames.username":       "GEONAMES_USER_NAME",
	"geonames.base_url":       "GEONAMES_API_URL",
	"mqtt.enabled":            "MQTT_ENABLED",
	"mqtt.broker":             "MQTT_BROKER",
	"mqtt.topic_prefix":       "MQTT_TOPIC_PREFIX",
	"mqtt.client_id":          "MQTT_CLIENT_ID",
	"mqtt.username":           "MQTT_USERNAME",
	"mqtt.password":           "MQTT_PASSWORD",
	"mqtt.connect_timeout":    "MQTT_CONNECT_TIMEOUT",
	"pubsub.project_id":       "PUBSUB_PROJECT_ID",
	"pubsub.subscription":     "PUBSUB_SUBSCRIPTION",
	"worker.refresh_interval": "WORKER_REFRESH_INTERVAL",
	"worker.concurrency":      "WORKER_CONCURRENCY",
}

// ErrInvalidRefreshInterval is returned when the worker refresh interval is
// not positive.
var ErrInvalidRefreshInterval = errors.New("worker refresh interval must be positive")

// DefaultSigningKey is the development session key. Production must override it.
const DefaultSigningKey = "local-dev-signing-key-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "skydial")
	v.SetDefault("db.password", "localdev")
	v.SetDefault("db.name", "skydial")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "5m")
	v.SetDefault("session.signing_key", DefaultSigningKey)
	v.SetDefault("session.ttl", "720h")
	v.SetDefault("tomorrow.base_url", "https://api.tomorrow.io/v4")
	v.SetDefault("tomorrow.timeout", "10s")
	v.SetDefault("geonames.base_url", "http://api.geonames.org")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "skydial")
	v.SetDefault("mqtt.client_id", "skydial-worker")
	v.SetDefault("mqtt.connect_timeout", "10s")
	v.SetDefault("pubsub.subscription", "skydial-refresh")
	v.SetDefault("worker.refresh_interval", "15m")
	v.SetDefault("worker.concurrency", 3)
}

// Load reads configuration. An empty path looks for config.yaml in the
// working directory and /etc/skydial; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/skydial")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Worker.RefreshInterval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRefreshInterval, cfg.Worker.RefreshInterval)
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DatabaseConnConfig converts the database section for database.Connect.
func (c *Config) DatabaseConnConfig() database.Config {
	return database.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		Database:        c.Database.Name,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}
