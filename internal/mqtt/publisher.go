// Package mqtt publishes computed sun state to an MQTT broker so home
// automation can follow day and night per location.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/dashboard"
)

// Defaults.
const (
	DefaultTopicPrefix    = "skydial"
	DefaultClientID       = "skydial-worker"
	DefaultPublishTimeout = 5 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// PublisherConfig holds broker settings.
type PublisherConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	Enabled        bool
	PublishTimeout time.Duration
	ConnectTimeout time.Duration
}

// Publisher writes sun state topics. A disabled publisher accepts every
// call and does nothing.
type Publisher struct {
	client  paho.Client
	prefix  string
	timeout time.Duration
	enabled bool
	logger  zerolog.Logger
}

// NewPublisher connects to the broker, waiting at most ConnectTimeout. An
// unreachable broker is not an error: the client keeps retrying in the
// background and publishes fail until it connects. Only configuration
// errors and a refused connect are returned.
func NewPublisher(cfg PublisherConfig, logger zerolog.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false, logger: logger}, nil
	}
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker is required when publishing is enabled")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn().Err(err).Msg("mqtt connection lost")
		}).
		SetOnConnectHandler(func(_ paho.Client) {
			logger.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		logger.Warn().
			Str("broker", cfg.Broker).
			Dur("timeout", cfg.ConnectTimeout).
			Msg("mqtt broker unreachable, retrying in background")
	} else if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return NewPublisherWithClient(client, cfg.TopicPrefix, cfg.PublishTimeout, logger), nil
}

// NewPublisherWithClient wraps an existing client.
func NewPublisherWithClient(client paho.Client, prefix string, timeout time.Duration, logger zerolog.Logger) *Publisher {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Publisher{
		client:  client,
		prefix:  strings.TrimSuffix(prefix, "/"),
		timeout: timeout,
		enabled: true,
		logger:  logger,
	}
}

// PublishSun writes the full dial as retained JSON to
// <prefix>/<location>/sun and "true" or "false" to <prefix>/<location>/night.
func (p *Publisher) PublishSun(ctx context.Context, location string, dial dashboard.SunDial) error {
	if !p.enabled {
		return nil
	}

	payload, err := json.Marshal(dial)
	if err != nil {
		return fmt.Errorf("failed to marshal sun state: %w", err)
	}

	if err := p.publish(ctx, Topic(p.prefix, location, "sun"), payload); err != nil {
		return err
	}
	return p.publish(ctx, Topic(p.prefix, location, "night"), []byte(strconv.FormatBool(dial.IsNight)))
}

func (p *Publisher) publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, true, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	p.logger.Debug().Str("topic", topic).Int("bytes", len(payload)).Msg("published")
	return nil
}

// IsConnected reports whether the broker connection is up. A disabled
// publisher is never connected. paho's IsConnected also reports true while
// connect retries are pending, so the open connection is checked instead.
func (p *Publisher) IsConnected() bool {
	if !p.enabled {
		return false
	}
	return p.client.IsConnectionOpen()
}

// Enabled reports whether publishes reach a broker.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Close disconnects, allowing a second for in-flight publishes.
func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(1000)
	}
}

// Topic joins prefix, a slug of location and leaf.
func Topic(prefix, location, leaf string) string {
	return prefix + "/" + Slug(location) + "/" + leaf
}

// Slug lowercases location and replaces anything outside [a-z0-9] with
// single dashes, so names never introduce topic levels or wildcards.
func Slug(location string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(location) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
