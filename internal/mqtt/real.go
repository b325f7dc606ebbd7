package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// DefaultBufferSize is how many messages are held while the broker is unreachable.
const DefaultBufferSize = 64

// Options configures the broker connection.
type Options struct {
	Broker     string // e.g. "tcp://192.168.1.200:1883"
	ClientID   string
	Username   string // empty disables authentication
	Password   string
	BufferSize int // 0 means DefaultBufferSize
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are held in a backlog and replayed on reconnect.
type RealPublisher struct {
	client paho.Client
	logger zerolog.Logger

	mu      sync.Mutex
	backlog *backlog
}

// NewRealPublisher creates a publisher connected to the given broker and
// subscribed to TopicControl.
func NewRealPublisher(o Options, logger zerolog.Logger) (*RealPublisher, error) {
	size := o.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	p := &RealPublisher{
		logger:  logger.With().Str("component", "mqtt").Logger(),
		backlog: newBacklog(size),
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	client := paho.NewClient(opts)
	p.client = client
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// PublishTelemetry sends a telemetry record to the MQTT broker.
func (p *RealPublisher) PublishTelemetry(rec Record) error {
	payload, err := FormatPayload(rec)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.publish(outbound{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events
	return p.publish(outbound{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) publish(msg outbound) error {
	if !p.client.IsConnectionOpen() {
		p.hold(msg)
		return nil
	}

	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", msg.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

func (p *RealPublisher) hold(msg outbound) {
	p.mu.Lock()
	firstDrop := p.backlog.push(msg)
	n := p.backlog.len()
	p.mu.Unlock()

	if firstDrop {
		p.logger.Warn().Int("capacity", n).Msg("offline backlog full, dropping oldest")
	}
	p.logger.Debug().Str("topic", msg.topic).Int("queued", n).Msg("broker unreachable, message queued")
}

// onConnect runs on every (re)connection: it restores the control
// subscription and replays queued messages in order.
func (p *RealPublisher) onConnect(c paho.Client) {
	p.logger.Info().Msg("connected to broker")

	token := c.Subscribe(TopicControl, 1, p.handleControl)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		p.logger.Error().Err(token.Error()).Str("topic", TopicControl).Msg("subscribe failed")
	}

	p.mu.Lock()
	pending, dropped := p.backlog.drain()
	p.mu.Unlock()

	for _, msg := range pending {
		token := c.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			p.logger.Warn().Err(token.Error()).Str("topic", msg.topic).Msg("replay failed")
		}
	}
	if len(pending) > 0 || dropped > 0 {
		p.logger.Info().Int("count", len(pending)).Int("dropped", dropped).Msg("replayed queued messages")
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.logger.Warn().Err(err).Msg("connection to broker lost")
}

// handleControl logs messages received on the control topic. The node takes
// no action on them.
func (p *RealPublisher) handleControl(_ paho.Client, msg paho.Message) {
	p.logger.Info().
		Str("topic", msg.Topic()).
		Bytes("payload", msg.Payload()).
		Msg("control message received")
}
