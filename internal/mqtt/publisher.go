// Package mqtt mirrors output state to an MQTT broker so other home
// automation components can follow what the valves are doing.
//
// For every dispatched output command the Publisher sends the new level,
// retained, to <prefix>/<channel>/state. Hardware faults go to
// <prefix>/<channel>/fault and are not retained.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"valve_timer/internal/actuation"
	"valve_timer/internal/logger"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultBuffer   = 64
	publishTimeout  = 5 * time.Second
	connectTimeout  = 10 * time.Second
	disconnectQuiet = 250 // ms
	qosAtLeastOnce  = 1

	DefaultTopicPrefix = "valve"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Client is the subset of a broker connection the Publisher needs.
type Client interface {
	Publish(topic string, retained bool, payload string) error
}

// Config selects the broker and topic layout.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
}

// Publisher is an actuation.Observer. Observe only enqueues; Run does the
// network work so the actor is never held up by the broker.
type Publisher struct {
	client  Client
	prefix  string
	queue   chan actuation.Dispatch
	dropped atomic.Uint64
	log     *logger.Logger
}

func NewPublisher(client Client, prefix string, log *logger.Logger) *Publisher {
	return &Publisher{
		client: client,
		prefix: topicPrefix(prefix),
		queue:  make(chan actuation.Dispatch, defaultBuffer),
		log:    logger.OrNop(log),
	}
}

func topicPrefix(prefix string) string {
	if prefix == "" {
		return DefaultTopicPrefix
	}
	return prefix
}

// StatusTopic carries the retained online/offline marker of the service.
func StatusTopic(prefix string) string {
	return topicPrefix(prefix) + "/status"
}

func (p *Publisher) StateTopic(channel int) string {
	return fmt.Sprintf("%s/%d/state", p.prefix, channel)
}

func (p *Publisher) FaultTopic(channel int) string {
	return fmt.Sprintf("%s/%d/fault", p.prefix, channel)
}

func (p *Publisher) Observe(d actuation.Dispatch) {
	if d.Kind != actuation.KindOutput {
		return
	}
	select {
	case p.queue <- d:
	default:
		p.dropped.Add(1)
		p.log.Warnw("mqtt_publish_dropped", "channel", d.Channel)
	}
}

// Dropped returns how many dispatches were not published.
func (p *Publisher) Dropped() uint64 { return p.dropped.Load() }

// Run publishes queued dispatches until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-p.queue:
			p.publish(d)
		}
	}
}

func (p *Publisher) publish(d actuation.Dispatch) {
	topic, payload, retained := p.StateTopic(d.Channel), actuation.LevelString(d.Level), true
	if d.Err != nil {
		topic, payload, retained = p.FaultTopic(d.Channel), d.Err.Error(), false
	}
	if err := p.client.Publish(topic, retained, payload); err != nil {
		p.log.Errorw("mqtt_publish_failed", "topic", topic, "err", err)
		return
	}
	p.log.Debugw("mqtt_published", "topic", topic, "payload", payload)
}

// pahoClient adapts a paho client to Client.
type pahoClient struct {
	c paho.Client
}

func (p pahoClient) Publish(topic string, retained bool, payload string) error {
	tok := p.c.Publish(topic, qosAtLeastOnce, retained, payload)
	if !tok.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	return tok.Error()
}

// Conn is an open broker connection.
type Conn struct {
	Client
	raw    paho.Client
	status string
}

// Connect dials the broker. The connection announces "online" on
// <prefix>/status and leaves "offline" there as its last will.
func Connect(cfg Config, log *logger.Logger) (*Conn, error) {
	log = logger.OrNop(log)
	status := StatusTopic(cfg.TopicPrefix)

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetWill(status, "offline", qosAtLeastOnce, true)
	opts.SetOnConnectHandler(func(c paho.Client) {
		log.Infow("mqtt_connected", "broker", cfg.Broker, "client_id", cfg.ClientID)
		c.Publish(status, qosAtLeastOnce, true, "online")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warnw("mqtt_connection_lost", "err", err)
	})

	raw := paho.NewClient(opts)
	tok := raw.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect %s: timed out", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	return &Conn{Client: pahoClient{c: raw}, raw: raw, status: status}, nil
}

// Close marks the service offline and disconnects.
func (c *Conn) Close() {
	if c.raw.IsConnected() {
		c.raw.Publish(c.status, qosAtLeastOnce, true, "offline").WaitTimeout(publishTimeout)
	}
	c.raw.Disconnect(disconnectQuiet)
}
