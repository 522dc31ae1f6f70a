package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// subscriptionBuffer bounds the per-subscription backlog. Payloads arriving
// while it is full are dropped so the NATS dispatcher never blocks.
const subscriptionBuffer = 64

// connect dials the NATS server at url. Callers' options are applied after
// the defaults so they can override them.
func connect(url, name string, opts ...nats.Option) (*nats.Conn, error) {
	all := append([]nats.Option{nats.Name(name)}, opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return nc, nil
}

// NATSPublisher emits JSON-encoded events on the subject named by the topic.
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	nc, err := connect(url, "adcl-server", opts...)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{conn: nc}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber delivers raw event payloads from NATS subjects. The
// connection reconnects forever, one second apart, unless the caller
// passes overriding options.
type NATSSubscriber struct {
	conn *nats.Conn
}

func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	all := append([]nats.Option{nats.MaxReconnects(-1), nats.ReconnectWait(time.Second)}, opts...)
	nc, err := connect(url, "adcl-watch", all...)
	if err != nil {
		return nil, err
	}
	return &NATSSubscriber{conn: nc}, nil
}

// natsSubscription forwards messages from one NATS subscription into a
// buffered channel until it is cancelled.
type natsSubscription struct {
	mu     sync.Mutex
	ch     chan []byte
	sub    *nats.Subscription
	closed bool
}

func (s *natsSubscription) deliver(msg *nats.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg.Data:
	default:
	}
}

// cancel unsubscribes, discards any backlog and closes the channel.
// It is safe to call more than once.
func (s *natsSubscription) cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for len(s.ch) > 0 {
		<-s.ch
	}
	close(s.ch)
	s.mu.Unlock()

	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
}

// Subscribe accepts NATS wildcards such as TopicAll. The subscription is
// registered on the server before Subscribe returns.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	ns := &natsSubscription{ch: make(chan []byte, subscriptionBuffer)}

	sub, err := s.conn.Subscribe(topic, ns.deliver)
	if err != nil {
		ns.cancel()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	ns.sub = sub

	if err := s.conn.Flush(); err != nil {
		ns.cancel()
		return nil, nil, fmt.Errorf("registering subscription to %s: %w", topic, err)
	}
	return ns.ch, ns.cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
