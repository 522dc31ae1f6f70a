package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// embeddedNATS starts an in-process NATS server for the duration of the test.
func embeddedNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(srv.Shutdown)
	require.True(t, srv.ReadyForConnections(5*time.Second), "embedded NATS not ready")
	return srv.ClientURL()
}

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

var (
	_ Publisher  = (*NoopPublisher)(nil)
	_ Publisher  = (*NATSPublisher)(nil)
	_ Subscriber = (*NATSSubscriber)(nil)
)

func TestNoopPublisher(t *testing.T) {
	pub := &NoopPublisher{}
	assert.NoError(t, pub.Publish(context.Background(), TopicChangelogLoaded, ChangelogLoaded{}))
	assert.NoError(t, pub.Close())
}

func TestPublishRoundTrip(t *testing.T) {
	url := embeddedNATS(t)

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	defer pub.Close()
	sub, err := NewNATSSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicChangelogLoaded)
	require.NoError(t, err)
	defer cancel()

	loaded := ChangelogLoaded{
		LoadID: "ld-abc", Project: "shop", Version: "1.1.0", Records: 12,
		Diagnostics: &model.Diagnostics{UnresolvedTypes: []string{"shop.x"}},
	}
	require.NoError(t, pub.Publish(context.Background(), TopicChangelogLoaded, loaded))

	var got ChangelogLoaded
	require.NoError(t, json.Unmarshal(recv(t, ch), &got))
	assert.Equal(t, loaded, got)
}

func TestSubscribeWildcard(t *testing.T) {
	url := embeddedNATS(t)

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()
	msgs := make(chan *nats.Msg, 3)
	s, err := nc.ChanSubscribe(TopicAll, msgs)
	require.NoError(t, err)
	defer s.Unsubscribe() //nolint:errcheck
	require.NoError(t, nc.Flush())

	published := []struct {
		topic string
		event any
	}{
		{TopicProjectCreated, ProjectCreated{Project: &model.Project{Name: "shop", Internal: true}}},
		{TopicChangelogImported, ChangelogImported{Project: "shop", Version: "1.1.0", Structure: 4, Dependencies: 2}},
		{TopicChangelogLoaded, ChangelogLoaded{LoadID: "ld-1", Project: "shop", Version: "1.1.0"}},
	}
	for _, p := range published {
		require.NoError(t, pub.Publish(context.Background(), p.topic, p.event))
	}

	for _, p := range published {
		select {
		case msg := <-msgs:
			assert.Equal(t, p.topic, msg.Subject)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", p.topic)
		}
	}
}

func TestPublishAfterClose(t *testing.T) {
	pub, err := NewNATSPublisher(embeddedNATS(t))
	require.NoError(t, err)
	require.NoError(t, pub.Close())

	assert.Error(t, pub.Publish(context.Background(), TopicChangelogLoaded, ChangelogLoaded{}))
}

func TestPublishUnencodable(t *testing.T) {
	pub, err := NewNATSPublisher(embeddedNATS(t))
	require.NoError(t, err)
	defer pub.Close()

	assert.Error(t, pub.Publish(context.Background(), TopicChangelogLoaded, make(chan int)))
}

func TestSubscriptionCancel(t *testing.T) {
	url := embeddedNATS(t)

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	defer pub.Close()
	sub, err := NewNATSSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicAll)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			_ = pub.conn.Publish(TopicChangelogLoaded, []byte(`{"load_id":"x"}`))
		}
		_ = pub.conn.Flush()
	}()

	cancel()
	cancel()
	<-done

	_, ok := <-ch
	assert.False(t, ok, "channel must be closed after cancel")
}

func TestSubscriberOptions(t *testing.T) {
	var called bool
	sub, err := NewNATSSubscriber(embeddedNATS(t), nats.ReconnectHandler(func(*nats.Conn) { called = true }))
	require.NoError(t, err)
	defer sub.Close()

	assert.True(t, sub.conn.IsConnected())
	assert.Equal(t, "adcl-watch", sub.conn.Opts.Name)
	assert.Equal(t, -1, sub.conn.Opts.MaxReconnect)
	assert.False(t, called)
}

// chanSubscriber hands out a caller-controlled payload channel.
type chanSubscriber struct {
	mu        sync.Mutex
	ch        chan []byte
	topics    []string
	cancelled bool
}

func (c *chanSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return c.ch, func() {
		c.mu.Lock()
		c.cancelled = true
		c.mu.Unlock()
	}, nil
}

func (c *chanSubscriber) Close() error { return nil }

func TestSubscribeLoads(t *testing.T) {
	fake := &chanSubscriber{ch: make(chan []byte, 4)}
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	loads, err := SubscribeLoads(ctx, fake)
	require.NoError(t, err)
	assert.Equal(t, []string{TopicChangelogLoaded}, fake.topics)

	fake.ch <- []byte(`not json`)
	fake.ch <- []byte(`{"project":"shop"}`)
	fake.ch <- []byte(`{"load_id":"ld-2","project":"shop","version":"2.0","records":3}`)

	select {
	case ev := <-loads:
		assert.Equal(t, ChangelogLoaded{LoadID: "ld-2", Project: "shop", Version: "2.0", Records: 3}, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for load event")
	}

	close(fake.ch)
	_, ok := <-loads
	assert.False(t, ok)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, fake.cancelled)
}

func TestSubscribeLoadsOverNATS(t *testing.T) {
	url := embeddedNATS(t)

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	defer pub.Close()
	sub, err := NewNATSSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	ctx, stop := context.WithCancel(context.Background())
	loads, err := SubscribeLoads(ctx, sub)
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, TopicChangelogImported, ChangelogImported{Project: "shop"}))
	require.NoError(t, pub.Publish(ctx, TopicChangelogLoaded, ChangelogLoaded{LoadID: "ld-9", Project: "shop"}))

	select {
	case ev := <-loads:
		assert.Equal(t, "ld-9", ev.LoadID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for load event")
	}

	stop()
	for range loads {
	}
}
