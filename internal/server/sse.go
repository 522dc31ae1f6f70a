package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// sseBacklogSize bounds the events kept for Last-Event-ID resumption.
	sseBacklogSize = 1000

	sseClientBuffer = 64

	sseKeepaliveInterval = 15 * time.Second

	// sseRetryMillis is the reconnect delay advertised to browsers.
	sseRetryMillis = 3000
)

// sseEvent is one published changelog event as delivered to stream clients.
type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

// topicFilter is a list of dot-separated topic patterns. An empty filter
// accepts every topic.
type topicFilter []string

// parseTopicFilter splits a comma-separated ?topics= value.
func parseTopicFilter(raw string) topicFilter {
	var f topicFilter
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			f = append(f, p)
		}
	}
	return f
}

func (f topicFilter) match(topic string) bool {
	return len(f) == 0 || slices.ContainsFunc(f, func(p string) bool {
		return matchTopicPattern(p, topic)
	})
}

// matchTopicPattern reports whether topic matches pattern using NATS
// subject rules: "*" stands for one segment, a trailing ">" for one or more.
func matchTopicPattern(pattern, topic string) bool {
	for {
		pat, patRest, patMore := strings.Cut(pattern, ".")
		if pat == ">" {
			return topic != ""
		}
		if topic == "" {
			return false
		}
		seg, topicRest, topicMore := strings.Cut(topic, ".")
		if pat != "*" && pat != seg {
			return false
		}
		if !patMore || !topicMore {
			return patMore == topicMore
		}
		pattern, topic = patRest, topicRest
	}
}

// sseClient is one connected event stream.
type sseClient struct {
	filter  topicFilter
	ch      chan sseEvent
	dropped int
}

// sseHub numbers events, keeps a bounded backlog of them and fans them out
// to stream clients. Slow clients lose events rather than stall publishers.
type sseHub struct {
	mu      sync.Mutex
	seq     uint64
	backlog []sseEvent
	clients map[*sseClient]struct{}
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[*sseClient]struct{})}
}

func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	evt := sseEvent{ID: h.seq, Topic: topic, Data: payload}
	if len(h.backlog) == sseBacklogSize {
		h.backlog = slices.Delete(h.backlog, 0, 1)
	}
	h.backlog = append(h.backlog, evt)

	for c := range h.clients {
		if !c.filter.match(topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
			c.dropped++
		}
	}
}

// subscribe registers a client. When lastEventID parses as an event id the
// matching backlog after it is returned too; registration and the backlog
// snapshot happen under one lock so nothing falls between them.
func (h *sseHub) subscribe(filter topicFilter, lastEventID string) (*sseClient, []sseEvent) {
	c := &sseClient{filter: filter, ch: make(chan sseEvent, sseClientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}

	lastID, err := strconv.ParseUint(lastEventID, 10, 64)
	if err != nil {
		return c, nil
	}
	var replay []sseEvent
	for _, evt := range h.eventsSinceLocked(lastID) {
		if filter.match(evt.Topic) {
			replay = append(replay, evt)
		}
	}
	return c, replay
}

// unsubscribe removes c and returns how many events it missed.
func (h *sseHub) unsubscribe(c *sseClient) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	return c.dropped
}

// eventsSince returns the backlog entries newer than lastID, oldest first.
func (h *sseHub) eventsSince(lastID uint64) []sseEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.eventsSinceLocked(lastID)
}

func (h *sseHub) eventsSinceLocked(lastID uint64) []sseEvent {
	i, _ := slices.BinarySearchFunc(h.backlog, lastID+1, func(e sseEvent, id uint64) int {
		switch {
		case e.ID < id:
			return -1
		case e.ID > id:
			return 1
		}
		return 0
	})
	if i == len(h.backlog) {
		return nil
	}
	return slices.Clone(h.backlog[i:])
}

// handleEventStream handles GET /v1/events/stream.
func (s *ChangelogServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	client, replay := s.sseHub.subscribe(
		parseTopicFilter(r.URL.Query().Get("topics")),
		r.Header.Get("Last-Event-ID"),
	)
	defer func() {
		if n := s.sseHub.unsubscribe(client); n > 0 {
			slog.Warn("event stream client missed events", "remote", r.RemoteAddr, "dropped", n)
		}
	}()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "retry:%d\n\n", sseRetryMillis)
	for _, evt := range replay {
		writeSSEEvent(w, evt)
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
		}
		flusher.Flush()
	}
}

func writeSSEEvent(w http.ResponseWriter, evt sseEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
}

// broadcastEvent encodes event and hands it to the stream hub.
func (s *ChangelogServer) broadcastEvent(topic string, event any) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("encoding stream event", "topic", topic, "err", err)
		return
	}
	s.sseHub.broadcast(topic, payload)
}
