package events

import (
	"context"
	"encoding/json"

	"github.com/alfredjeanlab/adcl/internal/model"
)

// Event topic constants
const (
	TopicProjectCreated    = "adcl.project.created"
	TopicChangelogImported = "adcl.changelog.imported"
	TopicChangelogLoaded   = "adcl.changelog.loaded"

	// TopicAll matches every adcl event.
	TopicAll = "adcl.>"
)

// Event types

type ProjectCreated struct {
	Project *model.Project `json:"project"`
}

// ChangelogImported reports the rows ingested for one project version.
type ChangelogImported struct {
	Project      string `json:"project"`
	Version      string `json:"version"`
	Structure    int    `json:"structure"`
	Dependencies int    `json:"dependencies"`
}

// ChangelogLoaded is emitted when a load replaces the canonical dataset.
type ChangelogLoaded struct {
	LoadID      string             `json:"load_id"`
	Project     string             `json:"project"`
	Version     string             `json:"version"`
	Records     int                `json:"records"`
	Diagnostics *model.Diagnostics `json:"diagnostics,omitempty"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives raw event payloads. The cancel function returned by
// Subscribe unsubscribes and closes the channel.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}

// NoopPublisher discards every event. The server uses it when no event bus
// is configured.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }

// SubscribeLoads decodes ChangelogLoaded events from sub until ctx is done
// or the underlying subscription closes. Undecodable payloads are skipped.
func SubscribeLoads(ctx context.Context, sub Subscriber) (<-chan ChangelogLoaded, error) {
	raw, cancel, err := sub.Subscribe(TopicChangelogLoaded)
	if err != nil {
		return nil, err
	}
	out := make(chan ChangelogLoaded)
	go func() {
		defer close(out)
		defer cancel()
		for {
			var data []byte
			select {
			case <-ctx.Done():
				return
			case d, ok := <-raw:
				if !ok {
					return
				}
				data = d
			}
			var ev ChangelogLoaded
			if err := json.Unmarshal(data, &ev); err != nil || ev.LoadID == "" {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
