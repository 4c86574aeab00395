package eventbus

import (
	"context"
	"encoding/json"
)

// Topic manages a base topic name.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// TopicPodcastEvents is the single lifecycle topic for podcast events.
var TopicPodcastEvents = NewTopic("podforge.podcast.events")

// Event is the payload envelope carried on the bus.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher abstracts event publication. Implementations must be safe for
// concurrent use; publication is best-effort from the caller's perspective.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}
