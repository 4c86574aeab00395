package events

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType identifies a podcast lifecycle event.
type EventType string

const (
	PodcastGenerated       EventType = "podcast.generated"
	PodcastStatIncremented EventType = "podcast.stat_incremented"
)

// BaseEvent carries the fields common to every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// PodcastGeneratedEvent is published after a pipeline run persisted its record.
type PodcastGeneratedEvent struct {
	BaseEvent
	PodcastID    primitive.ObjectID `json:"podcast_id"`
	Topic        string             `json:"topic"`
	AudioURL     string             `json:"audio_url"`
	ThumbnailURL *string            `json:"thumbnail_url"`
	ImageCount   int                `json:"image_count"`
	ScriptModel  string             `json:"script_model"`
}

// PodcastStatIncrementedEvent is published after an engagement counter changed.
type PodcastStatIncrementedEvent struct {
	BaseEvent
	PodcastID primitive.ObjectID `json:"podcast_id"`
	Kind      string             `json:"kind"`
	NewValue  int64              `json:"new_value"`
}

// SerializeEvent marshals an event and reports its type tag.
func SerializeEvent(event interface{}) ([]byte, EventType, error) {
	var eventType EventType

	switch e := event.(type) {
	case PodcastGeneratedEvent:
		eventType = e.Type
	case PodcastStatIncrementedEvent:
		eventType = e.Type
	default:
		return nil, "", fmt.Errorf("unknown event type: %T", event)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event: %w", err)
	}

	return data, eventType, nil
}
