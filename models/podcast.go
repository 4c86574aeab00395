package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoiceSettings are the ElevenLabs synthesis knobs. Values are in [0,1];
// a zero value means "unset" and is replaced with 0.5 before synthesis.
type VoiceSettings struct {
	Stability       float64 `bson:"stability" json:"stability"`
	SimilarityBoost float64 `bson:"similarity_boost" json:"similarityBoost"`
	Style           float64 `bson:"style" json:"style"`
}

// Normalized returns a copy with unset fields replaced by the 0.5 default.
func (v VoiceSettings) Normalized() VoiceSettings {
	def := func(x float64) float64 {
		if x == 0 {
			return 0.5
		}
		return x
	}
	return VoiceSettings{
		Stability:       def(v.Stability),
		SimilarityBoost: def(v.SimilarityBoost),
		Style:           def(v.Style),
	}
}

// PodcastImage is one generated visual, with the prompt that produced it and
// its display offset within the audio. TimingSeconds 0 with a single image
// means plain cover art.
type PodcastImage struct {
	URL           string  `bson:"url" json:"url"`
	Prompt        string  `bson:"prompt" json:"prompt"`
	TimingSeconds float64 `bson:"timing_seconds" json:"timing_seconds"`
}

// EngagementStats are the per-podcast counters. Mutated only through atomic
// $inc updates.
type EngagementStats struct {
	Views  int64 `bson:"views" json:"views"`
	Plays  int64 `bson:"plays" json:"plays"`
	Likes  int64 `bson:"likes" json:"likes"`
	Shares int64 `bson:"shares" json:"shares"`
}

// StatKind names one engagement counter.
type StatKind string

const (
	StatView  StatKind = "view"
	StatPlay  StatKind = "play"
	StatLike  StatKind = "like"
	StatShare StatKind = "share"
)

// Valid reports whether k names a known counter.
func (k StatKind) Valid() bool {
	switch k {
	case StatView, StatPlay, StatLike, StatShare:
		return true
	}
	return false
}

// Field returns the bson path of the counter behind k.
func (k StatKind) Field() string {
	switch k {
	case StatView:
		return "stats.views"
	case StatPlay:
		return "stats.plays"
	case StatLike:
		return "stats.likes"
	case StatShare:
		return "stats.shares"
	}
	return ""
}

// Podcast is the persisted aggregate of one successful generation run.
// Collection: podcasts
//
// Script and AudioURL are always non-empty once a document exists;
// ThumbnailURL is nil only when image generation was skipped or failed
// entirely.
type Podcast struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Topic             string         `bson:"topic" json:"topic"`
	Script            string         `bson:"script" json:"script"`
	ScriptModel       string         `bson:"script_model" json:"script_model"`
	AudioURL          string         `bson:"audio_url" json:"audio_url"`
	ThumbnailURL      *string        `bson:"thumbnail_url" json:"thumbnail_url"`
	Images            []PodcastImage `bson:"images" json:"images"`
	VoiceID           string         `bson:"voice_id" json:"voice_id"`
	VoiceSettings     VoiceSettings  `bson:"voice_settings" json:"voice_settings"`
	Language          string         `bson:"language,omitempty" json:"language,omitempty"`
	AdditionalContext string         `bson:"additional_context,omitempty" json:"additional_context,omitempty"`

	Stats EngagementStats `bson:"stats" json:"stats"`
}
