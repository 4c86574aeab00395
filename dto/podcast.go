package dto

import (
	"time"

	"podforge/models"
)

// PodcastDTO is the transport shape of a stored podcast. ID is the hex form
// of the ObjectID to keep transport simple.
type PodcastDTO struct {
	ID                string                `json:"id"`
	Topic             string                `json:"topic"`
	Script            string                `json:"script"`
	ScriptModel       string                `json:"script_model,omitempty"`
	AudioURL          string                `json:"audio_url"`
	ThumbnailURL      *string               `json:"thumbnail_url"`
	Images            []models.PodcastImage `json:"images"`
	VoiceID           string                `json:"voice_id"`
	VoiceSettings     models.VoiceSettings  `json:"voice_settings"`
	Language          string                `json:"language,omitempty"`
	AdditionalContext string                `json:"additional_context,omitempty"`
	Views             int64                 `json:"views"`
	Plays             int64                 `json:"plays"`
	Likes             int64                 `json:"likes"`
	Shares            int64                 `json:"shares"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// NewPodcastDTO constructs PodcastDTO from models.Podcast.
func NewPodcastDTO(p models.Podcast) PodcastDTO {
	images := p.Images
	if images == nil {
		images = []models.PodcastImage{}
	}
	return PodcastDTO{
		ID:                p.ID.Hex(),
		Topic:             p.Topic,
		Script:            p.Script,
		ScriptModel:       p.ScriptModel,
		AudioURL:          p.AudioURL,
		ThumbnailURL:      p.ThumbnailURL,
		Images:            images,
		VoiceID:           p.VoiceID,
		VoiceSettings:     p.VoiceSettings,
		Language:          p.Language,
		AdditionalContext: p.AdditionalContext,
		Views:             p.Stats.Views,
		Plays:             p.Stats.Plays,
		Likes:             p.Stats.Likes,
		Shares:            p.Stats.Shares,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
