package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"podforge/dto"
	"podforge/eventbus"
	"podforge/events"
	"podforge/logger"
	"podforge/models"
	"podforge/repositories"
)

// ErrNotFound is returned when an id does not resolve to a stored podcast.
// Malformed ids map here too; the caller only learns "no such podcast".
var ErrNotFound = errors.New("podcast not found")

// ErrInvalidStatKind rejects unknown engagement counter names.
var ErrInvalidStatKind = errors.New("stat kind must be one of view, play, like, share")

// ErrMissingFields rejects direct creation without the mandatory fields.
var ErrMissingFields = errors.New("topic, script, audio_url and voice_id are required")

// PodcastStore is the repository surface the service needs.
type PodcastStore interface {
	Insert(ctx context.Context, p *models.Podcast) (*models.Podcast, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Podcast, error)
	ListRecent(ctx context.Context, opt repositories.ListOptions) ([]models.Podcast, error)
	ListTrending(ctx context.Context, limit int) ([]models.Podcast, error)
	IncrementStat(ctx context.Context, id primitive.ObjectID, kind models.StatKind) (*models.Podcast, error)
}

// PodcastService encapsulates read/create/counter logic and DTO mapping.
type PodcastService struct {
	store PodcastStore
	bus   eventbus.Publisher
}

// NewPodcastService builds the service. bus may be nil; stat events are then
// simply not published.
func NewPodcastService(store PodcastStore, bus eventbus.Publisher) *PodcastService {
	return &PodcastService{store: store, bus: bus}
}

// GetByID loads a podcast by its ObjectID hex.
func (s *PodcastService) GetByID(ctx context.Context, hexID string) (*dto.PodcastDTO, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrNotFound
	}
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d := dto.NewPodcastDTO(*p)
	return &d, nil
}

type ListInput struct {
	Page     int
	PageSize int
}

// ListRecent returns podcasts newest-first.
func (s *PodcastService) ListRecent(ctx context.Context, in ListInput) ([]dto.PodcastDTO, error) {
	items, err := s.store.ListRecent(ctx, repositories.ListOptions{Page: in.Page, PageSize: in.PageSize})
	if err != nil {
		return nil, err
	}
	return mapPodcasts(items), nil
}

// ListTrending returns podcasts by plays desc, likes desc, newest first.
func (s *PodcastService) ListTrending(ctx context.Context, limit int) ([]dto.PodcastDTO, error) {
	items, err := s.store.ListTrending(ctx, limit)
	if err != nil {
		return nil, err
	}
	return mapPodcasts(items), nil
}

// IncrementStat bumps exactly one engagement counter and returns the updated
// record.
func (s *PodcastService) IncrementStat(ctx context.Context, hexID string, kind string) (*dto.PodcastDTO, error) {
	k := models.StatKind(kind)
	if !k.Valid() {
		return nil, ErrInvalidStatKind
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, ErrNotFound
	}

	p, err := s.store.IncrementStat(ctx, id, k)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.publishStatIncremented(ctx, p, k)
	d := dto.NewPodcastDTO(*p)
	return &d, nil
}

// CreatePodcastInput is the payload of the direct-creation path, used when
// script/audio/images were produced through the granular endpoints.
type CreatePodcastInput struct {
	Topic             string                `json:"topic"`
	Script            string                `json:"script"`
	AudioURL          string                `json:"audio_url"`
	Images            []models.PodcastImage `json:"images"`
	VoiceID           string                `json:"voice_id"`
	VoiceSettings     models.VoiceSettings  `json:"voice_settings"`
	Language          string                `json:"language"`
	AdditionalContext string                `json:"additional_context"`
}

// Create stores a podcast assembled by the caller. The first image becomes
// the thumbnail; without images the thumbnail stays null.
func (s *PodcastService) Create(ctx context.Context, in CreatePodcastInput) (*dto.PodcastDTO, error) {
	if in.Topic == "" || in.Script == "" || in.AudioURL == "" || in.VoiceID == "" {
		return nil, ErrMissingFields
	}

	images := in.Images
	if images == nil {
		images = []models.PodcastImage{}
	}
	var thumbnailURL *string
	if len(images) > 0 {
		thumbnailURL = &images[0].URL
	}

	p, err := s.store.Insert(ctx, &models.Podcast{
		Topic:             in.Topic,
		Script:            in.Script,
		AudioURL:          in.AudioURL,
		ThumbnailURL:      thumbnailURL,
		Images:            images,
		VoiceID:           in.VoiceID,
		VoiceSettings:     in.VoiceSettings.Normalized(),
		Language:          in.Language,
		AdditionalContext: in.AdditionalContext,
	})
	if err != nil {
		return nil, err
	}
	d := dto.NewPodcastDTO(*p)
	return &d, nil
}

func (s *PodcastService) publishStatIncremented(ctx context.Context, p *models.Podcast, kind models.StatKind) {
	if s.bus == nil {
		return
	}

	value := int64(0)
	switch kind {
	case models.StatView:
		value = p.Stats.Views
	case models.StatPlay:
		value = p.Stats.Plays
	case models.StatLike:
		value = p.Stats.Likes
	case models.StatShare:
		value = p.Stats.Shares
	}

	evt := events.PodcastStatIncrementedEvent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      events.PodcastStatIncremented,
			Timestamp: time.Now(),
			Source:    "podforge",
			Version:   "1.0",
		},
		PodcastID: p.ID,
		Kind:      string(kind),
		NewValue:  value,
	}
	payload, eventType, err := events.SerializeEvent(evt)
	if err != nil {
		logger.Log.Warnf("failed to serialize stat event: %v", err)
		return
	}
	if err := s.bus.Publish(ctx, eventbus.TopicPodcastEvents.Base(), eventbus.Event{
		ID:      evt.ID,
		Type:    string(eventType),
		Payload: json.RawMessage(payload),
	}); err != nil {
		logger.Log.Warnf("failed to publish stat event: %v", err)
	}
}

func mapPodcasts(items []models.Podcast) []dto.PodcastDTO {
	out := make([]dto.PodcastDTO, 0, len(items))
	for _, p := range items {
		out = append(out, dto.NewPodcastDTO(p))
	}
	return out
}
