package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"podforge/eventbus"
	"podforge/events"
	"podforge/imagegen"
	"podforge/logger"
	"podforge/models"
	"podforge/scriptwriter"
)

// ScriptGenerator produces podcast scripts and timed image prompts.
type ScriptGenerator interface {
	Generate(ctx context.Context, req scriptwriter.ScriptRequest) (*scriptwriter.Script, error)
	SuggestImagePrompts(ctx context.Context, script string, n int) ([]scriptwriter.ImagePrompt, error)
}

// SpeechSynthesizer turns a script into raw audio bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string, settings models.VoiceSettings) ([]byte, error)
}

// ImageGenerator produces one image per prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (*imagegen.Image, error)
}

// MediaStore persists media payloads and returns public URLs.
type MediaStore interface {
	UploadAudio(ctx context.Context, data []byte) (string, error)
	UploadImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

// PodcastStore is the single mutation point of a pipeline run.
type PodcastStore interface {
	Insert(ctx context.Context, p *models.Podcast) (*models.Podcast, error)
}

// UsageRecorder receives one log entry per LLM call. Writes are best-effort.
type UsageRecorder interface {
	Insert(ctx context.Context, l models.AILog) (*mongo.InsertOneResult, error)
}

// QuotaGate throttles LLM-backed runs.
type QuotaGate interface {
	WaitAndReserve(ctx context.Context) (bool, error)
}

// Request is the immutable input of one pipeline run.
type Request struct {
	Topic             string
	VoiceID           string
	VoiceSettings     models.VoiceSettings
	Language          string
	AdditionalContext string
}

// Deps wires a Generator. Usage, Bus and Quota are optional.
type Deps struct {
	Scripts  ScriptGenerator
	Speech   SpeechSynthesizer
	Images   ImageGenerator
	Media    MediaStore
	Podcasts PodcastStore
	Usage    UsageRecorder
	Bus      eventbus.Publisher
	Quota    QuotaGate

	DefaultVoiceID string
	ImageCount     int
}

// Generator runs the podcast generation workflow: a mandatory sequential
// prefix (script, synthesis, audio upload), a best-effort concurrent image
// suffix, and a single persisting write at the end.
type Generator struct {
	deps Deps
}

func NewGenerator(deps Deps) *Generator {
	if deps.ImageCount <= 0 {
		deps.ImageCount = 3
	}
	return &Generator{deps: deps}
}

// Generate executes one pipeline run. Each step is attempted exactly once;
// a mandatory-step failure aborts with a classified error and no persisted
// side effect, so callers may simply re-invoke the whole pipeline.
func (g *Generator) Generate(ctx context.Context, req Request) (*models.Podcast, error) {
	if req.Topic == "" {
		return nil, ErrMissingTopic
	}

	if g.deps.Quota != nil {
		ok, err := g.deps.Quota.WaitAndReserve(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrQuotaExhausted
		}
	}

	// 1) Script (mandatory)
	scriptStart := time.Now()
	script, err := g.deps.Scripts.Generate(ctx, scriptwriter.ScriptRequest{
		Topic:             req.Topic,
		AdditionalContext: req.AdditionalContext,
		Language:          req.Language,
	})
	g.recordUsage(ctx, "script", req.Topic, script, scriptStart, err)
	if err != nil {
		return nil, &UpstreamError{Step: StepScript, Err: err}
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = g.deps.DefaultVoiceID
	}
	settings := req.VoiceSettings.Normalized()

	// 2) Audio synthesis (mandatory)
	audio, err := g.deps.Speech.Synthesize(ctx, script.Text, voiceID, settings)
	if err != nil {
		return nil, &UpstreamError{Step: StepSynthesis, Err: err}
	}

	// 3) Audio upload (mandatory)
	audioURL, err := g.deps.Media.UploadAudio(ctx, audio)
	if err != nil {
		return nil, &UpstreamError{Step: StepAudioUpload, Err: err}
	}

	// 4) Images (best-effort)
	images := g.generateImages(ctx, req.Topic, script.Text)

	var thumbnailURL *string
	if len(images) > 0 {
		thumbnailURL = &images[0].URL
	}

	// 5) Persist (single mutation point)
	record := &models.Podcast{
		Topic:             req.Topic,
		Script:            script.Text,
		ScriptModel:       script.ModelName,
		AudioURL:          audioURL,
		ThumbnailURL:      thumbnailURL,
		Images:            images,
		VoiceID:           voiceID,
		VoiceSettings:     settings,
		Language:          req.Language,
		AdditionalContext: req.AdditionalContext,
	}
	saved, err := g.deps.Podcasts.Insert(ctx, record)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	g.publishGenerated(ctx, saved)
	return saved, nil
}

// generateImages derives prompts from the script and runs one
// generate-and-upload pair per prompt concurrently. Per-image failures are
// logged and skipped; prompt order is preserved in the result.
func (g *Generator) generateImages(ctx context.Context, topic, script string) []models.PodcastImage {
	promptsStart := time.Now()
	prompts, err := g.deps.Scripts.SuggestImagePrompts(ctx, script, g.deps.ImageCount)
	g.recordUsage(ctx, "image_prompts", topic, nil, promptsStart, err)
	if err != nil {
		logger.WarnWithFields("image prompt derivation failed, falling back to cover art", logger.Fields{
			"topic": topic,
			"error": err.Error(),
		})
		prompts = []scriptwriter.ImagePrompt{{
			Prompt:        coverArtPrompt(topic),
			TimingSeconds: 0,
		}}
	}

	results := make([]*models.PodcastImage, len(prompts))
	var wg sync.WaitGroup
	for i, p := range prompts {
		wg.Add(1)
		go func(idx int, prompt scriptwriter.ImagePrompt) {
			defer wg.Done()

			img, err := g.deps.Images.Generate(ctx, prompt.Prompt)
			if err != nil {
				logger.WarnWithFields("image generation failed, skipping", logger.Fields{
					"topic": topic,
					"index": idx,
					"error": err.Error(),
				})
				return
			}
			url, err := g.deps.Media.UploadImage(ctx, img.Bytes, img.MIMEType)
			if err != nil {
				logger.WarnWithFields("image upload failed, skipping", logger.Fields{
					"topic": topic,
					"index": idx,
					"error": err.Error(),
				})
				return
			}
			results[idx] = &models.PodcastImage{
				URL:           url,
				Prompt:        prompt.Prompt,
				TimingSeconds: prompt.TimingSeconds,
			}
		}(i, p)
	}
	wg.Wait()

	images := make([]models.PodcastImage, 0, len(results))
	for _, r := range results {
		if r != nil {
			images = append(images, *r)
		}
	}
	return images
}

func coverArtPrompt(topic string) string {
	return fmt.Sprintf("Create a podcast cover art for a topic about: %s. Modern, professional style with subtle imagery.", topic)
}

func (g *Generator) recordUsage(ctx context.Context, kind, input string, script *scriptwriter.Script, start time.Time, callErr error) {
	if g.deps.Usage == nil {
		return
	}

	entry := models.AILog{
		Kind:         kind,
		DurationMs:   time.Since(start).Milliseconds(),
		Success:      callErr == nil,
		InputExcerpt: truncate(input, 200),
		RequestedAt:  start,
		CompletedAt:  time.Now(),
	}
	if script != nil {
		entry.ModelName = script.ModelName
		entry.ResponseExcerpt = truncate(script.Text, 200)
	}
	if callErr != nil {
		msg := callErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := g.deps.Usage.Insert(ctx, entry); err != nil {
		logger.Log.Warnf("failed to record ai usage: %v", err)
	}
}

func (g *Generator) publishGenerated(ctx context.Context, p *models.Podcast) {
	if g.deps.Bus == nil {
		return
	}

	evt := events.PodcastGeneratedEvent{
		BaseEvent: events.BaseEvent{
			ID:        uuid.NewString(),
			Type:      events.PodcastGenerated,
			Timestamp: time.Now(),
			Source:    "podforge",
			Version:   "1.0",
		},
		PodcastID:    p.ID,
		Topic:        p.Topic,
		AudioURL:     p.AudioURL,
		ThumbnailURL: p.ThumbnailURL,
		ImageCount:   len(p.Images),
		ScriptModel:  p.ScriptModel,
	}
	payload, eventType, err := events.SerializeEvent(evt)
	if err != nil {
		logger.Log.Warnf("failed to serialize podcast event: %v", err)
		return
	}
	if err := g.deps.Bus.Publish(ctx, eventbus.TopicPodcastEvents.Base(), eventbus.Event{
		ID:      evt.ID,
		Type:    string(eventType),
		Payload: json.RawMessage(payload),
	}); err != nil {
		logger.Log.Warnf("failed to publish podcast event: %v", err)
	}
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
