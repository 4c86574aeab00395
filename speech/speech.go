package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podforge/config"
	"podforge/httpclient"
	"podforge/models"
)

const defaultBaseURL = "https://api.elevenlabs.io"

// synthesisModel is the ElevenLabs model used for all synthesis calls.
const synthesisModel = "eleven_monolingual_v1"

// Client wraps the ElevenLabs text-to-speech API.
type Client struct {
	base   *httpclient.BaseClient
	apiKey string
}

// New constructs a Client from application config. Audio synthesis is the
// slowest vendor call, so it gets a longer timeout than the default.
func New(cfg config.AppConfig) *Client {
	return &Client{
		base:   httpclient.NewBaseClientWithClient(httpclient.New(httpclient.Config{Timeout: 60 * time.Second}), defaultBaseURL),
		apiKey: cfg.ElevenLabsApiKey,
	}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(baseURL, apiKey string) *Client {
	return &Client{
		base:   httpclient.NewBaseClient(baseURL),
		apiKey: apiKey,
	}
}

type synthesizeBody struct {
	Text          string            `json:"text"`
	ModelID       string            `json:"model_id"`
	VoiceSettings wireVoiceSettings `json:"voice_settings"`
}

// wireVoiceSettings uses the snake_case keys the vendor expects.
type wireVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
}

// Synthesize posts text to the synthesis endpoint keyed by voiceID and
// returns the raw audio/mpeg payload. Control characters are stripped first
// since they corrupt synthesis. Unset settings default to 0.5.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string, settings models.VoiceSettings) ([]byte, error) {
	clean := SanitizeText(text)
	if clean == "" {
		return nil, fmt.Errorf("speech: text is empty after sanitization")
	}

	s := settings.Normalized()
	payload, err := json.Marshal(synthesizeBody{
		Text:    clean,
		ModelID: synthesisModel,
		VoiceSettings: wireVoiceSettings{
			Stability:       s.Stability,
			SimilarityBoost: s.SimilarityBoost,
			Style:           s.Style,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := c.base.NewRequest(ctx, http.MethodPost, "/v1/text-to-speech/"+voiceID, nil, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("speech: synthesis failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech: empty audio payload from synthesis service")
	}
	return audio, nil
}

// Voice is one available synthesis voice.
type Voice struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	PreviewURL string            `json:"preview_url"`
	Labels     map[string]string `json:"labels"`
}

type voicesResponse struct {
	Voices []struct {
		VoiceID    string            `json:"voice_id"`
		Name       string            `json:"name"`
		PreviewURL string            `json:"preview_url"`
		Labels     map[string]string `json:"labels"`
	} `json:"voices"`
}

// Voices lists the voices available to the configured API key.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	req, err := c.base.NewRequest(ctx, http.MethodGet, "/v1/voices", nil, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("speech: listing voices failed with status %d", resp.StatusCode)
	}

	var body voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]Voice, 0, len(body.Voices))
	for _, v := range body.Voices {
		out = append(out, Voice{
			ID:         v.VoiceID,
			Name:       v.Name,
			PreviewURL: v.PreviewURL,
			Labels:     v.Labels,
		})
	}
	return out, nil
}

// SanitizeText removes control characters (U+0000-U+001F and U+007F-U+009F)
// that corrupt downstream synthesis. Printable text passes unchanged.
func SanitizeText(text string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, text)
}
