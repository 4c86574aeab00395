package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podforge/imagegen"
	"podforge/models"
	"podforge/scriptwriter"
)

type stubScripts struct {
	scriptErr  error
	promptsErr error
	prompts    []scriptwriter.ImagePrompt
	calls      int
}

func (s *stubScripts) Generate(_ context.Context, req scriptwriter.ScriptRequest) (*scriptwriter.Script, error) {
	s.calls++
	if s.scriptErr != nil {
		return nil, s.scriptErr
	}
	return &scriptwriter.Script{Text: "Welcome to a show about " + req.Topic, ModelName: "test-model"}, nil
}

func (s *stubScripts) SuggestImagePrompts(context.Context, string, int) ([]scriptwriter.ImagePrompt, error) {
	if s.promptsErr != nil {
		return nil, s.promptsErr
	}
	return s.prompts, nil
}

type stubSpeech struct {
	err   error
	calls int
}

func (s *stubSpeech) Synthesize(_ context.Context, text, voiceID string, _ models.VoiceSettings) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + voiceID + ":" + text[:5]), nil
}

type stubImages struct {
	// failOn holds prompts whose generation should fail.
	failOn map[string]bool
}

func (s *stubImages) Generate(_ context.Context, prompt string) (*imagegen.Image, error) {
	if s.failOn[prompt] {
		return nil, errors.New("image service unavailable")
	}
	return &imagegen.Image{Bytes: []byte("png:" + prompt), MIMEType: "image/png"}, nil
}

type stubMedia struct {
	audioErr error
}

func (s *stubMedia) UploadAudio(_ context.Context, data []byte) (string, error) {
	if s.audioErr != nil {
		return "", s.audioErr
	}
	return "https://cdn.example.com/audio/" + fmt.Sprint(len(data)) + ".mp3", nil
}

func (s *stubMedia) UploadImage(_ context.Context, data []byte, _ string) (string, error) {
	return "https://cdn.example.com/images/" + string(data[4:]) + ".png", nil
}

type stubStore struct {
	inserted []*models.Podcast
}

func (s *stubStore) Insert(_ context.Context, p *models.Podcast) (*models.Podcast, error) {
	s.inserted = append(s.inserted, p)
	return p, nil
}

type closedQuota struct{}

func (closedQuota) WaitAndReserve(context.Context) (bool, error) { return false, nil }

func newTestDeps() (Deps, *stubScripts, *stubSpeech, *stubMedia, *stubStore) {
	scripts := &stubScripts{prompts: []scriptwriter.ImagePrompt{
		{Prompt: "a", TimingSeconds: 0},
		{Prompt: "b", TimingSeconds: 30},
		{Prompt: "c", TimingSeconds: 60},
	}}
	speech := &stubSpeech{}
	media := &stubMedia{}
	store := &stubStore{}
	return Deps{
		Scripts:        scripts,
		Speech:         speech,
		Images:         &stubImages{},
		Media:          media,
		Podcasts:       store,
		DefaultVoiceID: "default-voice",
		ImageCount:     3,
	}, scripts, speech, media, store
}

func TestGenerateSuccess(t *testing.T) {
	deps, _, _, _, store := newTestDeps()
	gen := NewGenerator(deps)

	p, err := gen.Generate(context.Background(), Request{Topic: "quantum computing"})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "quantum computing", p.Topic)
	assert.NotEmpty(t, p.Script)
	assert.NotEmpty(t, p.AudioURL)
	assert.Equal(t, "default-voice", p.VoiceID)
	assert.Equal(t, "test-model", p.ScriptModel)

	// All three prompts succeeded; the first image is the thumbnail.
	require.Len(t, p.Images, 3)
	require.NotNil(t, p.ThumbnailURL)
	assert.Equal(t, p.Images[0].URL, *p.ThumbnailURL)
	assert.Equal(t, []string{"a", "b", "c"}, []string{p.Images[0].Prompt, p.Images[1].Prompt, p.Images[2].Prompt})
}

func TestGenerateDefaultsVoiceSettings(t *testing.T) {
	deps, _, _, _, store := newTestDeps()
	gen := NewGenerator(deps)

	_, err := gen.Generate(context.Background(), Request{
		Topic:         "history of tea",
		VoiceSettings: models.VoiceSettings{Stability: 0.9},
	})
	require.NoError(t, err)

	got := store.inserted[0].VoiceSettings
	assert.Equal(t, 0.9, got.Stability)
	assert.Equal(t, 0.5, got.SimilarityBoost)
	assert.Equal(t, 0.5, got.Style)
}

func TestGenerateMissingTopic(t *testing.T) {
	deps, scripts, _, _, store := newTestDeps()
	gen := NewGenerator(deps)

	_, err := gen.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingTopic)
	assert.Zero(t, scripts.calls)
	assert.Empty(t, store.inserted)
}

func TestGenerateMandatoryStepFailures(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(deps *Deps, scripts *stubScripts, speech *stubSpeech, media *stubMedia)
		wantStep Step
	}{
		{
			name: "script generation fails",
			mutate: func(_ *Deps, scripts *stubScripts, _ *stubSpeech, _ *stubMedia) {
				scripts.scriptErr = errors.New("model overloaded")
			},
			wantStep: StepScript,
		},
		{
			name: "synthesis fails",
			mutate: func(_ *Deps, _ *stubScripts, speech *stubSpeech, _ *stubMedia) {
				speech.err = errors.New("voice not found")
			},
			wantStep: StepSynthesis,
		},
		{
			name: "audio upload fails",
			mutate: func(_ *Deps, _ *stubScripts, _ *stubSpeech, media *stubMedia) {
				media.audioErr = errors.New("bucket gone")
			},
			wantStep: StepAudioUpload,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			deps, scripts, speech, media, store := newTestDeps()
			testCase.mutate(&deps, scripts, speech, media)
			gen := NewGenerator(deps)

			_, err := gen.Generate(context.Background(), Request{Topic: "space weather"})
			require.Error(t, err)

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, testCase.wantStep, upstream.Step)
			assert.Empty(t, store.inserted, "a failed run must not persist anything")
		})
	}
}

func TestGeneratePartialImageFailure(t *testing.T) {
	deps, _, _, _, store := newTestDeps()
	deps.Images = &stubImages{failOn: map[string]bool{"b": true}}
	gen := NewGenerator(deps)

	p, err := gen.Generate(context.Background(), Request{Topic: "deep sea fish"})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "a", p.Images[0].Prompt)
	assert.Equal(t, "c", p.Images[1].Prompt)
	require.NotNil(t, p.ThumbnailURL)
	assert.Equal(t, p.Images[0].URL, *p.ThumbnailURL)
}

func TestGenerateAllImagesFail(t *testing.T) {
	deps, _, _, _, _ := newTestDeps()
	deps.Images = &stubImages{failOn: map[string]bool{"a": true, "b": true, "c": true}}
	gen := NewGenerator(deps)

	p, err := gen.Generate(context.Background(), Request{Topic: "volcanoes"})
	require.NoError(t, err, "image failures must not fail the run")

	assert.Empty(t, p.Images)
	assert.Nil(t, p.ThumbnailURL)
	assert.NotEmpty(t, p.AudioURL)
}

func TestGeneratePromptDerivationFallsBackToCoverArt(t *testing.T) {
	deps, scripts, _, _, _ := newTestDeps()
	scripts.promptsErr = errors.New("bad json")
	gen := NewGenerator(deps)

	p, err := gen.Generate(context.Background(), Request{Topic: "sourdough"})
	require.NoError(t, err)

	require.Len(t, p.Images, 1)
	assert.True(t, strings.Contains(p.Images[0].Prompt, "sourdough"))
	assert.Zero(t, p.Images[0].TimingSeconds)
}

func TestGenerateQuotaExhausted(t *testing.T) {
	deps, scripts, speech, _, store := newTestDeps()
	deps.Quota = closedQuota{}
	gen := NewGenerator(deps)

	_, err := gen.Generate(context.Background(), Request{Topic: "anything"})
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Zero(t, scripts.calls, "no vendor call once quota is spent")
	assert.Zero(t, speech.calls)
	assert.Empty(t, store.inserted)
}
