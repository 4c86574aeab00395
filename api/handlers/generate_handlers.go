package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"podforge/dto"
	"podforge/models"
	"podforge/pipeline"
	"podforge/scriptwriter"
	"podforge/speech"
)

// PodcastGenerator runs the full generation pipeline.
type PodcastGenerator interface {
	Generate(ctx context.Context, req pipeline.Request) (*models.Podcast, error)
}

// VoiceLister exposes the available synthesis voices.
type VoiceLister interface {
	Voices(ctx context.Context) ([]speech.Voice, error)
}

// generateRequest is the camelCase wire form of a full pipeline run.
type generateRequest struct {
	Topic         string `json:"topic"`
	VoiceID       string `json:"voiceId"`
	VoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarityBoost"`
		Style           float64 `json:"style"`
	} `json:"voiceSettings"`
	Language          string `json:"language"`
	AdditionalContext string `json:"additionalContext"`
}

// GeneratePodcastHandler godoc
// @Summary      Generate a podcast end to end
// @Description  Writes a script, synthesizes audio, uploads media and stores the result
// @Tags         generate
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]dto.PodcastDTO
// @Failure      400  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Router       /generate-podcast [post]
func GeneratePodcastHandler(gen PodcastGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body generateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}

		p, err := gen.Generate(c.Request.Context(), pipeline.Request{
			Topic:   body.Topic,
			VoiceID: body.VoiceID,
			VoiceSettings: models.VoiceSettings{
				Stability:       body.VoiceSettings.Stability,
				SimilarityBoost: body.VoiceSettings.SimilarityBoost,
				Style:           body.VoiceSettings.Style,
			},
			Language:          body.Language,
			AdditionalContext: body.AdditionalContext,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"podcast": dto.NewPodcastDTO(*p)})
	}
}

// GenerateScriptHandler godoc
// @Summary      Generate only the script
// @Tags         generate
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /generate-script [post]
func GenerateScriptHandler(scripts pipeline.ScriptGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Topic             string `json:"topic"`
			Language          string `json:"language"`
			AdditionalContext string `json:"additionalContext"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if body.Topic == "" {
			writeError(c, pipeline.ErrMissingTopic)
			return
		}

		script, err := scripts.Generate(c.Request.Context(), scriptwriter.ScriptRequest{
			Topic:             body.Topic,
			Language:          body.Language,
			AdditionalContext: body.AdditionalContext,
		})
		if err != nil {
			writeError(c, &pipeline.UpstreamError{Step: pipeline.StepScript, Err: err})
			return
		}
		c.JSON(http.StatusOK, gin.H{"script": script.Text, "model": script.ModelName})
	}
}

// GenerateAudioHandler synthesizes the supplied script and uploads the audio,
// returning its public URL.
//
// GenerateAudioHandler godoc
// @Summary      Synthesize and upload audio for a script
// @Tags         generate
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /generate-audio [post]
func GenerateAudioHandler(synth pipeline.SpeechSynthesizer, media pipeline.MediaStore, defaultVoiceID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Script        string `json:"script"`
			VoiceID       string `json:"voiceId"`
			VoiceSettings struct {
				Stability       float64 `json:"stability"`
				SimilarityBoost float64 `json:"similarityBoost"`
				Style           float64 `json:"style"`
			} `json:"voiceSettings"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if body.Script == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "script is required"})
			return
		}

		voiceID := body.VoiceID
		if voiceID == "" {
			voiceID = defaultVoiceID
		}
		settings := models.VoiceSettings{
			Stability:       body.VoiceSettings.Stability,
			SimilarityBoost: body.VoiceSettings.SimilarityBoost,
			Style:           body.VoiceSettings.Style,
		}.Normalized()

		audio, err := synth.Synthesize(c.Request.Context(), body.Script, voiceID, settings)
		if err != nil {
			writeError(c, &pipeline.UpstreamError{Step: pipeline.StepSynthesis, Err: err})
			return
		}
		url, err := media.UploadAudio(c.Request.Context(), audio)
		if err != nil {
			writeError(c, &pipeline.UpstreamError{Step: pipeline.StepAudioUpload, Err: err})
			return
		}
		c.JSON(http.StatusOK, gin.H{"audio_url": url})
	}
}

// GenerateImagePromptsHandler godoc
// @Summary      Derive timed image prompts from a script
// @Tags         generate
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string][]scriptwriter.ImagePrompt
// @Failure      400  {object}  map[string]string
// @Router       /generate-image-prompts [post]
func GenerateImagePromptsHandler(scripts pipeline.ScriptGenerator, defaultCount int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Script string `json:"script"`
			Count  int    `json:"count"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if body.Script == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "script is required"})
			return
		}
		count := body.Count
		if count <= 0 {
			count = defaultCount
		}

		prompts, err := scripts.SuggestImagePrompts(c.Request.Context(), body.Script, count)
		if err != nil {
			writeError(c, &pipeline.UpstreamError{Step: pipeline.StepImagePrompts, Err: err})
			return
		}
		c.JSON(http.StatusOK, gin.H{"prompts": prompts})
	}
}

// GenerateImagesHandler generates and uploads one image per supplied prompt.
// Unlike the full pipeline, a single failure here fails the whole request:
// the caller asked for these exact prompts.
//
// GenerateImagesHandler godoc
// @Summary      Generate and upload images for prompts
// @Tags         generate
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string][]models.PodcastImage
// @Failure      400  {object}  map[string]string
// @Router       /generate-images [post]
func GenerateImagesHandler(images pipeline.ImageGenerator, media pipeline.MediaStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Prompts []struct {
				Prompt        string  `json:"prompt"`
				TimingSeconds float64 `json:"timing"`
			} `json:"prompts"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
			return
		}
		if len(body.Prompts) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one prompt is required"})
			return
		}

		out := make([]models.PodcastImage, 0, len(body.Prompts))
		for _, p := range body.Prompts {
			img, err := images.Generate(c.Request.Context(), p.Prompt)
			if err != nil {
				writeError(c, &pipeline.UpstreamError{Step: pipeline.StepImage, Err: err})
				return
			}
			url, err := media.UploadImage(c.Request.Context(), img.Bytes, img.MIMEType)
			if err != nil {
				writeError(c, &pipeline.UpstreamError{Step: pipeline.StepImage, Err: err})
				return
			}
			out = append(out, models.PodcastImage{
				URL:           url,
				Prompt:        p.Prompt,
				TimingSeconds: p.TimingSeconds,
			})
		}
		c.JSON(http.StatusOK, gin.H{"images": out})
	}
}

// VoicesHandler godoc
// @Summary      List available synthesis voices
// @Tags         generate
// @Produce      json
// @Success      200  {object}  map[string][]speech.Voice
// @Router       /voices [get]
func VoicesHandler(voices VoiceLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		vs, err := voices.Voices(c.Request.Context())
		if err != nil {
			writeError(c, &pipeline.UpstreamError{Step: pipeline.StepSynthesis, Err: err})
			return
		}
		c.JSON(http.StatusOK, gin.H{"voices": vs})
	}
}
