package scriptwriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"podforge/config"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("scriptwriter: model returned an empty completion")

const SCRIPT_SYSTEM_INSTRUCTION = `
You are an expert podcast script writer who creates engaging, well-structured content that flows naturally when spoken.
`

const PROMPTS_SYSTEM_INSTRUCTION = `
You are an expert at creating visual descriptions for podcast content.
The response MUST be a valid JSON array of objects, each with two keys:
1.  prompt: an image description suited to an image-generation model.
2.  timing: the display offset within the podcast audio, in seconds.
You MUST NOT wrap the JSON output in a markdown code block. The response should contain ONLY the raw JSON string.
`

// ScriptRequest is the input of one script generation call.
type ScriptRequest struct {
	Topic             string
	AdditionalContext string
	Language          string
}

// Script is a generated podcast script and the model that produced it.
type Script struct {
	Text      string
	ModelName string
}

// ImagePrompt is one suggested visual with its display offset.
type ImagePrompt struct {
	Prompt        string  `json:"prompt"`
	TimingSeconds float64 `json:"timing"`
}

// Writer generates podcast scripts and image prompts through the Gemini API.
type Writer struct {
	client *genai.Client
	model  string
}

// New constructs a Writer from application config.
func New(ctx context.Context, cfg config.AppConfig) (*Writer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiApiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Writer{client: client, model: cfg.ScriptModel}, nil
}

// ModelName returns the configured generation model identifier.
func (w *Writer) ModelName() string { return w.model }

// Generate produces a podcast script for the requested topic. An empty
// completion is an error; retries are the caller's decision.
func (w *Writer) Generate(ctx context.Context, req ScriptRequest) (*Script, error) {
	result, err := w.client.Models.GenerateContent(
		ctx,
		w.model,
		genai.Text(buildScriptPrompt(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SCRIPT_SYSTEM_INSTRUCTION}}},
			Temperature:       genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, ErrEmptyCompletion
	}
	return &Script{Text: text, ModelName: w.model}, nil
}

// SuggestImagePrompts asks the model for n timed image descriptions covering
// the given script.
func (w *Writer) SuggestImagePrompts(ctx context.Context, script string, n int) ([]ImagePrompt, error) {
	if n <= 0 {
		n = 3
	}
	result, err := w.client.Models.GenerateContent(
		ctx,
		w.model,
		genai.Text(buildPromptsPrompt(script, n)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: PROMPTS_SYSTEM_INSTRUCTION}}},
			Temperature:       genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return nil, err
	}
	return parseImagePrompts(result.Text())
}

func buildScriptPrompt(req ScriptRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create an engaging podcast script about %s.", req.Topic)
	if req.AdditionalContext != "" {
		fmt.Fprintf(&b, " Consider this additional context: %s.", req.AdditionalContext)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, " Write the script in %s.", req.Language)
	}
	b.WriteString(`

The script should:
1. Have a clear introduction that hooks the listener
2. Present information in a conversational, engaging way
3. Include natural transitions between topics
4. End with a strong conclusion
5. Be around 500-800 words
6. Use a friendly, informative tone

Format the script with clear paragraph breaks and natural pauses.`)
	return b.String()
}

func buildPromptsPrompt(script string, n int) string {
	return fmt.Sprintf(`Given this podcast script, generate %d image descriptions that would work well as visual accompaniments.
The descriptions should:
1. Capture key moments or themes from the script
2. Be visually interesting and varied
3. Be spaced throughout the podcast duration

Script:
%s`, n, script)
}

// parseImagePrompts decodes the model's JSON array. Markdown fences are
// tolerated even though the system instruction forbids them.
func parseImagePrompts(raw string) ([]ImagePrompt, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var prompts []ImagePrompt
	if err := json.Unmarshal([]byte(cleaned), &prompts); err != nil {
		return nil, fmt.Errorf("scriptwriter: malformed image prompts response: %w", err)
	}
	if len(prompts) == 0 {
		return nil, ErrEmptyCompletion
	}
	return prompts, nil
}
