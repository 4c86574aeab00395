package imagegen

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"podforge/config"
)

// ErrNoImage is returned when the service answers without image data.
var ErrNoImage = errors.New("imagegen: service returned no image")

// Image is one generated picture as raw bytes.
type Image struct {
	Bytes    []byte
	MIMEType string
}

// Generator produces square podcast visuals through the Imagen API.
type Generator struct {
	client *genai.Client
	model  string
}

// New constructs a Generator from application config.
func New(ctx context.Context, cfg config.AppConfig) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiApiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: cfg.ImageModel}, nil
}

// Generate requests one square (1:1, 1024px) image for the prompt and
// returns its bytes.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Image, error) {
	resp, err := g.client.Models.GenerateImages(
		ctx,
		g.model,
		prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
			AspectRatio:    "1:1",
		},
	)
	if err != nil {
		return nil, err
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, ErrNoImage
	}

	img := resp.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Bytes: img.ImageBytes, MIMEType: mime}, nil
}
