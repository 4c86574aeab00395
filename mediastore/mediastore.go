package mediastore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
	supabase "github.com/supabase-community/supabase-go"

	"podforge/config"
)

// Store uploads generated media to a public Supabase storage bucket and
// hands back stable public URLs. Object keys are UUIDs under a per-kind
// folder, so uploads never collide.
type Store struct {
	sb          *supabase.Client
	bucket      string
	audioFolder string
	imageFolder string
}

// New constructs a Store from application config.
func New(cfg config.AppConfig) (*Store, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("mediastore: initialize supabase client: %w", err)
	}

	s := &Store{
		sb:          client,
		bucket:      cfg.Storage.Bucket,
		audioFolder: cfg.Storage.AudioFolder,
		imageFolder: cfg.Storage.ImageFolder,
	}
	if s.bucket == "" {
		s.bucket = "podcasts"
	}
	if s.audioFolder == "" {
		s.audioFolder = "podcast-audio"
	}
	if s.imageFolder == "" {
		s.imageFolder = "podcast-thumbnails"
	}
	return s, nil
}

// UploadAudio stores an audio/mpeg payload and returns its public URL.
func (s *Store) UploadAudio(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("mediastore: refusing to upload empty audio payload")
	}
	key := fmt.Sprintf("%s/%s.mp3", s.audioFolder, uuid.NewString())
	return s.upload(ctx, key, data, "audio/mpeg")
}

// UploadImage stores an image payload and returns its public URL.
func (s *Store) UploadImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("mediastore: refusing to upload empty image payload")
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	key := fmt.Sprintf("%s/%s%s", s.imageFolder, uuid.NewString(), extensionFor(mimeType))
	return s.upload(ctx, key, data, mimeType)
}

func (s *Store) upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	ct := contentType
	if _, err := s.sb.Storage.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &ct,
	}); err != nil {
		return "", fmt.Errorf("mediastore: upload %s: %w", key, err)
	}

	res := s.sb.Storage.GetPublicUrl(s.bucket, key)
	if res.SignedURL == "" {
		return "", fmt.Errorf("mediastore: no public URL for %s", key)
	}
	return res.SignedURL, nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
