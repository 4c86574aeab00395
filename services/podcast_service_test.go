package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"podforge/dto"
	"podforge/models"
	"podforge/repositories"
	"podforge/services"
)

// memoryStore is an in-memory PodcastStore for service tests. The mutex
// mirrors the real repository's atomicity: each IncrementStat call is one
// indivisible counter bump.
type memoryStore struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Podcast
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: map[primitive.ObjectID]*models.Podcast{}}
}

func (s *memoryStore) Insert(_ context.Context, p *models.Podcast) (*models.Podcast, error) {
	if p.Topic == "" || p.Script == "" || p.AudioURL == "" {
		return nil, repositories.ErrMissingFields
	}
	p.ID = primitive.NewObjectID()
	s.byID[p.ID] = p
	return p, nil
}

func (s *memoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Podcast, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return p, nil
}

func (s *memoryStore) ListRecent(context.Context, repositories.ListOptions) ([]models.Podcast, error) {
	out := make([]models.Podcast, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memoryStore) ListTrending(ctx context.Context, _ int) ([]models.Podcast, error) {
	return s.ListRecent(ctx, repositories.ListOptions{})
}

func (s *memoryStore) IncrementStat(_ context.Context, id primitive.ObjectID, kind models.StatKind) (*models.Podcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	switch kind {
	case models.StatView:
		p.Stats.Views++
	case models.StatPlay:
		p.Stats.Plays++
	case models.StatLike:
		p.Stats.Likes++
	case models.StatShare:
		p.Stats.Shares++
	}
	cp := *p
	return &cp, nil
}

func TestGetByIDUnknownAndMalformed(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = svc.GetByID(ctx, "not-a-hex-id")
	assert.ErrorIs(t, err, services.ErrNotFound, "malformed ids read as not found")
}

func TestCreateValidation(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)

	_, err := svc.Create(context.Background(), services.CreatePodcastInput{
		Topic:   "missing pieces",
		Script:  "a script",
		VoiceID: "v1",
	})
	assert.ErrorIs(t, err, services.ErrMissingFields)
}

func TestCreateDerivesThumbnail(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)

	p, err := svc.Create(context.Background(), services.CreatePodcastInput{
		Topic:    "urban beekeeping",
		Script:   "a script about bees",
		AudioURL: "https://cdn.example.com/a.mp3",
		VoiceID:  "v1",
		Images: []models.PodcastImage{
			{URL: "https://cdn.example.com/1.png", Prompt: "bees"},
			{URL: "https://cdn.example.com/2.png", Prompt: "hives"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, p.ThumbnailURL)
	assert.Equal(t, "https://cdn.example.com/1.png", *p.ThumbnailURL)
}

func TestCreateWithoutImages(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)

	p, err := svc.Create(context.Background(), services.CreatePodcastInput{
		Topic:    "desert ecology",
		Script:   "a script",
		AudioURL: "https://cdn.example.com/a.mp3",
		VoiceID:  "v1",
	})
	require.NoError(t, err)
	assert.Nil(t, p.ThumbnailURL)
	assert.NotNil(t, p.Images, "images serialize as an empty array, not null")
	assert.Empty(t, p.Images)
}

func TestCreateNormalizesVoiceSettings(t *testing.T) {
	store := newMemoryStore()
	svc := services.NewPodcastService(store, nil)

	p, err := svc.Create(context.Background(), services.CreatePodcastInput{
		Topic:         "night trains",
		Script:        "a script",
		AudioURL:      "https://cdn.example.com/a.mp3",
		VoiceID:       "v1",
		VoiceSettings: models.VoiceSettings{Style: 0.2},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.VoiceSettings.Stability)
	assert.Equal(t, 0.5, p.VoiceSettings.SimilarityBoost)
	assert.Equal(t, 0.2, p.VoiceSettings.Style)
}

func TestIncrementStat(t *testing.T) {
	store := newMemoryStore()
	svc := services.NewPodcastService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, services.CreatePodcastInput{
		Topic:    "glassblowing",
		Script:   "a script",
		AudioURL: "https://cdn.example.com/a.mp3",
		VoiceID:  "v1",
	})
	require.NoError(t, err)

	p, err := svc.IncrementStat(ctx, created.ID, "play")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Plays)

	p, err = svc.IncrementStat(ctx, created.ID, "play")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Plays)
	assert.Zero(t, p.Views, "other counters stay untouched")
}

func TestIncrementStatMovesExactlyOneCounter(t *testing.T) {
	counters := func(p *dto.PodcastDTO) map[string]int64 {
		return map[string]int64{
			"view":  p.Views,
			"play":  p.Plays,
			"like":  p.Likes,
			"share": p.Shares,
		}
	}

	for _, kind := range []string{"view", "play", "like", "share"} {
		t.Run(kind, func(t *testing.T) {
			svc := services.NewPodcastService(newMemoryStore(), nil)
			ctx := context.Background()

			created, err := svc.Create(ctx, services.CreatePodcastInput{
				Topic:    "kite design",
				Script:   "a script",
				AudioURL: "https://cdn.example.com/a.mp3",
				VoiceID:  "v1",
			})
			require.NoError(t, err)

			p, err := svc.IncrementStat(ctx, created.ID, kind)
			require.NoError(t, err)

			for name, value := range counters(p) {
				if name == kind {
					assert.Equal(t, int64(1), value)
				} else {
					assert.Zero(t, value, "%s must not move when %s is bumped", name, kind)
				}
			}
		})
	}
}

func TestIncrementStatConcurrentNoLostUpdates(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, services.CreatePodcastInput{
		Topic:    "street food",
		Script:   "a script",
		AudioURL: "https://cdn.example.com/a.mp3",
		VoiceID:  "v1",
	})
	require.NoError(t, err)

	const bumps = 50
	var wg sync.WaitGroup
	for i := 0; i < bumps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.IncrementStat(ctx, created.ID, "like")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(bumps), p.Likes, "every concurrent bump must land")
}

func TestIncrementStatRejectsUnknownKind(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)

	_, err := svc.IncrementStat(context.Background(), primitive.NewObjectID().Hex(), "applause")
	assert.ErrorIs(t, err, services.ErrInvalidStatKind)
}

func TestIncrementStatUnknownID(t *testing.T) {
	svc := services.NewPodcastService(newMemoryStore(), nil)

	_, err := svc.IncrementStat(context.Background(), primitive.NewObjectID().Hex(), "like")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
