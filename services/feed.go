package services

import (
	"context"
	"time"

	"github.com/eduncan911/podcast"

	"podforge/models"
	"podforge/repositories"
)

const feedPageSize = 100

// FeedService renders the stored podcast catalog as an RSS feed so episodes
// can be consumed from regular podcast players.
type FeedService struct {
	store PodcastStore
}

func NewFeedService(store PodcastStore) *FeedService {
	return &FeedService{store: store}
}

// BuildFeed returns the catalog as RSS XML, newest episode first. siteURL is
// used as the channel link.
func (s *FeedService) BuildFeed(ctx context.Context, siteURL string) (string, error) {
	items, err := s.store.ListRecent(ctx, repositories.ListOptions{Page: 1, PageSize: feedPageSize})
	if err != nil {
		return "", err
	}

	now := time.Now()
	oldest := now
	if len(items) > 0 {
		oldest = items[len(items)-1].CreatedAt
	}

	feed := podcast.New("Podforge", siteURL, "AI-generated podcasts on any topic", &oldest, &now)

	for i := range items {
		p := items[i]
		item := podcast.Item{
			Title:       p.Topic,
			Description: episodeDescription(p),
			Link:        siteURL,
		}
		item.AddPubDate(&p.CreatedAt)
		item.AddEnclosure(p.AudioURL, podcast.MP3, 0)
		if p.ThumbnailURL != nil {
			item.AddImage(*p.ThumbnailURL)
		}
		if _, err := feed.AddItem(item); err != nil {
			return "", err
		}
	}

	return feed.String(), nil
}

func episodeDescription(p models.Podcast) string {
	const max = 400
	rs := []rune(p.Script)
	if len(rs) <= max {
		return p.Script
	}
	return string(rs[:max]) + "…"
}
