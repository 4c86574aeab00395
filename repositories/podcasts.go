package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"podforge/models"
)

// ErrMissingFields is returned by Insert when a mandatory field is empty.
var ErrMissingFields = errors.New("podcast requires non-empty topic, script and audio_url")

type PodcastRepository struct {
	col *mongo.Collection
}

func NewPodcastRepository(db *mongo.Database) *PodcastRepository {
	return &PodcastRepository{col: db.Collection("podcasts")}
}

// Insert stores a new podcast document, assigning timestamps. The record is
// written in one InsertOne call; there is no partial-write path.
func (r *PodcastRepository) Insert(ctx context.Context, p *models.Podcast) (*models.Podcast, error) {
	if p.Topic == "" || p.Script == "" || p.AudioURL == "" {
		return nil, ErrMissingFields
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []models.PodcastImage{}
	}

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return p, nil
}

// FindByID returns a podcast by its ObjectID.
func (r *PodcastRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Podcast, error) {
	var p models.Podcast
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

type ListOptions struct {
	Page     int
	PageSize int
}

func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize <= 0 {
		o.PageSize = 20
	}
	if o.PageSize > 100 {
		o.PageSize = 100
	}
	return o
}

// ListRecent returns podcasts sorted by creation time, newest first.
func (r *PodcastRepository) ListRecent(ctx context.Context, opt ListOptions) ([]models.Podcast, error) {
	opt = opt.normalized()
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((opt.Page - 1) * opt.PageSize)).
		SetLimit(int64(opt.PageSize))

	cur, err := r.col.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Podcast, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// trendingSort orders by plays desc, breaking ties by likes desc, then by
// newest first. Matches the compound idx_trending index.
var trendingSort = bson.D{
	{Key: "stats.plays", Value: -1},
	{Key: "stats.likes", Value: -1},
	{Key: "created_at", Value: -1},
}

// ListTrending returns podcasts in trendingSort order.
func (r *PodcastRepository) ListTrending(ctx context.Context, limit int) ([]models.Podcast, error) {
	if limit <= 0 {
		limit = 12
	}
	findOpts := options.Find().
		SetSort(trendingSort).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Podcast, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IncrementStat atomically increments exactly one engagement counter and
// returns the updated document. Returns mongo.ErrNoDocuments when the id
// does not resolve.
func (r *PodcastRepository) IncrementStat(ctx context.Context, id primitive.ObjectID, kind models.StatKind) (*models.Podcast, error) {
	field := kind.Field()
	if field == "" {
		return nil, errors.New("unknown stat kind: " + string(kind))
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := incrementUpdate(field, time.Now())

	var p models.Podcast
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// incrementUpdate builds the atomic update for one counter bump: a single
// $inc on the counter field plus the updated_at refresh. No other field is
// touched, so concurrent bumps never lose updates.
func incrementUpdate(field string, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updated_at": now},
	}
}
