package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"podforge/models"
)

type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

// Insert stores a usage log entry for one LLM call.
func (r *AILogRepository) Insert(ctx context.Context, l models.AILog) (*mongo.InsertOneResult, error) {
	if l.RequestedAt.IsZero() {
		l.RequestedAt = time.Now()
	}
	if l.CompletedAt.IsZero() {
		l.CompletedAt = time.Now()
	}
	return r.col.InsertOne(ctx, l)
}
