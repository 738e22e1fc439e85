package domain

import (
	"context"
	"time"

	"bookingrisk/internal/models"
	"bookingrisk/internal/pipeline"
)

// Classifier is a fitted, read-only model. *pipeline.Pipeline implements it.
type Classifier interface {
	CheckSchema(columns []string) error
	Predict(rec models.BookingRecord) (pipeline.Result, error)
}

type FormStateRepository interface {
	GetState(ctx context.Context, sessionID string) (*models.FormState, error)
	SetState(ctx context.Context, state *models.FormState) error
	ClearState(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type PredictionService interface {
	Predict(ctx context.Context, in models.BookingInput) (*models.Prediction, error)
}

// FormStateStore keeps the form values of a browser session.
type FormStateStore interface {
	LoadInput(ctx context.Context, sessionID string) models.BookingInput
	SaveInput(ctx context.Context, sessionID string, in models.BookingInput) error
	Reset(ctx context.Context, sessionID string) error
}

// RateLimiter counts calls per key in a fixed window shared between replicas.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
