package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookingrisk/internal/domain"
	"bookingrisk/internal/events"
	"bookingrisk/internal/metrics"
	"bookingrisk/internal/models"
	"bookingrisk/internal/pipeline"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// PredictionService turns form input into a rendered cancellation verdict.
type PredictionService struct {
	classifier domain.Classifier
	eventBus   domain.EventPublisher
	cache      *lru.Cache[string, pipeline.Result]
	logger     *zerolog.Logger
	now        func() time.Time
}

// NewPredictionService wires a classifier. cacheSize <= 0 disables the result cache.
func NewPredictionService(classifier domain.Classifier, eventBus domain.EventPublisher, cacheSize int, logger *zerolog.Logger) (*PredictionService, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	s := &PredictionService{
		classifier: classifier,
		eventBus:   eventBus,
		logger:     logger,
		now:        time.Now,
	}
	if cacheSize > 0 {
		cache, err := lru.New[string, pipeline.Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create prediction cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Predict clamps in to the form domains, builds the booking record and runs
// it through the classifier. Equal inputs always yield equal label and
// probability.
func (s *PredictionService) Predict(ctx context.Context, in models.BookingInput) (*models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in.Clamp()
	rec := models.NewBookingRecord(in)

	if err := s.classifier.CheckSchema(models.RecordColumns()); err != nil {
		s.fail(rec, "schema_mismatch", err)
		return nil, fmt.Errorf("predict: %w", err)
	}

	start := time.Now()
	key := rec.Key()
	result, hit := s.lookup(key)
	if !hit {
		var err error
		result, err = s.classifier.Predict(rec)
		if err != nil {
			reason := "inference"
			if errors.Is(err, pipeline.ErrSchemaMismatch) {
				reason = "schema_mismatch"
			}
			s.fail(rec, reason, err)
			return nil, fmt.Errorf("predict: %w", err)
		}
		if s.cache != nil {
			s.cache.Add(key, result)
		}
	}

	p := BuildPrediction(result.Label, result.Probability)
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()

	metrics.ObservePrediction(p.Verdict, p.Probability, time.Since(start))
	s.logger.Debug().
		Str("prediction_id", p.ID).
		Int("label", p.Label).
		Float64("probability", p.Probability).
		Bool("cache_hit", hit).
		Msg("prediction made")

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventPredictionMade, events.PredictionEventPayload{
			PredictionID: p.ID,
			Label:        p.Label,
			Probability:  p.Probability,
			Verdict:      p.Verdict,
			CacheHit:     hit,
			LeadTime:     rec.LeadTime,
			DepositType:  rec.DepositType,
		})
	}

	return &p, nil
}

func (s *PredictionService) lookup(key string) (pipeline.Result, bool) {
	if s.cache == nil {
		return pipeline.Result{}, false
	}
	result, ok := s.cache.Get(key)
	metrics.IncCache(ok)
	return result, ok
}

func (s *PredictionService) fail(rec models.BookingRecord, reason string, err error) {
	metrics.IncPredictionError(reason)
	s.logger.Error().Err(err).Str("reason", reason).Msg("prediction failed")

	if s.eventBus != nil {
		_ = s.eventBus.PublishJSON(events.EventPredictionFailed, events.PredictionEventPayload{
			LeadTime:    rec.LeadTime,
			DepositType: rec.DepositType,
			Error:       err.Error(),
		})
	}
}

// BuildPrediction renders a label and cancellation probability into one of
// the two result messages.
func BuildPrediction(label int, probability float64) models.Prediction {
	p := models.Prediction{
		Label:       label,
		Probability: probability,
		Percent:     FormatProbability(probability),
	}

	headline := models.MessageHonored
	p.Verdict, p.Style = models.VerdictHonored, models.StyleSuccess
	if label == models.LabelCanceled {
		headline = models.MessageCanceled
		p.Verdict, p.Style = models.VerdictCanceled, models.StyleError
	}
	p.Message = fmt.Sprintf("%s\n\nCancellation Probability: %s", headline, p.Percent)
	return p
}

// FormatProbability formats p as a percentage with two decimals, e.g. "73.42%".
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p*100)
}
