package repository

import (
	"context"
	"sync/atomic"
	"time"

	"bookingrisk/internal/domain"
	"bookingrisk/internal/models"

	"github.com/rs/zerolog"
)

// recheckInterval is how long the primary stays bypassed before it is tried again.
const recheckInterval = time.Minute

// FailoverFormStateRepository serves from primary until it fails, then from
// fallback, trying primary again once per recheckInterval.
type FailoverFormStateRepository struct {
	primary   domain.FormStateRepository
	fallback  domain.FormStateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverFormStateRepository(primary, fallback domain.FormStateRepository, logger *zerolog.Logger) *FailoverFormStateRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverFormStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Degraded reports whether calls are currently served by the fallback.
func (r *FailoverFormStateRepository) Degraded() bool {
	return r.isDown.Load()
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverFormStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recheckInterval
}

// record updates the health state after a call to primary.
func (r *FailoverFormStateRepository) record(op string, err error) {
	if err == nil {
		if r.isDown.CompareAndSwap(true, false) {
			r.logger.Info().Str("op", op).Msg("Primary form state repository recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary form state repository failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

func (r *FailoverFormStateRepository) GetState(ctx context.Context, sessionID string) (*models.FormState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetState(ctx, sessionID)
		r.record("get", err)
		// A miss on primary may still be a value written to fallback during an outage.
		if err == nil && state != nil {
			return state, nil
		}
	}
	return r.fallback.GetState(ctx, sessionID)
}

func (r *FailoverFormStateRepository) SetState(ctx context.Context, state *models.FormState) error {
	if r.usePrimary() {
		err := r.primary.SetState(ctx, state)
		r.record("set", err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.SetState(ctx, state)
}

func (r *FailoverFormStateRepository) ClearState(ctx context.Context, sessionID string) error {
	// Clear both stores so a value written during an outage does not resurface.
	fbErr := r.fallback.ClearState(ctx, sessionID)
	if r.usePrimary() {
		err := r.primary.ClearState(ctx, sessionID)
		r.record("clear", err)
		if err == nil {
			return nil
		}
	}
	return fbErr
}

func (r *FailoverFormStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		r.record("rate_limit", err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
