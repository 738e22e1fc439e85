package service

import (
	"context"
	"time"

	"bookingrisk/internal/domain"
	"bookingrisk/internal/models"

	"github.com/rs/zerolog"
)

// FormStateService keeps the form values of each browser session between
// page loads, the way a UI runtime keeps widget state.
type FormStateService struct {
	stateRepo domain.FormStateRepository
	logger    *zerolog.Logger
}

func NewFormStateService(stateRepo domain.FormStateRepository, logger *zerolog.Logger) *FormStateService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FormStateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

// LoadInput returns the session's last input. Unknown sessions and store
// failures yield the form defaults.
func (s *FormStateService) LoadInput(ctx context.Context, sessionID string) models.BookingInput {
	if s.stateRepo == nil || sessionID == "" {
		return models.DefaultInput()
	}

	state, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get form state")
		return models.DefaultInput()
	}
	if state == nil {
		return models.DefaultInput()
	}

	in := state.Input
	in.Clamp()
	return in
}

func (s *FormStateService) SaveInput(ctx context.Context, sessionID string, in models.BookingInput) error {
	if s.stateRepo == nil || sessionID == "" {
		return nil
	}
	return s.stateRepo.SetState(ctx, &models.FormState{
		SessionID: sessionID,
		Input:     in,
		UpdatedAt: time.Now(),
	})
}

func (s *FormStateService) Reset(ctx context.Context, sessionID string) error {
	if s.stateRepo == nil || sessionID == "" {
		return nil
	}
	return s.stateRepo.ClearState(ctx, sessionID)
}
