package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookingrisk/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFormStateRepository struct {
	mock.Mock
}

func (m *MockFormStateRepository) GetState(ctx context.Context, sessionID string) (*models.FormState, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FormState), args.Error(1)
}

func (m *MockFormStateRepository) SetState(ctx context.Context, state *models.FormState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockFormStateRepository) ClearState(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockFormStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFormStateService_LoadInput(t *testing.T) {
	mockRepo := new(MockFormStateRepository)
	logger := zerolog.Nop()
	s := NewFormStateService(mockRepo, &logger)
	ctx := context.Background()
	sessionID := "session-1"

	t.Run("Stored", func(t *testing.T) {
		stored := models.DefaultInput()
		stored.LeadTime = 200
		stored.DepositType = "Non Refund"
		mockRepo.On("GetState", ctx, sessionID).Return(&models.FormState{SessionID: sessionID, Input: stored}, nil).Once()

		in := s.LoadInput(ctx, sessionID)
		assert.Equal(t, stored, in)
	})

	t.Run("StoredOutOfRangeIsClamped", func(t *testing.T) {
		stored := models.DefaultInput()
		stored.Adults = 99
		mockRepo.On("GetState", ctx, sessionID).Return(&models.FormState{SessionID: sessionID, Input: stored}, nil).Once()

		in := s.LoadInput(ctx, sessionID)
		assert.Equal(t, 10, in.Adults)
	})

	t.Run("Missing", func(t *testing.T) {
		mockRepo.On("GetState", ctx, sessionID).Return(nil, nil).Once()
		assert.Equal(t, models.DefaultInput(), s.LoadInput(ctx, sessionID))
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo.On("GetState", ctx, sessionID).Return(nil, errors.New("redis down")).Once()
		assert.Equal(t, models.DefaultInput(), s.LoadInput(ctx, sessionID))
	})

	t.Run("NoSession", func(t *testing.T) {
		assert.Equal(t, models.DefaultInput(), s.LoadInput(ctx, ""))
	})

	mockRepo.AssertExpectations(t)
}

func TestFormStateService_SaveInput(t *testing.T) {
	mockRepo := new(MockFormStateRepository)
	logger := zerolog.Nop()
	s := NewFormStateService(mockRepo, &logger)
	ctx := context.Background()

	in := models.DefaultInput()
	in.Children = 2

	t.Run("Success", func(t *testing.T) {
		mockRepo.On("SetState", ctx, mock.MatchedBy(func(state *models.FormState) bool {
			return state.SessionID == "s1" && state.Input.Children == 2 && !state.UpdatedAt.IsZero()
		})).Return(nil).Once()

		assert.NoError(t, s.SaveInput(ctx, "s1", in))
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo.On("SetState", ctx, mock.Anything).Return(errors.New("redis error")).Once()
		assert.Error(t, s.SaveInput(ctx, "s1", in))
	})

	mockRepo.AssertExpectations(t)
}

func TestFormStateService_Reset(t *testing.T) {
	mockRepo := new(MockFormStateRepository)
	s := NewFormStateService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("ClearState", ctx, "s1").Return(nil).Once()
	assert.NoError(t, s.Reset(ctx, "s1"))
	mockRepo.AssertExpectations(t)
}

func TestFormStateService_NilRepository(t *testing.T) {
	s := NewFormStateService(nil, nil)
	ctx := context.Background()

	assert.Equal(t, models.DefaultInput(), s.LoadInput(ctx, "s1"))
	assert.NoError(t, s.SaveInput(ctx, "s1", models.DefaultInput()))
	assert.NoError(t, s.Reset(ctx, "s1"))
}
