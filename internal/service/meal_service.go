package service

import (
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/utils"
	"context"
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type MealLogger interface {
	LogFood(ctx context.Context, payload model.MealPayload) (*model.MealRecord, error)
}

// MealService owns the meal form. The draft survives every failure and is
// cleared only once the upstream confirms the save.
type MealService struct {
	api       MealLogger
	auth      auth.AuthRequirer
	reloader  Reloader
	notifier  Notifier
	logger    *zap.Logger
	now       utils.Clock

	mu    sync.Mutex
	draft model.MealDraft
}

func NewMealService(api MealLogger, authRequirer auth.AuthRequirer, reloader Reloader, notifier Notifier, logger *zap.Logger) *MealService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealService{
		api:       api,
		auth:      authRequirer,
		reloader:  reloader,
		notifier:  notifier,
		logger:    logger.Named("meals"),
		now:       utils.SystemClock,
	}
}

func (s *MealService) Draft() model.MealDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Submit saves draft as a typed meal.
func (s *MealService) Submit(ctx context.Context, draft model.MealDraft) (*model.MealRecord, error) {
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		err := &model.ValidationError{Field: "name", Message: "Please enter a meal name"}
		s.notifier.Notify(err.Message)
		return nil, err
	}

	payload := model.MealPayload{
		Name:      name,
		Calories:  parseAmount(draft.Calories),
		Protein:   parseAmount(draft.Protein),
		Carbs:     parseAmount(draft.Carbs),
		Fat:       parseAmount(draft.Fat),
		Quantity:  "",
		Source:    "typed",
		CreatedAt: utils.FormatTimestamp(s.now()),
	}

	record, err := s.api.LogFood(ctx, payload)
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}

	s.logger.Info("meal logged", zap.String("name", record.Name), zap.Float64("calories", record.Calories))
	s.mu.Lock()
	s.draft.Reset()
	s.mu.Unlock()
	s.reloader.Reload(ctx)
	return record, nil
}

func (s *MealService) reportFailure(err error) {
	if errors.Is(err, model.ErrAuthRequired) {
		s.notifier.Notify("Please log in to save entries.")
		s.auth.RequireAuth()
		return
	}
	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		s.logger.Warn("meal request failed", zap.Error(err))
		s.notifier.Notify("Network error: " + netErr.Reason())
		return
	}
	s.logger.Warn("meal rejected", zap.Error(err))
	s.notifier.Notify("Error: " + model.RejectionText(err, "Failed to save meal"))
}

// parseAmount reads a form number, treating blanks and junk as zero.
func parseAmount(raw string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
