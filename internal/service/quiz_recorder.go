package service

import (
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/model"
	"context"
	"time"

	"go.uber.org/zap"
)

type HistoryStore interface {
	Save(ctx context.Context, result *model.QuizResult) error
	Stats(ctx context.Context, userID int64) (*model.QuizStats, error)
	Recent(ctx context.Context, userID int64, limit int) ([]model.QuizResult, error)
}

// QuizHistory is the per-user view of finished attempts.
type QuizHistory struct {
	Stats  *model.QuizStats   `json:"stats"`
	Recent []model.QuizResult `json:"recent"`
}

// QuizRecorder files finished attempts under the logged-in user. Attempts
// made while logged out are not kept.
type QuizRecorder struct {
	store    HistoryStore
	sessions auth.SessionReader
	logger   *zap.Logger
	timeout  time.Duration
}

func NewQuizRecorder(store HistoryStore, sessions auth.SessionReader, logger *zap.Logger) *QuizRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizRecorder{
		store:    store,
		sessions: sessions,
		logger:   logger.Named("quiz_history"),
		timeout:  5 * time.Second,
	}
}

// Record is meant to be registered with QuizEngine.OnComplete.
func (r *QuizRecorder) Record(result model.QuizResult) {
	session := r.sessions.Session()
	if !session.Authenticated {
		r.logger.Debug("quiz finished while logged out, not recorded", zap.Int("percent", result.Percent))
		return
	}
	result.UserID = session.ID()
	result.Username = session.Name()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Save(ctx, &result); err != nil {
		r.logger.Error("failed to record quiz attempt", zap.Error(err))
	}
}

func (r *QuizRecorder) History(ctx context.Context, limit int) (*QuizHistory, error) {
	session := r.sessions.Session()
	if !session.Authenticated {
		return nil, model.ErrAuthRequired
	}
	stats, err := r.store.Stats(ctx, session.ID())
	if err != nil {
		return nil, err
	}
	recent, err := r.store.Recent(ctx, session.ID(), limit)
	if err != nil {
		return nil, err
	}
	return &QuizHistory{Stats: stats, Recent: recent}, nil
}
