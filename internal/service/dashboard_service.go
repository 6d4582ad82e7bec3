package service

import (
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/utils"
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type DashboardAPI interface {
	DailySummary(ctx context.Context, date string) (*model.Summary, error)
	GetEntries(ctx context.Context, date string) ([]model.MealRecord, error)
}

// DashboardSink receives loaded data for display. Epoch identifies the
// signed-in period a load started in; renders from an older epoch are
// discarded by the sink.
type DashboardSink interface {
	Epoch() uint64
	RenderSummary(epoch uint64, summary model.Summary)
	RenderEntries(epoch uint64, entries []model.MealRecord)
	RenderEntriesUnavailable(epoch uint64)
}

// Reloader refetches the dashboard after a successful write upstream.
type Reloader interface {
	Reload(ctx context.Context)
}

// DashboardService loads today's summary and entries.
type DashboardService struct {
	api    DashboardAPI
	sink   DashboardSink
	auth   auth.AuthRequirer
	logger *zap.Logger
	now    utils.Clock
	group  singleflight.Group

	runs     atomic.Uint64
	renderMu sync.Mutex
}

func NewDashboardService(api DashboardAPI, sink DashboardSink, authRequirer auth.AuthRequirer, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		api:    api,
		sink:   sink,
		auth:   authRequirer,
		logger: logger.Named("dashboard"),
		now:    utils.SystemClock,
	}
}

// Refresh loads both panels concurrently. Callers arriving while a refresh
// for the same epoch runs share its outcome.
func (s *DashboardService) Refresh(ctx context.Context) {
	s.load(ctx, s.sink.Epoch())
}

// Reload always fetches anew, for use after a write upstream. A refresh
// already running may have read the data before the write; its results
// are dropped in favour of this one.
func (s *DashboardService) Reload(ctx context.Context) {
	epoch := s.sink.Epoch()
	s.group.Forget(refreshKey(epoch))
	s.load(ctx, epoch)
}

func (s *DashboardService) load(ctx context.Context, epoch uint64) {
	_, _, _ = s.group.Do(refreshKey(epoch), func() (any, error) {
		s.refresh(ctx, epoch)
		return nil, nil
	})
}

func refreshKey(epoch uint64) string {
	return "refresh-" + strconv.FormatUint(epoch, 10)
}

// render applies fn unless a newer refresh has started since run began.
func (s *DashboardService) render(run uint64, fn func()) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if run != s.runs.Load() {
		s.logger.Debug("dropping superseded refresh", zap.Uint64("run", run))
		return
	}
	fn()
}

func (s *DashboardService) refresh(ctx context.Context, epoch uint64) {
	run := s.runs.Add(1)
	date := utils.FormatDate(s.now())
	var authLost atomic.Bool

	var wg conc.WaitGroup
	wg.Go(func() {
		summary, err := s.api.DailySummary(ctx, date)
		if err != nil {
			if errors.Is(err, model.ErrAuthRequired) {
				authLost.Store(true)
			}
			s.logger.Warn("cannot load summary", zap.String("date", date), zap.Error(err))
			return
		}
		s.render(run, func() { s.sink.RenderSummary(epoch, *summary) })
	})
	wg.Go(func() {
		entries, err := s.api.GetEntries(ctx, date)
		if err != nil {
			if errors.Is(err, model.ErrAuthRequired) {
				authLost.Store(true)
			}
			s.logger.Warn("cannot load entries", zap.String("date", date), zap.Error(err))
			s.render(run, func() { s.sink.RenderEntriesUnavailable(epoch) })
			return
		}
		s.render(run, func() { s.sink.RenderEntries(epoch, entries) })
	})
	wg.Wait()

	if authLost.Load() {
		s.auth.RequireAuth()
	}
}
