package main

import (
	"HealthyTrack-Dashboard/internal/api"
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/client"
	"HealthyTrack-Dashboard/internal/config"
	"HealthyTrack-Dashboard/internal/logging"
	"HealthyTrack-Dashboard/internal/repository"
	"HealthyTrack-Dashboard/internal/router"
	"HealthyTrack-Dashboard/internal/service"
	"HealthyTrack-Dashboard/internal/view"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loader, err := config.NewLoader(os.Args[1:])
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger, level, err := logging.Init(logging.Options{
		Directory:  cfg.Logging.Directory,
		Level:      cfg.Logging.Level,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if file := loader.ConfigFile(); file != "" {
		logger.Info("configuration loaded", zap.String("file", file))
	} else {
		logger.Warn("no config.yaml found, using defaults and environment variables")
	}

	bank, err := repository.NewQuestionBankRepository(cfg.Quiz.BankPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}
	quiz, err := service.NewQuizEngine(bank.Questions())
	if err != nil {
		return err
	}

	goals, err := repository.NewGoalRepository(cfg.Goals.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize goals: %w", err)
	}
	history, err := repository.NewQuizHistoryRepository(cfg.Database.HistoryPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize quiz history: %w", err)
	}
	defer history.Close()

	upstream, err := client.NewHealthyTrackClient(cfg.Upstream.BaseURL, cfg.Upstream.TimeoutSeconds, logger)
	if err != nil {
		return err
	}

	shell := view.NewShell(goals, cfg.Chat.TrustAssistantHTML, logger)
	gate := auth.NewSessionGate(upstream, shell, logger)
	dashboard := service.NewDashboardService(upstream, shell, gate, logger)
	gate.SetRefresher(dashboard)

	meals := service.NewMealService(upstream, gate, dashboard, shell, logger)
	photos, err := service.NewPhotoService(upstream, afero.NewOsFs(), cfg.Photos.StagingDir, gate, dashboard, shell, logger)
	if err != nil {
		return err
	}
	chat := service.NewChatController(upstream, gate, logger)
	recorder := service.NewQuizRecorder(history, gate, logger)
	quiz.OnComplete(recorder.Record)
	shell.Attach(quiz, chat, photos)

	loader.Watch(logger, func(updated *config.Config) {
		if err := logging.SetLevel(level, updated.Logging.Level); err != nil {
			logger.Error("ignoring log level change", zap.Error(err))
		}
		shell.SetTrustAssistantHTML(updated.Chat.TrustAssistantHTML)
	})

	handler := api.NewDashboardHandler(api.Services{
		Gate:     gate,
		Shell:    shell,
		Meals:    meals,
		Photos:   photos,
		Goals:    goals,
		Quiz:     quiz,
		Recorder: recorder,
		Chat:     chat,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(handler, gate, cfg.CORS.AllowedOrigins, logger)
	srv := &http.Server{Addr: cfg.Server.Port, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The surface answers 503 until this finishes.
	go func() {
		resolveCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)
		defer cancel()
		session := gate.Resolve(resolveCtx)
		logger.Info("session resolved", zap.Bool("authenticated", session.Authenticated), zap.String("username", session.Name()))
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", "http://localhost"+cfg.Server.Port), zap.String("upstream", cfg.Upstream.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
