package service

import (
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxPhotoBytes = 10 << 20

var allowedPhotoTypes = []string{"image/png", "image/jpeg"}

type PhotoUploader interface {
	UploadPhoto(ctx context.Context, filename string, image io.Reader) (*model.PhotoUploadResponse, error)
}

type CardMeal struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NutritionCard is what the last successful analysis found. Totals are
// rounded to whole units.
type NutritionCard struct {
	DetectedLabel string         `json:"detected_label"`
	Filename      string         `json:"filename"`
	Meals         []CardMeal     `json:"meals"`
	Totals        *model.Summary `json:"totals,omitempty"`
}

type PhotoState struct {
	Staged   bool           `json:"staged"`
	Filename string         `json:"filename,omitempty"`
	MimeType string         `json:"mime_type,omitempty"`
	Card     *NutritionCard `json:"card,omitempty"`
}

type stagedPhoto struct {
	filename string
	path     string
	mimeType string
}

// PhotoService stages one image at a time and sends it for analysis.
type PhotoService struct {
	api        PhotoUploader
	fs         afero.Fs
	stagingDir string
	auth       auth.AuthRequirer
	reloader   Reloader
	notifier   Notifier
	logger     *zap.Logger

	mu     sync.Mutex
	staged *stagedPhoto
	card   *NutritionCard
}

func NewPhotoService(api PhotoUploader, fs afero.Fs, stagingDir string, authRequirer auth.AuthRequirer, reloader Reloader, notifier Notifier, logger *zap.Logger) (*PhotoService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := fs.MkdirAll(stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create staging directory '%s': %w", stagingDir, err)
	}
	return &PhotoService{
		api:        api,
		fs:         fs,
		stagingDir: stagingDir,
		auth:       authRequirer,
		reloader:   reloader,
		notifier:   notifier,
		logger:     logger.Named("photos"),
	}, nil
}

// Stage keeps image for preview and later analysis, replacing any previously
// staged image. Only PNG and JPEG content is accepted.
func (s *PhotoService) Stage(filename string, image io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(image, maxPhotoBytes+1))
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return &model.ValidationError{Field: "photo", Message: "Image is too large"}
	}
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedPhotoTypes...) {
		return &model.ValidationError{Field: "photo", Message: "File type not allowed. Use PNG, JPG, or JPEG"}
	}

	path := filepath.Join(s.stagingDir, uuid.NewString()+mtype.Extension())
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to stage image: %w", err)
	}

	s.mu.Lock()
	previous := s.staged
	s.staged = &stagedPhoto{filename: filepath.Base(filename), path: path, mimeType: mtype.String()}
	s.mu.Unlock()

	if previous != nil {
		s.remove(previous.path)
	}
	s.logger.Debug("image staged", zap.String("filename", filename), zap.String("mime", mtype.String()), zap.Int("bytes", len(data)))
	return nil
}

// Preview returns the staged image bytes and their content type.
func (s *PhotoService) Preview() ([]byte, string, error) {
	s.mu.Lock()
	staged := s.staged
	s.mu.Unlock()
	if staged == nil {
		return nil, "", model.ErrNoPhotoSelected
	}
	data, err := afero.ReadFile(s.fs, staged.path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read staged image: %w", err)
	}
	return data, staged.mimeType, nil
}

func (s *PhotoService) State() PhotoState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := PhotoState{Card: s.card}
	if s.staged != nil {
		state.Staged = true
		state.Filename = s.staged.filename
		state.MimeType = s.staged.mimeType
	}
	return state
}

// Analyze uploads the staged image. On success the upstream has already
// logged the detected meals, so the dashboard is refreshed.
func (s *PhotoService) Analyze(ctx context.Context) (*NutritionCard, error) {
	s.mu.Lock()
	staged := s.staged
	s.mu.Unlock()
	if staged == nil {
		s.notifier.Notify(model.ErrNoPhotoSelected.Message)
		return nil, model.ErrNoPhotoSelected
	}

	data, err := afero.ReadFile(s.fs, staged.path)
	if err != nil {
		s.notifier.Notify("Error uploading image")
		return nil, fmt.Errorf("failed to read staged image: %w", err)
	}

	resp, err := s.api.UploadPhoto(ctx, staged.filename, bytes.NewReader(data))
	if err != nil {
		s.reportFailure(err)
		return nil, err
	}

	card := s.buildCard(resp)
	s.mu.Lock()
	s.card = card
	s.mu.Unlock()
	s.logger.Info("image analyzed", zap.String("label", resp.DetectedLabel), zap.Int("meals", len(resp.MealsLogged)))
	s.reloader.Reload(ctx)
	return card, nil
}

// Clear drops the staged image and the nutrition card.
func (s *PhotoService) Clear() {
	s.mu.Lock()
	staged := s.staged
	s.staged = nil
	s.card = nil
	s.mu.Unlock()
	if staged != nil {
		s.remove(staged.path)
	}
}

// buildCard makes its own Caser; a Caser is not safe for concurrent use.
func (s *PhotoService) buildCard(resp *model.PhotoUploadResponse) *NutritionCard {
	upper := cases.Upper(language.Und)
	card := &NutritionCard{
		DetectedLabel: resp.DetectedLabel,
		Filename:      resp.Filename,
	}
	for _, meal := range resp.MealsLogged {
		card.Meals = append(card.Meals, CardMeal{
			Name:     upper.String(meal.Name),
			Calories: meal.Calories,
			Protein:  meal.Protein,
			Carbs:    meal.Carbs,
			Fat:      meal.Fat,
		})
	}
	if resp.DailySummary != nil {
		card.Totals = &model.Summary{
			Calories: math.Round(resp.DailySummary.Calories),
			Protein:  math.Round(resp.DailySummary.Protein),
			Carbs:    math.Round(resp.DailySummary.Carbs),
			Fat:      math.Round(resp.DailySummary.Fat),
		}
	}
	return card
}

func (s *PhotoService) reportFailure(err error) {
	if errors.Is(err, model.ErrAuthRequired) {
		s.auth.RequireAuth()
		return
	}
	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		s.logger.Warn("photo upload failed", zap.Error(err))
		s.notifier.Notify("Error uploading image")
		return
	}
	s.logger.Warn("photo analysis rejected", zap.Error(err))
	s.notifier.Notify("Error: " + model.RejectionText(err, "Failed to analyze image"))
}

func (s *PhotoService) remove(path string) {
	if err := s.fs.Remove(path); err != nil {
		s.logger.Warn("failed to remove staged image", zap.String("path", path), zap.Error(err))
	}
}
