package repository

import (
	"HealthyTrack-Dashboard/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// GoalRepository keeps the nutrition goals in a small JSON file.
type GoalRepository struct {
	filePath string
	mu       sync.RWMutex
	goals    model.Goals
	validate *validator.Validate
	logger   *zap.Logger
}

func NewGoalRepository(filePath string, logger *zap.Logger) (*GoalRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := &GoalRepository{
		filePath: filePath,
		goals:    model.DefaultGoals(),
		validate: validator.New(),
		logger:   logger.Named("goals"),
	}
	if err := repo.load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		repo.logger.Info("goals file not found, creating it with defaults", zap.String("path", filePath))
		if err := repo.persist(); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *GoalRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byteValue, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}
	if len(byteValue) == 0 {
		r.goals = model.DefaultGoals()
		return nil
	}

	goals := model.DefaultGoals()
	if err := json.Unmarshal(byteValue, &goals); err != nil {
		return fmt.Errorf("failed to parse goals file '%s': %w", r.filePath, err)
	}
	r.goals = withFallbacks(goals)
	return nil
}

// persist writes the current goals. Callers hold the write lock or own the
// repository exclusively.
func (r *GoalRepository) persist() error {
	byteValue, err := json.MarshalIndent(r.goals, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("could not create goals directory: %w", err)
		}
	}
	if err := os.WriteFile(r.filePath, byteValue, 0644); err != nil {
		r.logger.Error("failed to persist goals", zap.Error(err))
		return err
	}
	return nil
}

func (r *GoalRepository) Get() model.Goals {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.goals
}

func (r *GoalRepository) Save(goals model.Goals) error {
	if err := r.validate.Struct(goals); err != nil {
		return &model.ValidationError{Field: "goals", Message: "Goals must be positive numbers"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals = goals
	return r.persist()
}

func (r *GoalRepository) SetCalorieGoal(calories float64) (model.Goals, error) {
	if err := r.validate.Var(calories, "gt=0"); err != nil {
		return r.Get(), &model.ValidationError{Field: "calories", Message: "Please enter a positive calorie goal"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.goals.Calories = calories
	if err := r.persist(); err != nil {
		return r.goals, err
	}
	r.logger.Info("calorie goal updated", zap.Float64("calories", calories))
	return r.goals, nil
}

func withFallbacks(g model.Goals) model.Goals {
	def := model.DefaultGoals()
	if g.Calories <= 0 {
		g.Calories = def.Calories
	}
	if g.Protein <= 0 {
		g.Protein = def.Protein
	}
	if g.Carbs <= 0 {
		g.Carbs = def.Carbs
	}
	if g.Fat <= 0 {
		g.Fat = def.Fat
	}
	return g
}
