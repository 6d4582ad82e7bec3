package repository

import (
	"HealthyTrack-Dashboard/internal/model"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

//go:embed questions.yaml
var defaultQuestionBank []byte

// questionBankFile is the on-disk layout. Correct is a pointer so a missing
// key is told apart from option 0.
type questionBankFile struct {
	Questions []struct {
		Prompt  string   `yaml:"prompt"`
		Options []string `yaml:"options"`
		Correct *int     `yaml:"correct"`
	} `yaml:"questions"`
}

// QuestionBankRepository holds the quiz questions. The bank is read once and
// never changes afterwards.
type QuestionBankRepository struct {
	questions []model.Question
}

// NewQuestionBankRepository loads the bank from yamlPath, or the built-in
// bank when yamlPath is empty.
func NewQuestionBankRepository(yamlPath string, logger *zap.Logger) (*QuestionBankRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	source := "embedded"
	data := defaultQuestionBank
	if yamlPath != "" {
		byteValue, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read question bank '%s': %w", yamlPath, err)
		}
		data = byteValue
		source = yamlPath
	}

	repo, err := parseQuestionBank(data)
	if err != nil {
		return nil, err
	}
	logger.Info("question bank loaded", zap.String("source", source), zap.Int("questions", len(repo.questions)))
	return repo, nil
}

func parseQuestionBank(data []byte) (*QuestionBankRepository, error) {
	var bank questionBankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	questions := make([]model.Question, 0, len(bank.Questions))
	for i, q := range bank.Questions {
		if q.Correct == nil {
			return nil, &model.ConfigurationError{Message: fmt.Sprintf("question %d (%q) has no correct option", i+1, q.Prompt)}
		}
		questions = append(questions, model.Question{
			Prompt:             q.Prompt,
			Options:            q.Options,
			CorrectOptionIndex: *q.Correct,
		})
	}
	return &QuestionBankRepository{questions: questions}, nil
}

// Questions returns a copy of the bank.
func (r *QuestionBankRepository) Questions() []model.Question {
	out := make([]model.Question, len(r.questions))
	for i, q := range r.questions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
