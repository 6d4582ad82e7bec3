package service

import (
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/utils"
	"fmt"
	"math"
	"sync"
)

// QuizState is a snapshot of the quiz for rendering. Options always belong
// to the question at QuestionIndex.
type QuizState struct {
	Phase         model.QuizPhase `json:"phase"`
	QuestionIndex int             `json:"question_index"`
	Total         int             `json:"total"`
	Score         int             `json:"score"`
	Selected      *int            `json:"selected,omitempty"`
	Prompt        string          `json:"prompt,omitempty"`
	Options       []string        `json:"options,omitempty"`
	Percent       int             `json:"percent"`
	ResultText    string          `json:"result_text,omitempty"`
}

// QuizEngine runs one attempt at a time over a fixed question bank. It does
// no I/O; finished attempts are handed to the completion handler.
type QuizEngine struct {
	mu         sync.Mutex
	questions  []model.Question
	phase      model.QuizPhase
	index      int
	score      int
	selected   *int
	answers    []int
	percent    int
	onComplete func(model.QuizResult)
	now        utils.Clock
}

func NewQuizEngine(questions []model.Question) (*QuizEngine, error) {
	if len(questions) == 0 {
		return nil, &model.ConfigurationError{Message: "quiz bank is empty"}
	}
	for i, q := range questions {
		if len(q.Options) < 2 {
			return nil, &model.ConfigurationError{Message: fmt.Sprintf("question %d has fewer than two options", i+1)}
		}
		if q.CorrectOptionIndex < 0 || q.CorrectOptionIndex >= len(q.Options) {
			return nil, &model.ConfigurationError{Message: fmt.Sprintf("question %d has correct index %d outside its %d options", i+1, q.CorrectOptionIndex, len(q.Options))}
		}
	}
	return &QuizEngine{
		questions: questions,
		phase:     model.QuizPhaseIntro,
		now:       utils.SystemClock,
	}, nil
}

// OnComplete registers fn to be called, outside the engine lock, each time an
// attempt reaches the result phase.
func (e *QuizEngine) OnComplete(fn func(model.QuizResult)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = fn
}

func (e *QuizEngine) State() QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Start begins a new attempt from any phase.
func (e *QuizEngine) Start() QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
	return e.snapshot()
}

func (e *QuizEngine) Retake() (QuizState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != model.QuizPhaseResult {
		return e.snapshot(), fmt.Errorf("retake: %w", model.ErrInvalidTransition)
	}
	e.reset()
	return e.snapshot(), nil
}

func (e *QuizEngine) SelectAnswer(option int) (QuizState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != model.QuizPhaseInProgress {
		return e.snapshot(), fmt.Errorf("select answer: %w", model.ErrInvalidTransition)
	}
	if option < 0 || option >= len(e.questions[e.index].Options) {
		return e.snapshot(), &model.ValidationError{Field: "answer", Message: fmt.Sprintf("Answer %d is not one of the options", option)}
	}
	e.selected = &option
	return e.snapshot(), nil
}

// Advance scores the selected answer and moves to the next question, or to
// the result once the last question is answered.
func (e *QuizEngine) Advance() (QuizState, error) {
	state, finished, err := e.advance()
	if err != nil || finished == nil {
		return state, err
	}

	e.mu.Lock()
	onComplete := e.onComplete
	e.mu.Unlock()
	if onComplete != nil {
		onComplete(*finished)
	}
	return state, nil
}

func (e *QuizEngine) advance() (QuizState, *model.QuizResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != model.QuizPhaseInProgress {
		return e.snapshot(), nil, fmt.Errorf("advance: %w", model.ErrInvalidTransition)
	}
	if e.selected == nil {
		return e.snapshot(), nil, model.ErrNoAnswerSelected
	}

	answer := *e.selected
	if answer == e.questions[e.index].CorrectOptionIndex {
		e.score++
	}
	e.answers = append(e.answers, answer)
	e.selected = nil
	e.index++

	if e.index < len(e.questions) {
		return e.snapshot(), nil, nil
	}

	e.phase = model.QuizPhaseResult
	e.percent = percentOf(e.score, len(e.questions))
	return e.snapshot(), &model.QuizResult{
		Score:       e.score,
		Total:       len(e.questions),
		Percent:     e.percent,
		Answers:     append([]int(nil), e.answers...),
		CompletedAt: e.now(),
	}, nil
}

// Quit abandons the running attempt.
func (e *QuizEngine) Quit() (QuizState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != model.QuizPhaseInProgress {
		return e.snapshot(), fmt.Errorf("quit: %w", model.ErrInvalidTransition)
	}
	e.phase = model.QuizPhaseIntro
	e.index = 0
	e.score = 0
	e.selected = nil
	e.answers = nil
	e.percent = 0
	return e.snapshot(), nil
}

func (e *QuizEngine) reset() {
	e.phase = model.QuizPhaseInProgress
	e.index = 0
	e.score = 0
	e.selected = nil
	e.answers = nil
	e.percent = 0
}

func (e *QuizEngine) snapshot() QuizState {
	state := QuizState{
		Phase:         e.phase,
		QuestionIndex: e.index,
		Total:         len(e.questions),
		Score:         e.score,
	}
	if e.selected != nil {
		selected := *e.selected
		state.Selected = &selected
	}
	switch e.phase {
	case model.QuizPhaseInProgress:
		q := e.questions[e.index]
		state.Prompt = q.Prompt
		state.Options = append([]string(nil), q.Options...)
	case model.QuizPhaseResult:
		state.Percent = e.percent
		state.ResultText = fmt.Sprintf("You scored %d out of %d (%d%%)", e.score, len(e.questions), e.percent)
	}
	return state
}

func percentOf(score, total int) int {
	return int(math.Round(float64(score) / float64(total) * 100))
}
