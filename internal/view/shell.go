package view

import (
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/service"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Visibility string

const (
	// VisibilityPending is shown until the session gate has resolved.
	VisibilityPending Visibility = "pending"
	VisibilityAuth    Visibility = "auth"
	VisibilityMain    Visibility = "main"
)

const maxNotices = 20

type Notice struct {
	Seq       int       `json:"seq"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type GoalSource interface {
	Get() model.Goals
}

type QuizSource interface {
	State() service.QuizState
}

type ChatSource interface {
	State() service.ChatState
}

type PhotoSource interface {
	State() service.PhotoState
}

type ChatView struct {
	service.ChatState
	HTML         string   `json:"html"`
	QuickPrompts []string `json:"quick_prompts"`
}

type PhotoView struct {
	service.PhotoState
	CardHTML string `json:"card_html"`
}

// View is the whole dashboard as one JSON document.
type View struct {
	Visibility       Visibility        `json:"visibility"`
	Session          model.Session     `json:"session"`
	AuthControlsHTML string            `json:"auth_controls_html"`
	Summary          *SummaryPanel     `json:"summary,omitempty"`
	EntriesHTML      string            `json:"entries_html"`
	Goals            model.Goals       `json:"goals"`
	Quiz             service.QuizState `json:"quiz"`
	Chat             ChatView          `json:"chat"`
	Photo            PhotoView         `json:"photo"`
	Notices          []Notice          `json:"notices"`
}

// Shell holds everything the page shows that is not owned by a state
// machine: which view is visible, the loaded panels and pending notices.
// It is the gate's Listener, the dashboard's sink and the services'
// Notifier.
type Shell struct {
	goals  GoalSource
	logger *zap.Logger

	quiz  QuizSource
	chat  ChatSource
	photo PhotoSource

	trustAssistantHTML atomic.Bool

	mu          sync.RWMutex
	visibility  Visibility
	session     model.Session
	epoch       uint64
	summary     *model.Summary
	entriesHTML string
	notices     []Notice
	noticeSeq   int
}

func NewShell(goals GoalSource, trustAssistantHTML bool, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		goals:      goals,
		logger:     logger.Named("shell"),
		visibility: VisibilityPending,
		session:    model.AnonymousSession(),
	}
	s.trustAssistantHTML.Store(trustAssistantHTML)
	return s
}

// Attach wires the state machines whose snapshots the view includes.
func (s *Shell) Attach(quiz QuizSource, chat ChatSource, photo PhotoSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiz = quiz
	s.chat = chat
	s.photo = photo
}

func (s *Shell) SetTrustAssistantHTML(trust bool) {
	s.trustAssistantHTML.Store(trust)
}

func (s *Shell) ShowMainApp(session model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibility = VisibilityMain
	s.session = session
	s.epoch++
}

// ShowAuthView hides the dashboard and forgets the loaded panels so the next
// user never sees them. Loads still in flight belong to the old epoch and
// are dropped when they land.
func (s *Shell) ShowAuthView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibility = VisibilityAuth
	s.session = model.AnonymousSession()
	s.summary = nil
	s.entriesHTML = ""
	s.epoch++
}

// Epoch changes every time the dashboard is shown or hidden.
func (s *Shell) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// accepts reports whether a load started in epoch may still be shown.
// Callers hold s.mu.
func (s *Shell) accepts(epoch uint64, panel string) bool {
	if s.visibility == VisibilityMain && epoch == s.epoch {
		return true
	}
	s.logger.Debug("dropping stale panel", zap.String("panel", panel), zap.Uint64("epoch", epoch), zap.Uint64("current", s.epoch))
	return false
}

func (s *Shell) RenderSummary(epoch uint64, summary model.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accepts(epoch, "summary") {
		s.summary = &summary
	}
}

func (s *Shell) RenderEntries(epoch uint64, entries []model.MealRecord) {
	html := EntriesHTML(entries)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accepts(epoch, "entries") {
		s.entriesHTML = html
	}
}

func (s *Shell) RenderEntriesUnavailable(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accepts(epoch, "entries") {
		s.entriesHTML = entriesFailedHTML
	}
}

func (s *Shell) Notify(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noticeSeq++
	s.notices = append(s.notices, Notice{Seq: s.noticeSeq, Text: message, CreatedAt: time.Now()})
	if len(s.notices) > maxNotices {
		s.notices = s.notices[len(s.notices)-maxNotices:]
	}
	s.logger.Debug("notice", zap.String("text", message))
}

func (s *Shell) Visibility() Visibility {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibility
}

// TakeNotices returns pending notices and clears them; each is shown once.
func (s *Shell) TakeNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.notices
	s.notices = nil
	return notices
}

// Summary returns the summary panel computed against the current goals, or
// nil when no summary has been loaded.
func (s *Shell) Summary() *SummaryPanel {
	s.mu.RLock()
	summary := s.summary
	s.mu.RUnlock()
	if summary == nil {
		return nil
	}
	panel := NewSummaryPanel(*summary, s.goals.Get())
	return &panel
}

// View projects the current state. Pending notices are handed out and
// cleared.
func (s *Shell) View() View {
	s.mu.RLock()
	v := View{
		Visibility:       s.visibility,
		Session:          s.session,
		AuthControlsHTML: AuthControlsHTML(s.session),
		EntriesHTML:      s.entriesHTML,
	}
	quiz, chat, photo := s.quiz, s.chat, s.photo
	s.mu.RUnlock()

	v.Summary = s.Summary()
	v.Goals = s.goals.Get()
	if quiz != nil {
		v.Quiz = quiz.State()
	}
	if chat != nil {
		state := chat.State()
		v.Chat = ChatView{
			ChatState:    state,
			HTML:         ChatHTML(state, s.trustAssistantHTML.Load()),
			QuickPrompts: service.QuickPrompts,
		}
	}
	if photo != nil {
		state := photo.State()
		v.Photo = PhotoView{PhotoState: state, CardHTML: PhotoCardHTML(state.Card)}
	}
	v.Notices = s.TakeNotices()
	return v
}

// ChatHTML renders the chat panel alone.
func (s *Shell) ChatHTML(state service.ChatState) string {
	return ChatHTML(state, s.trustAssistantHTML.Load())
}
