package service

import (
	"HealthyTrack-Dashboard/internal/auth"
	"HealthyTrack-Dashboard/internal/model"
	"HealthyTrack-Dashboard/internal/utils"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mocks/mock_coach.go -package=mocks HealthyTrack-Dashboard/internal/service Coach

// Coach answers chat messages. The upstream client implements it.
type Coach interface {
	FitnessChat(ctx context.Context, message string) (string, error)
}

const (
	chatLoginRequired = "Please log in to continue chatting."
	chatFallbackError = "Failed to get response"
)

// QuickPrompts are the canned questions offered next to the chat input.
var QuickPrompts = []string{
	"How much protein should I eat per day?",
	"What is a healthy rate of weight loss?",
	"How much water should I drink daily?",
	"How does sleep affect my fitness goals?",
	"What is a good beginner workout routine?",
}

// ChatState is a snapshot of the chat panel.
type ChatState struct {
	Started  bool             `json:"started"`
	InFlight bool             `json:"in_flight"`
	Input    string           `json:"input"`
	History  []model.ChatTurn `json:"history"`
}

// ChatController keeps the chat history and allows one request in flight at
// a time. A send made while another is pending is rejected, not queued.
type ChatController struct {
	coach  Coach
	auth   auth.AuthRequirer
	logger *zap.Logger
	now    utils.Clock

	mu       sync.Mutex
	history  []model.ChatTurn
	input    string
	inFlight bool
	started  bool
}

func NewChatController(coach Coach, authRequirer auth.AuthRequirer, logger *zap.Logger) *ChatController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatController{
		coach:  coach,
		auth:   authRequirer,
		logger: logger.Named("chat"),
		now:    utils.SystemClock,
	}
}

func (c *ChatController) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *ChatController) State() ChatState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChatState{
		Started:  c.started,
		InFlight: c.inFlight,
		Input:    c.input,
		History:  append([]model.ChatTurn(nil), c.history...),
	}
}

// SendInput sends whatever is in the input field.
func (c *ChatController) SendInput(ctx context.Context) bool {
	c.mu.Lock()
	message := c.input
	c.mu.Unlock()
	return c.Send(ctx, message)
}

// SendQuick puts quick prompt index into the input and sends it.
func (c *ChatController) SendQuick(ctx context.Context, index int) (bool, error) {
	if index < 0 || index >= len(QuickPrompts) {
		return false, &model.ValidationError{Field: "prompt", Message: "Unknown quick prompt"}
	}
	c.SetInput(QuickPrompts[index])
	return c.Send(ctx, QuickPrompts[index]), nil
}

// Send appends the user's turn, asks the coach and appends exactly one reply
// turn. It reports false when the message is blank or a request is already
// in flight; nothing is appended in that case.
func (c *ChatController) Send(ctx context.Context, message string) bool {
	message = strings.TrimSpace(message)
	if message == "" {
		return false
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug("send rejected, request already in flight")
		return false
	}
	if !c.started {
		c.history = nil
		c.started = true
	}
	c.appendLocked(model.SpeakerUser, message)
	c.input = ""
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	reply, err := c.coach.FitnessChat(ctx, message)
	if err != nil {
		text := c.errorText(err)
		c.mu.Lock()
		c.appendLocked(model.SpeakerSystemError, text)
		c.mu.Unlock()
		if errors.Is(err, model.ErrAuthRequired) {
			c.auth.RequireAuth()
		}
		return true
	}

	c.mu.Lock()
	c.appendLocked(model.SpeakerAssistant, reply)
	c.mu.Unlock()
	return true
}

func (c *ChatController) errorText(err error) string {
	if errors.Is(err, model.ErrAuthRequired) {
		return chatLoginRequired
	}
	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		c.logger.Warn("chat request failed", zap.Error(err))
		return "Network error: " + netErr.Reason()
	}
	c.logger.Warn("chat request rejected", zap.Error(err))
	var rej *model.RejectionError
	if errors.As(err, &rej) {
		if rej.Message != "" {
			return rej.Message
		}
		if strings.TrimSpace(rej.Body) != "" {
			return rej.Body
		}
	}
	return chatFallbackError
}

func (c *ChatController) appendLocked(speaker model.Speaker, text string) {
	c.history = append(c.history, model.ChatTurn{
		ID:        uuid.NewString(),
		Seq:       len(c.history) + 1,
		Speaker:   speaker,
		Text:      text,
		CreatedAt: c.now(),
	})
}
