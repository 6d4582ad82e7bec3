package auth

import (
	"HealthyTrack-Dashboard/internal/model"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthAPI is the part of the upstream client the gate needs.
type AuthAPI interface {
	CurrentUser(ctx context.Context) (*model.CurrentUserResponse, error)
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Signup(ctx context.Context, creds model.SignupCredentials) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
}

// Listener switches between the main view and the auth view.
type Listener interface {
	ShowMainApp(session model.Session)
	ShowAuthView()
}

// Refresher reloads the dashboard data after the user becomes authenticated.
type Refresher interface {
	Refresh(ctx context.Context)
}

// SessionReader is the read-only view of the gate handed to other components.
type SessionReader interface {
	Session() model.Session
	Resolved() bool
}

// AuthRequirer is implemented by the gate. Components call RequireAuth when
// the upstream answers 401.
type AuthRequirer interface {
	RequireAuth()
}

// SessionGate is the only writer of the Session.
type SessionGate struct {
	api       AuthAPI
	listener  Listener
	refresher Refresher
	validate  *validator.Validate
	logger    *zap.Logger

	resolveOnce sync.Once
	mu          sync.RWMutex
	session     model.Session
	resolved    bool
}

func NewSessionGate(api AuthAPI, listener Listener, logger *zap.Logger) *SessionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionGate{
		api:      api,
		listener: listener,
		validate: validator.New(),
		logger:   logger.Named("session"),
		session:  model.AnonymousSession(),
	}
}

// SetRefresher wires the dashboard loader. It is set after construction
// because the loader itself reports 401s back to the gate.
func (g *SessionGate) SetRefresher(r Refresher) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refresher = r
}

func (g *SessionGate) Session() model.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

func (g *SessionGate) Resolved() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolved
}

// Resolve asks the upstream who is logged in. Only the first call queries;
// later calls return the current session.
func (g *SessionGate) Resolve(ctx context.Context) model.Session {
	g.resolveOnce.Do(func() {
		user, err := g.api.CurrentUser(ctx)
		if err != nil || user == nil || user.UserID == nil || user.Username == "" {
			if err != nil {
				g.logger.Info("no active upstream session", zap.Error(err))
			}
			g.set(model.AnonymousSession(), true)
			g.listener.ShowAuthView()
			return
		}

		session := model.NewSession(*user.UserID, user.Username)
		g.set(session, true)
		g.logger.Info("resumed session", zap.Int64("user_id", *user.UserID), zap.String("username", user.Username))
		g.enterMainApp(ctx, session)
	})
	return g.Session()
}

func (g *SessionGate) Login(ctx context.Context, username, password string) (model.Session, error) {
	creds := model.Credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if err := g.validate.Struct(creds); err != nil {
		return g.Session(), &model.ValidationError{Field: "credentials", Message: "Please enter username and password"}
	}

	resp, err := g.api.Login(ctx, creds)
	if err != nil {
		g.logger.Warn("login failed", zap.String("username", creds.Username), zap.Error(err))
		return g.Session(), err
	}
	return g.authenticated(ctx, resp), nil
}

func (g *SessionGate) Signup(ctx context.Context, username, password string) (model.Session, error) {
	creds := model.SignupCredentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if err := g.validate.Struct(creds); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "Password" && fe.Tag() == "min" {
					return g.Session(), &model.ValidationError{Field: "password", Message: "Password must be at least 4 characters"}
				}
			}
		}
		return g.Session(), &model.ValidationError{Field: "credentials", Message: "Please enter username and password"}
	}

	resp, err := g.api.Signup(ctx, creds)
	if err != nil {
		g.logger.Warn("signup failed", zap.String("username", creds.Username), zap.Error(err))
		return g.Session(), err
	}
	return g.authenticated(ctx, resp), nil
}

func (g *SessionGate) authenticated(ctx context.Context, resp *model.AuthResponse) model.Session {
	session := model.NewSession(resp.UserID, resp.Username)
	g.set(session, true)
	g.logger.Info("user authenticated", zap.Int64("user_id", resp.UserID), zap.String("username", resp.Username))
	if session.Authenticated {
		g.enterMainApp(ctx, session)
	} else {
		g.listener.ShowAuthView()
	}
	return session
}

// Logout tells the upstream best-effort, then resets locally whatever the
// outcome.
func (g *SessionGate) Logout(ctx context.Context) {
	if err := g.api.Logout(ctx); err != nil {
		g.logger.Warn("logout request failed, resetting session anyway", zap.Error(err))
	}
	g.set(model.AnonymousSession(), true)
	g.listener.ShowAuthView()
}

func (g *SessionGate) RequireAuth() {
	g.logger.Info("upstream requires authentication")
	g.set(model.AnonymousSession(), true)
	g.listener.ShowAuthView()
}

func (g *SessionGate) set(session model.Session, resolved bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = session
	g.resolved = resolved
}

// enterMainApp runs outside the lock: the refresher may call RequireAuth.
func (g *SessionGate) enterMainApp(ctx context.Context, session model.Session) {
	g.listener.ShowMainApp(session)
	g.mu.RLock()
	refresher := g.refresher
	g.mu.RUnlock()
	if refresher != nil {
		refresher.Refresh(ctx)
	}
}

// FailureText is the notice shown for a failed login or signup. action is
// "login" or "signup".
func FailureText(action string, err error) string {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		return "Network error during " + action
	}
	fallback := "Login failed"
	if action == "signup" {
		fallback = "Signup failed"
	}
	return "Error: " + model.RejectionText(err, fallback)
}
