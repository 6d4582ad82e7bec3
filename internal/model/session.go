package model

// Session is the client-side record of who is logged in. Authenticated is
// true exactly when both UserID and Username are set; build values with
// NewSession or AnonymousSession to keep that so.
type Session struct {
	Authenticated bool    `json:"authenticated"`
	UserID        *int64  `json:"user_id,omitempty"`
	Username      *string `json:"username,omitempty"`
}

func NewSession(userID int64, username string) Session {
	if username == "" {
		return AnonymousSession()
	}
	return Session{Authenticated: true, UserID: &userID, Username: &username}
}

func AnonymousSession() Session {
	return Session{}
}

func (s Session) Name() string {
	if s.Username == nil {
		return ""
	}
	return *s.Username
}

func (s Session) ID() int64 {
	if s.UserID == nil {
		return 0
	}
	return *s.UserID
}
