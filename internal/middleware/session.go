package middleware

import (
	"net/http"
	"time"

	"github.com/agrienergy/agri-produce/internal/config"
	"github.com/agrienergy/agri-produce/internal/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	SessionName = "agri_session"

	sessionUserID   = "user_id"
	sessionLastSeen = "last_seen"
	sessionRemember = "remember"
)

// Sessions keeps the cookie session policy: a sliding idle deadline for normal
// sign-ins and a persistent cookie for "remember me".
type Sessions struct {
	IdleTimeout time.Duration
	RememberFor time.Duration
	Secure      bool
	now         func() time.Time
}

func NewSessions(cfg config.SessionConfig) *Sessions {
	return &Sessions{
		IdleTimeout: cfg.IdleTimeout,
		RememberFor: cfg.RememberFor,
		Secure:      cfg.SecureCookie,
		now:         time.Now,
	}
}

func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	s.now = now
	return s
}

// Store builds the signed cookie store. The default options produce a
// browser-session cookie; SignIn switches to a persistent one on remember-me.
func (s *Sessions) Store(secret string) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(s.options(false))
	return store
}

func (s *Sessions) Handler(secret string) gin.HandlerFunc {
	return sessions.Sessions(SessionName, s.Store(secret))
}

func (s *Sessions) options(remember bool) sessions.Options {
	opts := sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		opts.MaxAge = int(s.RememberFor.Seconds())
	}
	return opts
}

func (s *Sessions) SignIn(c *gin.Context, user *models.User, remember bool) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(sessionUserID, user.ID)
	sess.Set(sessionLastSeen, s.now().Unix())
	sess.Set(sessionRemember, remember)
	sess.Options(s.options(remember))
	return sess.Save()
}

func (s *Sessions) SignOut(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	opts := s.options(false)
	opts.MaxAge = -1
	sess.Options(opts)
	return sess.Save()
}

// principal returns the signed-in user id when the session is still inside its
// idle window, sliding the window forward. Expired sessions are cleared.
func (s *Sessions) principal(c *gin.Context) string {
	sess := sessions.Default(c)
	userID, _ := sess.Get(sessionUserID).(string)
	if userID == "" {
		return ""
	}

	remember, _ := sess.Get(sessionRemember).(bool)
	window := s.IdleTimeout
	if remember {
		window = s.RememberFor
	}

	now := s.now()
	lastSeen, _ := sess.Get(sessionLastSeen).(int64)
	if window > 0 && now.Sub(time.Unix(lastSeen, 0)) > window {
		_ = s.SignOut(c)
		return ""
	}

	sess.Set(sessionLastSeen, now.Unix())
	sess.Options(s.options(remember))
	_ = sess.Save()
	return userID
}

func AddFlash(c *gin.Context, message string) {
	sess := sessions.Default(c)
	sess.AddFlash(message)
	_ = sess.Save()
}

// Flashes pops pending flash messages.
func Flashes(c *gin.Context) []string {
	sess := sessions.Default(c)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = sess.Save()

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}
