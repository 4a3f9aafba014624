// internal/app/system/auth/auth.go
//
// Package auth consumes the session cookie written by the identity provider.
// coursehub never issues sessions; it only reads the (user id, role) pair and
// refreshes the user from the store on every request.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys shared with the identity provider.
const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	userRole  = "user_role"
)

// SessionUser is the identity injected into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
	Role  models.Role
}

// UserFetcher loads the current state of a user. A nil result means the user
// no longer exists and the request is treated as anonymous.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager reads the provider's cookie and guards routes.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds a manager over a cookie store keyed by sessionKey.
// In production (secure=true) cookies are Secure with SameSite=None; over
// plain http in dev they are Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "coursehub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetUserFetcher makes LoadSessionUser consult the store on each request so
// role changes and deletions apply immediately.
func (m *SessionManager) SetUserFetcher(f UserFetcher) { m.fetcher = f }

// Store exposes the cookie store, used by tests to mint provider cookies.
func (m *SessionManager) Store() *sessions.CookieStore { return m.store }

// Name is the cookie name.
func (m *SessionManager) Name() string { return m.name }

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u the way LoadSessionUser does. Used by handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// LoadSessionUser injects the user into context if the cookie is valid.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, m.name)
		if err != nil {
			// Tampered cookie or rotated key: proceed anonymously.
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				m.logger.Debug("session cookie rejected", zap.Error(err))
			} else {
				m.logger.Warn("session load failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
			next.ServeHTTP(w, r)
			return
		}
		id := getString(sess, userIDKey)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		var u *SessionUser
		if m.fetcher != nil {
			u = m.fetcher.FetchUser(r.Context(), id)
		} else {
			role, _ := models.ParseRole(getString(sess, userRole))
			u = &SessionUser{
				ID:    id,
				Name:  getString(sess, userName),
				Email: getString(sess, userEmail),
				Role:  role,
			}
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context.
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized(w, r)
	})
}

// RequireRole ensures the user in context holds one of the allowed roles.
// Roles compare case-insensitively.
func (m *SessionManager) RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToUpper(strings.TrimSpace(string(role)))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			if _, has := set[strings.ToUpper(string(u.Role))]; !has {
				Forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(r.URL.RequestURI())

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if WantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// Forbidden sends HTML callers to /forbidden and API callers a 403.
func Forbidden(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/forbidden")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if WantsHTML(r) {
		http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
		return
	}
	http.Error(w, "forbidden", http.StatusForbidden)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

// WantsHTML treats HTMX requests and Accept: text/html as browser callers.
func WantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
