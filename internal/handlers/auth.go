package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"summit-push-go/internal/models"
)

const (
	sessionName = "summit-push-session"
	totpHeader  = "X-TOTP-Code"
)

// Authenticator gates admin routes with HTTP basic auth, an optional TOTP
// code, and a signed cookie session set after the first successful check.
type Authenticator struct {
	admin    models.Admin
	sessions *sessions.CookieStore
	log      *zap.Logger
}

func NewAuthenticator(admin models.Admin, sessionSecret string, log *zap.Logger) *Authenticator {
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/api",
		MaxAge:   8 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return &Authenticator{admin: admin, sessions: store, log: log}
}

// Middleware checks the admin session or credentials before calling next
func (a *Authenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := a.sessions.Get(r, sessionName)
		if user, ok := session.Values["admin"].(string); ok && user == a.admin.Username {
			next(w, r)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || !a.check(username, password, r.Header.Get(totpHeader)) {
			w.Header().Set("WWW-Authenticate", `Basic realm="summit-push"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		session.Values["admin"] = username
		if err := session.Save(r, w); err != nil {
			a.log.Warn("failed to save admin session", zap.Error(err))
		}
		next(w, r)
	}
}

func (a *Authenticator) check(username, password, code string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.admin.Username)) != 1 {
		return false
	}
	if !a.admin.CheckPassword(password) {
		return false
	}
	return a.admin.VerifyCode(code, time.Now())
}
