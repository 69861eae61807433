package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"growbrain/internal/scope"
	"growbrain/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ScopeContextKey ContextKey = "scope"

// SessionCookieName is the cookie carrying the signed teacher-scope token.
const SessionCookieName = "gb_session"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessionSecret []byte
	limiter       *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(sessionSecret []byte, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		sessionSecret: sessionSecret,
		limiter:       limiter,
	}
}

// WithTeacherScope resolves the request's teacher scope from the session
// cookie and the selected school year from the query string. A missing or
// invalid cookie yields an empty scope, which is a valid state (all
// teachers), never an error.
func (m *Middleware) WithTeacherScope(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := scope.Scope{SchoolYear: r.URL.Query().Get("year")}

		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			teacherID, perr := security.ParseScopeToken(m.sessionSecret, cookie.Value)
			if perr != nil {
				http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			} else {
				sc.TeacherID = teacherID
			}
		}

		ctx := context.WithValue(r.Context(), ScopeContextKey, sc)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects requests over the per-IP budget with 429.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "rate limited", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetScopeFromContext retrieves the teacher scope from the request context.
// The zero scope means "no teacher selected".
func GetScopeFromContext(ctx context.Context) scope.Scope {
	sc, ok := ctx.Value(ScopeContextKey).(scope.Scope)
	if !ok {
		return scope.Scope{}
	}
	return sc
}
