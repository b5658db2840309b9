package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/freshbuy/internal/auth"
	"github.com/fjod/freshbuy/internal/metrics"
	"github.com/fjod/freshbuy/internal/repository"
	"github.com/fjod/freshbuy/internal/service"
)

type ctxKey int

const principalKey ctxKey = iota

type TokenParser interface {
	Parse(raw, tokenType string) (*auth.Claims, error)
}

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

func WithPrincipal(ctx context.Context, p service.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (service.Principal, bool) {
	p, ok := ctx.Value(principalKey).(service.Principal)
	return p, ok
}

// Authenticate requires a valid bearer access token and stores its principal in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(raw), auth.TokenTypeAccess)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token subject")
				return
			}

			ctx := WithPrincipal(r.Context(), service.Principal{
				UserID:  userID,
				Email:   claims.Email,
				IsAdmin: claims.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authenticate. The admin flag is read from the store, not the token.
func RequireAdmin(admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
				return
			}

			isAdmin, err := admins.IsAdmin(r.Context(), p.UserID)
			if errors.Is(err, repository.ErrUserNotFound) {
				respondError(w, http.StatusUnauthorized, "unauthorized", "user no longer exists")
				return
			}
			if err != nil {
				respondServiceError(w, r, err)
				return
			}
			if !isAdmin {
				respondError(w, http.StatusForbidden, "forbidden", "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics records request counts and latency per matched route pattern.
func Metrics(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}

func principal(w http.ResponseWriter, r *http.Request) (service.Principal, bool) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
	}
	return p, ok
}
