package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"folio-api/internal/auth"
	"folio-api/internal/usecase"
)

const headerCorrelationID = "X-Correlation-Id"

type ctxKey int

const (
	correlationKey ctxKey = iota
	identityKey
)

// correlationID reuses the caller's X-Correlation-Id (header names are case
// insensitive) or generates one, and echoes it on the response.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationKey, id)))
	})
}

func correlationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey).(string)
	return id
}

func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("requestId", middleware.GetReqID(r.Context())),
					zap.String("correlationId", correlationIDFrom(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// corsHeaders sets the documented CORS headers on every response, with or
// without an Origin. It runs after cors.Handler and overrides the echoed
// method and header lists with the full static ones.
func corsHeaders(origin string) func(http.Handler) http.Handler {
	methods := strings.Join(corsMethods, ",")
	headers := strings.Join(corsAllowHeaders, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if h.Get("Access-Control-Allow-Origin") == "" {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			next.ServeHTTP(w, r)
		})
	}
}

// preflight answers every OPTIONS request with 204 once the CORS headers
// have been set.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticator is the admin gate. *auth.Gate satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (auth.Identity, error)
	Authorize(id auth.Identity) error
}

func requireAdmin(gate Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := gate.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				reason := "invalid_token"
				switch {
				case errors.Is(err, auth.ErrMissingToken):
					reason = "missing_token"
				case errors.Is(err, auth.ErrNotConfigured):
					reason = "auth_not_configured"
				}
				writeError(w, r, logger, &usecase.Error{Code: usecase.ErrorUnauthorized, Reason: reason, Err: err})
				return
			}
			if err := gate.Authorize(id); err != nil {
				writeError(w, r, logger, &usecase.Error{Code: usecase.ErrorForbidden, Reason: "not_admin", Err: err})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

func identityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(identityKey).(auth.Identity)
	return id
}
