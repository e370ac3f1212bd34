package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/okian/motionlab/internal/adapters/cookiestore"
	"github.com/okian/motionlab/internal/domain/session"
	"github.com/okian/motionlab/pkg/logger"
	"github.com/okian/motionlab/pkg/metrics"
)

// clientKey is the cookie key holding the browser's client id.
const clientKey = "client"

type ctxKey int

const (
	ctxClientID ctxKey = iota
	ctxStore
)

// observe records per-route request metrics.
func observe(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ms := float64(time.Since(start).Milliseconds())
		code := strconv.Itoa(status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, ms)

		if status < http.StatusBadRequest {
			return
		}
		kind := errorKind(status)
		severity := "medium"
		if status >= http.StatusInternalServerError {
			severity = "high"
		}
		metrics.RecordErrorByEndpoint(endpoint, r.Method, kind)
		metrics.RecordErrorByType(kind, severity)
		metrics.RecordErrorLatency("http", kind, ms)
	}
}

// errorKind names the error class of a failed response using the same
// vocabulary as the JSON error codes.
func errorKind(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return codeUnauthorized
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusConflict:
		return codeAnalysisRunning
	case http.StatusRequestTimeout:
		return codeUploadTimeout
	case http.StatusRequestEntityTooLarge:
		return codeTooLarge
	case http.StatusUnsupportedMediaType:
		return codeNotVideo
	case http.StatusTooManyRequests:
		return codeBackpressure
	case http.StatusServiceUnavailable:
		return codeUnavailable
	}
	if status >= http.StatusInternalServerError {
		return codeInternal
	}
	return codeBadRequest
}

// clientIdentity binds the cookie store to the request and assigns the
// browser a signed client id on first contact.
func (s *Server) clientIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := s.codec.Bind(w, r)
		id, ok := store.Get(clientKey)
		if !ok {
			id = uuid.NewString()
			if err := store.Set(clientKey, id); err != nil {
				s.logger.Error(r.Context(), "issue client cookie", logger.Error(err))
				writeError(w, http.StatusInternalServerError, codeInternal, nil)
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxClientID, id)
		ctx = context.WithValue(ctx, ctxStore, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bodyDeadline bounds how long reading the request body may take. Websocket
// upgrades are left alone since the connection outlives the request.
func (s *Server) bodyDeadline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.readTimeout > 0 && !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			setReadDeadline(w, s.readTimeout)
		}
		next.ServeHTTP(w, r)
	})
}

// setReadDeadline moves the connection's read deadline to now+d. Writers
// without deadline support are left unbounded.
func setReadDeadline(w http.ResponseWriter, d time.Duration) {
	_ = http.NewResponseController(w).SetReadDeadline(time.Now().Add(d))
}

// requireSession answers 401 unless the logged-in flag is set.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.loggedIn(r) {
			writeErr(w, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gated wraps a single route in requireSession so the route's own observe
// wrapper also sees the 401.
func (s *Server) gated(h http.HandlerFunc) http.HandlerFunc {
	return s.requireSession(h).ServeHTTP
}

func (s *Server) loggedIn(r *http.Request) bool {
	return session.LoggedIn(storeFrom(r))
}

// clientIDFrom returns the id set by clientIdentity.
func clientIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(ctxClientID).(string)
	return id
}

// storeFrom returns the request's cookie store. Outside clientIdentity it
// is an empty in-memory store.
func storeFrom(r *http.Request) session.Store {
	if st, ok := r.Context().Value(ctxStore).(*cookiestore.Store); ok {
		return st
	}
	return session.NewMemoryStore()
}
