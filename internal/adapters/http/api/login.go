package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/motionlab/internal/domain/credentials"
	"github.com/okian/motionlab/internal/domain/login"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/pkg/metrics"
)

// loginRequest mirrors the OpenAPI schema for POST /api/login.
type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	Message         string `json:"message"`
	RedirectTo      string `json:"redirectTo"`
	RedirectAfterMs int64  `json:"redirectAfterMs"`
}

type prefillResponse struct {
	Email      string `json:"email"`
	RememberMe bool   `json:"rememberMe"`
}

type messageResponse struct {
	Message    string `json:"message,omitempty"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// loginHandler serves the login page API.
type loginHandler struct {
	flow *login.Flow
	deps Dependencies
}

// HandleLogin handles POST /api/login. The response is delayed by the
// simulated round trip whatever the outcome, except for format errors.
func (h *loginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.RecordLoginAttempt("bad_request")
		writeErr(w, err)
		return
	}

	creds := model.Credentials{Email: req.Email, Password: req.Password}
	out, err := h.flow.Submit(r.Context(), storeFrom(r), creds, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, credentials.ErrInvalidFormat):
			metrics.RecordLoginAttempt("invalid")
		case errors.Is(err, login.ErrInvalidCredentials):
			metrics.RecordLoginAttempt("mismatch")
		default:
			metrics.RecordLoginAttempt("error")
		}
		writeErr(w, err)
		return
	}

	metrics.RecordLoginAttempt("success")
	writeJSON(w, http.StatusOK, loginResponse{
		Message:         out.Message,
		RedirectTo:      out.RedirectTo,
		RedirectAfterMs: out.RedirectAfter.Milliseconds(),
	})
}

// HandlePrefill handles GET /api/login/prefill.
func (h *loginHandler) HandlePrefill(w http.ResponseWriter, r *http.Request) {
	email, ok := h.flow.Prefill(storeFrom(r))
	writeJSON(w, http.StatusOK, prefillResponse{Email: email, RememberMe: ok})
}

// HandleSocial handles POST /api/login/social/{provider}.
func (h *loginHandler) HandleSocial(w http.ResponseWriter, r *http.Request) {
	msg, err := h.flow.SocialLogin(chi.URLParam(r, "provider"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// HandleLogout handles POST /api/logout. The remembered email survives.
func (h *loginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.flow.Logout(storeFrom(r)); err != nil {
		writeErr(w, err)
		return
	}
	h.deps.EndSession(r.Context(), clientIDFrom(r))
	writeJSON(w, http.StatusOK, messageResponse{RedirectTo: "/"})
}
