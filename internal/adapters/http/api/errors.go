package api

import (
	"errors"
	"net/http"

	service "github.com/okian/motionlab/internal/app"
	"github.com/okian/motionlab/internal/domain/credentials"
	"github.com/okian/motionlab/internal/domain/login"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/perfchart"
	"github.com/okian/motionlab/internal/domain/upload"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("not logged in")
	ErrNotFound      = errors.New("not found")
	ErrUploadTimeout = errors.New("upload took too long")
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest         = "bad_request"
	codeInvalidInput       = "invalid_input"
	codeInvalidCredentials = "invalid_credentials"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeTooLarge           = "too_large"
	codeUploadTimeout      = "upload_timeout"
	codeNotVideo           = "not_video"
	codeNoVideo            = "no_video"
	codeAnalysisRunning    = "analysis_running"
	codeBackpressure       = "backpressure"
	codeNoResults          = "no_results"
	codeUnavailable        = "unavailable"
	codeInternal           = "internal"
)

// errorResponse is the JSON error body. Field and Shake are set for login
// failures the form reacts to.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Shake   bool   `json:"shake,omitempty"`
}

// classify maps a domain error to its status and body.
func classify(err error) (int, errorResponse) {
	var fieldErr *credentials.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, errorResponse{Code: codeInvalidInput, Message: fieldErr.Message, Field: fieldErr.Field, Shake: true}
	case errors.Is(err, login.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Code: codeInvalidCredentials, Message: err.Error(), Shake: true}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Code: codeUnauthorized, Message: err.Error()}
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, errorResponse{Code: codeTooLarge, Message: err.Error()}
	case errors.Is(err, ErrUploadTimeout):
		return http.StatusRequestTimeout, errorResponse{Code: codeUploadTimeout, Message: ErrUploadTimeout.Error()}
	case errors.Is(err, upload.ErrNotVideo):
		return http.StatusUnsupportedMediaType, errorResponse{Code: codeNotVideo, Message: err.Error()}
	case errors.Is(err, service.ErrNoVideo):
		return http.StatusBadRequest, errorResponse{Code: codeNoVideo, Message: service.MsgNoVideo}
	case errors.Is(err, service.ErrAnalysisRunning):
		return http.StatusConflict, errorResponse{Code: codeAnalysisRunning, Message: err.Error()}
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, errorResponse{Code: codeBackpressure, Message: err.Error()}
	case errors.Is(err, service.ErrNoResults):
		return http.StatusNotFound, errorResponse{Code: codeNoResults, Message: err.Error()}
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, errorResponse{Code: codeUnavailable, Message: err.Error()}
	case errors.Is(err, login.ErrUnknownProvider), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorResponse{Code: codeNotFound, Message: err.Error()}
	case errors.Is(err, model.ErrUnknownAnalysisType),
		errors.Is(err, upload.ErrUnknownSource),
		errors.Is(err, perfchart.ErrSurfaceTooSmall),
		errors.Is(err, perfchart.ErrUnknownFormat),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, errorResponse{Code: codeBadRequest, Message: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Code: codeInternal, Message: http.StatusText(http.StatusInternalServerError)}
}
