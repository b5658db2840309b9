package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/repository"
	"github.com/fjod/freshbuy/internal/service"
)

type ErrorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

var notFoundErrors = []error{
	repository.ErrCartNotFound,
	repository.ErrCartLineNotFound,
	repository.ErrOrderNotFound,
	repository.ErrProductNotFound,
	repository.ErrShippingInfoNotFound,
	repository.ErrUserNotFound,
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps a service or repository error to its HTTP status and error code.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			respondError(w, http.StatusNotFound, "not_found", target.Error())
			return
		}
	}

	var (
		validation *service.ValidationError
		state      *service.InvalidStateError
		provider   *paystack.ProviderError
	)
	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, "invalid_request", validation.Message)
	case errors.As(err, &state):
		respondError(w, http.StatusBadRequest, "invalid_state", state.Reason)
	case errors.Is(err, service.ErrPaymentNotSuccessful):
		respondError(w, http.StatusBadRequest, "payment_not_successful", "Payment not successful")
	case errors.As(err, &provider):
		slog.ErrorContext(r.Context(), "payment provider error", "status", provider.StatusCode, "error", err)
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "payment provider rejected the request",
			Code:    "payment_provider_error",
			Details: provider.Payload,
		})
	case errors.Is(err, paystack.ErrTransport):
		slog.ErrorContext(r.Context(), "payment provider unreachable", "error", err)
		respondError(w, http.StatusInternalServerError, "payment_provider_error", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, service.ErrDescriberUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	case errors.Is(err, service.ErrDescriberFailed):
		slog.ErrorContext(r.Context(), "description generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "generator_error", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// idParam reads a positive integer path parameter.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// pageParam reads the optional page query parameter. Missing means the first page.
func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		respondError(w, http.StatusBadRequest, "invalid_request", "page must be a positive integer")
		return 0, false
	}
	return page, true
}
