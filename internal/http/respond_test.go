package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/repository"
	"github.com/fjod/freshbuy/internal/service"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"cart not found", fmt.Errorf("load cart X: %w", repository.ErrCartNotFound), http.StatusNotFound, "not_found", "cart not found"},
		{"order not found", repository.ErrOrderNotFound, http.StatusNotFound, "not_found", "order not found"},
		{"validation", &service.ValidationError{Message: "cart_code is required"}, http.StatusBadRequest, "invalid_request", "cart_code is required"},
		{"invalid state", &service.InvalidStateError{Reason: "Only pending orders can be deleted."}, http.StatusBadRequest, "invalid_state", "Only pending orders can be deleted."},
		{"payment not successful", fmt.Errorf("%w: ref", service.ErrPaymentNotSuccessful), http.StatusBadRequest, "payment_not_successful", "Payment not successful"},
		{"transport", fmt.Errorf("%w: timeout", paystack.ErrTransport), http.StatusInternalServerError, "payment_provider_error", "payment provider unreachable: timeout"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized", "invalid credentials"},
		{"describer missing", service.ErrDescriberUnavailable, http.StatusServiceUnavailable, "service_unavailable", service.ErrDescriberUnavailable.Error()},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout", "request timed out"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error)
			}
		})
	}
}

func TestRespondServiceError_ProviderPayloadInDetails(t *testing.T) {
	payload := json.RawMessage(`{"status":false,"message":"Invalid key"}`)
	err := fmt.Errorf("initialize: %w", &paystack.ProviderError{StatusCode: http.StatusUnauthorized, Payload: payload})

	rec := httptest.NewRecorder()
	respondServiceError(rec, httptest.NewRequest(http.MethodPost, "/initialize_payment", nil), err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "payment_provider_error", resp.Code)
	assert.JSONEq(t, string(payload), string(resp.Details))
}
