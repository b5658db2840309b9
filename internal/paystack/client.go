// Package paystack is a minimal client for the Paystack transaction API.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.paystack.co"
	DefaultTimeout = 10 * time.Second

	// StatusSuccess is the transaction status Paystack reports for a completed payment.
	StatusSuccess = "success"

	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
	maxPayloadBytes = 1 << 20
)

// ErrTransport marks failures to reach the provider: network errors, timeouts and an open breaker.
var ErrTransport = errors.New("payment provider unreachable")

// ProviderError is a response from Paystack that was not a successful answer.
type ProviderError struct {
	StatusCode int
	Payload    json.RawMessage
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("paystack responded with status %d: %s", e.StatusCode, string(e.Payload))
}

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

type InitializeRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callback_url"`
}

type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Transaction struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type rawResponse struct {
	statusCode int
	body       []byte
}

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*rawResponse]
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
			Name:    "paystack",
			Timeout: breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			IsSuccessful: func(err error) bool {
				var pe *ProviderError
				return err == nil || (errors.As(err, &pe) && pe.StatusCode < http.StatusInternalServerError)
			},
		}),
	}
}

// Initialize starts a transaction for amount minor units and returns where to send the payer.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal initialize request: %w", err)
	}

	return call[Authorization](ctx, c, http.MethodPost, "/transaction/initialize", body)
}

// Verify fetches the current state of the transaction with the given reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	tx, err := call[Transaction](ctx, c, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	if tx.Reference == "" {
		tx.Reference = reference
	}
	return tx, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body []byte) (*T, error) {
	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		return c.send(ctx, method, path, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err != nil {
		return nil, err
	}

	// Paystack signals rejections in the envelope as well as through the status code.
	var resp envelope[T]
	if err := json.Unmarshal(raw.body, &resp); err != nil || !resp.Status {
		return nil, &ProviderError{StatusCode: raw.statusCode, Payload: payloadOf(raw.body)}
	}
	return &resp.Data, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*rawResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Payload: payloadOf(data)}
	}
	return &rawResponse{statusCode: resp.StatusCode, body: data}, nil
}

// payloadOf keeps a JSON body as is and wraps anything else in a JSON string.
func payloadOf(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}
