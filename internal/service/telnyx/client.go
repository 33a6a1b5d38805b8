package telnyx

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

	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/models"
)

const (
	DefaultBaseURL = "https://api.telnyx.com/v2"
	defaultTimeout = 10 * time.Second

	// Error bodies longer than that are cut before logging or returning
	maxErrorBody = 4 << 10
)

const (
	CodeUnauthorized = "unauthorized"
	CodeRejected     = "rejected"
	CodeTransport    = "transport"
	CodeDecode       = "decode"
)

// One item of the provider 'errors' array
type APIError struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type Error struct {
	Code   string
	Status int
	Errors []APIError
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("telnyx: code: %s, status: %d, error: %s", e.Code, e.Status, e.Message())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the first provider error, or the wrapped error when the provider sent none
func (e *Error) Message() string {
	if len(e.Errors) > 0 {
		first := e.Errors[0]
		if first.Detail != "" {
			return first.Title + ": " + first.Detail
		}
		return first.Title
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

type Config struct {
	APIKey string

	// Telnyx v2 API root, e.g. https://api.telnyx.com/v2
	// If not set than default is used
	BaseURL string

	// Timeout for a single request
	// If not set than default is used
	Timeout time.Duration
}

type DialRequest struct {
	ConnectionID string `json:"connection_id"`
	To           string `json:"to"`
	From         string `json:"from"`
	WebhookURL   string `json:"webhook_url"`
}

type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration

	client *http.Client
	logger logger.Logger
}

func NewClient(cfg Config, l logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  &http.Client{},
		logger:  l.WithGroup("telnyx"),
	}
}

// Dial creates an outbound call
func (c *Client) Dial(ctx context.Context, dial DialRequest) (models.Call, error) {
	var resp struct {
		Data models.Call `json:"data"`
	}

	err := c.post(ctx, "/calls", dial, &resp)
	if err != nil {
		return models.Call{}, err
	}

	c.logger.Debug("Call created", "call_control_id", resp.Data.CallControlID, "to", dial.To)
	return resp.Data, nil
}

// StartAIAssistant attaches the voice assistant to an answered call
func (c *Client) StartAIAssistant(ctx context.Context, callControlID string, assistantID string) error {
	body := struct {
		AssistantID string `json:"assistant_id"`
	}{AssistantID: assistantID}

	path := "/calls/" + url.PathEscape(callControlID) + "/actions/ai_assistant_start"
	return c.post(ctx, path, body, nil)
}

// post sends JSON body and decodes 2xx response into out (if not nil)
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Code: CodeTransport, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Code: CodeTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Code: CodeTransport, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close() // nolint:errcheck

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.processSuccess(resp, out)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return c.processFailure(resp, CodeUnauthorized)
	default:
		return c.processFailure(resp, CodeRejected)
	}
}

func (c *Client) processSuccess(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err := json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		c.logger.Warn("Failed to decode response", "status_code", resp.StatusCode, "error", err)
		return &Error{Code: CodeDecode, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (c *Client) processFailure(resp *http.Response, code string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Errors []APIError `json:"errors"`
	}
	apiErr := &Error{Code: code, Status: resp.StatusCode}

	if err := json.Unmarshal(raw, &body); err == nil && len(body.Errors) > 0 {
		apiErr.Errors = body.Errors
	} else {
		apiErr.Err = errors.New(strings.TrimSpace(string(raw)))
	}

	c.logger.Warn("Telnyx request failed",
		"status_code", resp.StatusCode,
		"code", code,
		"error", apiErr.Message(),
		"api_key", logger.Mask(c.apiKey),
	)
	return apiErr
}
