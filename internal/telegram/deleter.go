package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	DefaultBaseURL       = "https://api.telegram.org"
	DefaultDeleteTimeout = 10 * time.Second

	maxResponseBytes = 64 << 10
)

var (
	ErrMissingToken       = errors.New("bot token is not configured")
	ErrMissingIdentifier  = errors.New("chat id or message id is missing")
	ErrUnexpectedResponse = errors.New("unexpected response from telegram")
)

// APIError is an ok=false reply from the Bot API.
type APIError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d (http %d): %s", e.ErrorCode, e.StatusCode, e.Description)
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Deleter calls deleteMessage on the Bot API, once per call.
type Deleter struct {
	botToken string
	baseURL  string
	client   *http.Client
	logger   *slog.Logger
}

// NewDeleter creates a Deleter. A non-positive timeout falls back to DefaultDeleteTimeout.
func NewDeleter(botToken string, timeout time.Duration, logger *slog.Logger) *Deleter {
	if timeout <= 0 {
		timeout = DefaultDeleteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deleter{
		botToken: botToken,
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// WithBaseURL overrides the Bot API base URL.
func (d *Deleter) WithBaseURL(baseURL string) *Deleter {
	if baseURL != "" {
		d.baseURL = baseURL
	}
	return d
}

// Ready returns ErrMissingToken if the Deleter cannot authenticate.
func (d *Deleter) Ready() error {
	if d.botToken == "" {
		return ErrMissingToken
	}
	return nil
}

// DeleteMessage issues a single deleteMessage request and classifies the reply.
// The error is nil only for OutcomeDeleted; for API outcomes it is an *APIError.
func (d *Deleter) DeleteMessage(ctx context.Context, chatID int64, messageID int) (Outcome, error) {
	if err := d.Ready(); err != nil {
		return OutcomeRejected, err
	}
	if chatID == 0 || messageID <= 0 {
		return OutcomeRejected, ErrMissingIdentifier
	}

	payload, err := json.Marshal(deleteMessageRequest{ChatID: chatID, MessageID: messageID})
	if err != nil {
		return OutcomeRejected, fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/deleteMessage", d.baseURL, d.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return OutcomeTransportError, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	d.logger.Debug("Sending delete request", "chat_id", chatID, "message_id", messageID)

	resp, err := d.client.Do(req)
	if err != nil {
		// url.Error would otherwise echo the token-bearing URL.
		return OutcomeTransportError, fmt.Errorf("delete request: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return OutcomeTransportError, fmt.Errorf("read response: %w", err)
	}

	d.logger.Debug("Delete response", "status", resp.StatusCode, "body", string(body))

	var r apiResponse
	decodeErr := json.Unmarshal(body, &r)

	if resp.StatusCode == http.StatusOK {
		if decodeErr != nil {
			return OutcomeTransportError, fmt.Errorf("decode response: %w", decodeErr)
		}
		if r.OK {
			return OutcomeDeleted, nil
		}
		return d.apiOutcome(resp.StatusCode, r)
	}

	// Non-200 replies are still triaged when they carry the API error shape.
	if decodeErr != nil || r.Description == "" {
		return OutcomeTransportError, fmt.Errorf("%w: http %d: %s", ErrUnexpectedResponse, resp.StatusCode, truncate(body, 256))
	}
	return d.apiOutcome(resp.StatusCode, r)
}

func (d *Deleter) apiOutcome(status int, r apiResponse) (Outcome, error) {
	code := r.ErrorCode
	if code == 0 {
		code = status
	}
	return classifyDescription(r.Description), &APIError{
		StatusCode:  status,
		ErrorCode:   code,
		Description: r.Description,
	}
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
