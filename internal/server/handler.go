package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"

	"github.com/google/uuid"

	"github.com/merrkry/tgsweep/internal/model"
	"github.com/merrkry/tgsweep/internal/service"
)

const maxBodyBytes = 1 << 20

const (
	msgOK              = "OK"
	msgMissingToken    = "Error: BOT_TOKEN is not set"
	msgEmptyBody       = "Error: Empty request body"
	msgBodyTooLarge    = "Error: Request body too large"
	msgInvalidJSON     = "Error: Invalid JSON format"
	msgInvalidPayload  = "Error: Invalid payload format"
	msgMissingDate     = "Error: Missing 'date' field in message"
	prefixParseError   = "Error parsing update: "
	prefixProcessError = "Error processing message: "
)

type Sweeper interface {
	Ready() error
	Sweep(ctx context.Context, update *model.Update) service.Result
}

// WebhookHandler acknowledges every well-formed update with 200, whatever
// the deletion outcome, so that Telegram does not redeliver it.
type WebhookHandler struct {
	sweeper Sweeper
	logger  *slog.Logger
}

func NewWebhookHandler(sweeper Sweeper, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{sweeper: sweeper, logger: logger}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", uuid.NewString())

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Error in processing", "panic", rec, "stack", string(debug.Stack()))
			writeStatus(logger, w, http.StatusInternalServerError, fmt.Sprintf("%s%v", prefixProcessError, rec))
		}
	}()

	if err := h.sweeper.Ready(); err != nil {
		logger.Error("BOT_TOKEN is not set", "err", err)
		writeStatus(logger, w, http.StatusInternalServerError, msgMissingToken)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Error("Request body too large", "limit", tooLarge.Limit)
			writeStatus(logger, w, http.StatusBadRequest, msgBodyTooLarge)
			return
		}
		logger.Error("Failed to read request body", "err", err)
		writeStatus(logger, w, http.StatusBadRequest, msgEmptyBody)
		return
	}

	status, msg := validatePayload(logger, body)
	if status != http.StatusOK {
		writeStatus(logger, w, status, msg)
		return
	}

	var update model.Update
	if err := json.Unmarshal(body, &update); err != nil {
		logger.Error("Failed to parse update", "err", err)
		writeStatus(logger, w, http.StatusInternalServerError, prefixParseError+err.Error())
		return
	}

	h.sweeper.Sweep(r.Context(), &update)

	logger.Debug("Webhook handled", "update_id", update.UpdateID)
	writeStatus(logger, w, http.StatusOK, msgOK)
}

// validatePayload applies the structural checks that must reject a delivery
// before any typed decoding happens.
func validatePayload(logger *slog.Logger, body []byte) (int, string) {
	if len(bytes.TrimSpace(body)) == 0 {
		logger.Error("Empty body in request")
		return http.StatusBadRequest, msgEmptyBody
	}
	if !json.Valid(body) {
		logger.Error("Invalid JSON in body")
		return http.StatusBadRequest, msgInvalidJSON
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		logger.Error("Body is not a JSON object")
		return http.StatusBadRequest, msgInvalidPayload
	}
	if len(envelope) == 0 {
		logger.Error("Empty update object in request")
		return http.StatusBadRequest, msgEmptyBody
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		keys := make([]string, 0, len(envelope))
		for k := range envelope {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug("Received webhook payload", "keys", keys)
	}

	if raw, ok := envelope["message"]; ok {
		var message map[string]json.RawMessage
		if err := json.Unmarshal(raw, &message); err != nil || message == nil {
			logger.Error("Missing or invalid 'date' field in message")
			return http.StatusBadRequest, msgMissingDate
		}
		if _, ok := message["date"]; !ok {
			logger.Error("Missing or invalid 'date' field in message")
			return http.StatusBadRequest, msgMissingDate
		}
	}

	return http.StatusOK, ""
}

func writeStatus(logger *slog.Logger, w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		logger.Error("Failed to write response", "status", status, "err", err)
	}
}
