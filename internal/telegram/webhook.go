package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/merrkry/tgsweep/internal/model"
)

// AllowedUpdates restricts webhook deliveries to the kinds that can carry service messages.
var AllowedUpdates = func() []string {
	kinds := make([]string, 0, len(model.MessageKinds))
	for _, k := range model.MessageKinds {
		kinds = append(kinds, k.String())
	}
	return kinds
}()

type WebhookStatus struct {
	URL                string
	PendingUpdateCount int
	LastErrorMessage   string
}

// Registrar manages the bot's webhook registration.
type Registrar struct {
	bot    *bot.Bot
	logger *slog.Logger
}

func NewRegistrar(botToken string, serverURL string, logger *slog.Logger) (*Registrar, error) {
	if botToken == "" {
		return nil, ErrMissingToken
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []bot.Option{bot.WithSkipGetMe()}
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(serverURL))
	}
	b, err := bot.New(botToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	return &Registrar{bot: b, logger: logger}, nil
}

func (r *Registrar) Register(ctx context.Context, url string, dropPending bool) error {
	ok, err := r.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:                url,
		AllowedUpdates:     AllowedUpdates,
		DropPendingUpdates: dropPending,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to set webhook: %w", ErrUnexpectedResponse)
	}
	r.logger.Info("Webhook registered", "url", url, "allowed_updates", AllowedUpdates)
	return nil
}

func (r *Registrar) Info(ctx context.Context) (*WebhookStatus, error) {
	info, err := r.bot.GetWebhookInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook info: %w", err)
	}
	return &WebhookStatus{
		URL:                info.URL,
		PendingUpdateCount: info.PendingUpdateCount,
		LastErrorMessage:   info.LastErrorMessage,
	}, nil
}

func (r *Registrar) Unregister(ctx context.Context, dropPending bool) error {
	ok, err := r.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{
		DropPendingUpdates: dropPending,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("failed to delete webhook: %w", ErrUnexpectedResponse)
	}
	r.logger.Info("Webhook removed")
	return nil
}
