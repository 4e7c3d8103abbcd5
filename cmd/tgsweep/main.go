package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/merrkry/tgsweep/internal/config"
	"github.com/merrkry/tgsweep/internal/server"
	"github.com/merrkry/tgsweep/internal/service"
	"github.com/merrkry/tgsweep/internal/telegram"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:          "tgsweep",
		Short:        "Delete Telegram service messages delivered to a webhook",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(v))
	return root
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	var dropPending bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(v, cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), v, dropPending)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", ":8080", "address to listen on")
	flags.String("webhook-path", "/webhook", "path Telegram posts updates to")
	flags.String("public-url", "", "public base URL; when set, the webhook is registered on startup")
	flags.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.BoolVar(&dropPending, "drop-pending", false, "drop pending updates when registering the webhook")

	return cmd
}

var flagBindings = map[string]string{
	config.KeyListenAddr:  "listen",
	config.KeyWebhookPath: "webhook-path",
	config.KeyPublicURL:   "public-url",
	config.KeyLogLevel:    "log-level",
}

// bindFlags lets explicitly set flags override the environment.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagBindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func serve(ctx context.Context, v *viper.Viper, dropPending bool) error {
	cfg, err := config.Load(v)
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		return err
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		slog.Error("Failed to create logger", "err", err)
		return err
	}
	slog.SetDefault(logger)

	if cfg.BotToken == "" {
		logger.Error("BOT_TOKEN is not set, every webhook delivery will be rejected")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.PublicURL != "" && cfg.BotToken != "" {
		if err := registerWebhook(ctx, cfg, logger, dropPending); err != nil {
			logger.Error("Failed to register webhook", "err", err)
			return err
		}
	}

	deleter := telegram.NewDeleter(cfg.BotToken, cfg.DeleteTimeout, logger).WithBaseURL(cfg.APIURL)
	sweeper := service.NewSweepService(deleter, logger, service.WithObserver(service.LogObserver{Logger: logger}))
	srv := server.New(cfg.ListenAddr, cfg.WebhookPath, sweeper, logger)

	err = srv.Run(ctx)
	if err != nil {
		logger.Error("Webhook server stopped", "err", err)
		return err
	}
	logger.Info("Received shutdown signal, stopped the service.")
	return nil
}

func registerWebhook(ctx context.Context, cfg *config.Config, logger *slog.Logger, dropPending bool) error {
	webhookURL, err := url.JoinPath(cfg.PublicURL, cfg.WebhookPath)
	if err != nil {
		return fmt.Errorf("invalid public URL %q: %w", cfg.PublicURL, err)
	}

	registrar, err := telegram.NewRegistrar(cfg.BotToken, cfg.APIURL, logger)
	if err != nil {
		return err
	}
	return registrar.Register(ctx, webhookURL, dropPending)
}
