package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/merrkry/tgsweep/internal/config"
	"github.com/merrkry/tgsweep/internal/telegram"
)

const requestTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:          "tgsweep-setup",
		Short:        "Manage the Telegram webhook used by tgsweep",
		SilenceUsage: true,
	}

	webhook := &cobra.Command{
		Use:   "webhook",
		Short: "Register, inspect or remove the bot webhook",
	}
	webhook.AddCommand(newSetCmd(v), newInfoCmd(v), newDeleteCmd(v))
	root.AddCommand(webhook)

	return root
}

func newRegistrar(v *viper.Viper) (*telegram.Registrar, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set: %w", telegram.ErrMissingToken)
	}
	return telegram.NewRegistrar(cfg.BotToken, cfg.APIURL, logger)
}

func newSetCmd(v *viper.Viper) *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "set <url>",
		Short: "Point the bot webhook at url",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistrar(v)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if err := r.Register(ctx, args[0], dropPending); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook set to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "drop updates queued while no webhook was set")
	return cmd
}

func newInfoCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistrar(v)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			status, err := r.Info(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL=%s\n", status.URL)
			fmt.Fprintf(out, "PENDING_UPDATES=%d\n", status.PendingUpdateCount)
			if status.LastErrorMessage != "" {
				fmt.Fprintf(out, "LAST_ERROR=%s\n", status.LastErrorMessage)
			}
			return nil
		},
	}
}

func newDeleteCmd(v *viper.Viper) *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRegistrar(v)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if err := r.Unregister(ctx, dropPending); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Webhook removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "drop pending updates")
	return cmd
}
