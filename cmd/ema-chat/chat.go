package main

import (
	"os"
	"os/signal"

	"github.com/koscakluka/ema-chat/internal/tui"
	"github.com/spf13/cobra"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			bridge := tui.NewBridge()
			session, err := opts.newSession(cfg, bridge.Options()...)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return tui.Run(ctx, session, bridge)
		},
	}
}
