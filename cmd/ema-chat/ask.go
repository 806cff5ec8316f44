package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/internal/exitcode"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text...>",
		Short: "Ask a single question and stream the reply to stdout",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			session, err := opts.newSession(cfg,
				orchestration.WithResponseCallback(func(segment string) {
					fmt.Fprint(out, segment)
				}),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			outcome := session.SendMessage(ctx, strings.Join(args, " "))
			if len(session.Transcript()) > 1 {
				fmt.Fprintln(out)
			}
			return askResult(outcome)
		},
	}
}

// askResult maps the outcome of a one-shot request to the process exit code.
func askResult(outcome orchestration.Outcome) error {
	switch outcome.Kind {
	case orchestration.OutcomeCompleted, orchestration.OutcomeDiscarded:
		return nil
	case orchestration.OutcomeAborted:
		return exitcode.Cancel()
	case orchestration.OutcomeRejected:
		return exitcode.Failed("nothing to send, the question is empty")
	default:
		if outcome.Err != nil {
			return exitcode.Failed(outcome.Err.UserMessage() + " (" + outcome.Err.Error() + ")")
		}
		return exitcode.Failed("request failed")
	}
}
