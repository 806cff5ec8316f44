package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/internal/config"
	"github.com/koscakluka/ema-chat/internal/exitcode"
	"github.com/spf13/cobra"
)

const telemetryShutdownTimeout = 5 * time.Second

type rootOptions struct {
	configFile string
	endpoint   string
	verbose    bool
	trace      bool

	shutdownTelemetry func(context.Context) error
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ema-chat",
		Short: "Chat with a streaming assistant endpoint",
		Long: `ema-chat sends a conversation to a chat endpoint and renders the
streamed reply as it arrives.

Examples:
  ema-chat ask "what is a goroutine?"
  ema-chat chat
  ema-chat config schema > ema-chat.schema.json`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			shutdown, err := setupTelemetry(cmd.ErrOrStderr(), opts.verbose, opts.trace)
			if err != nil {
				return err
			}
			opts.shutdownTelemetry = shutdown
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default is $XDG_CONFIG_HOME/ema-chat/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "Chat endpoint URL, overrides the config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Write debug logs to stderr")
	cmd.PersistentFlags().BoolVar(&opts.trace, "trace", false, "Write trace spans to stderr")

	cmd.AddCommand(newAskCmd(opts), newChatCmd(opts), newConfigCmd())
	return cmd, opts
}

// run executes cmd and flushes telemetry afterwards, whether or not the
// command failed.
func run(cmd *cobra.Command, opts *rootOptions) error {
	err := cmd.Execute()
	return errors.Join(err, opts.shutdown())
}

func (opts *rootOptions) shutdown() error {
	if opts.shutdownTelemetry == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	err := opts.shutdownTelemetry(ctx)
	opts.shutdownTelemetry = nil
	return err
}

func (opts *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(opts.endpoint)
	return cfg, nil
}

// newSession builds an orchestrator talking to the configured endpoint.
func (opts *rootOptions) newSession(cfg *config.Config, orchestratorOpts ...orchestration.OrchestratorOption) (*timeoutSession, error) {
	client, err := cfg.NewClient()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	orchestratorOpts = append([]orchestration.OrchestratorOption{orchestration.WithStreamingLLM(client)}, orchestratorOpts...)
	return &timeoutSession{
		Orchestrator: orchestration.NewOrchestrator(orchestratorOpts...),
		timeout:      cfg.Timeout,
	}, nil
}

// timeoutSession layers the configured per-request timeout on SendMessage.
type timeoutSession struct {
	*orchestration.Orchestrator
	timeout time.Duration
}

func (s *timeoutSession) SendMessage(ctx context.Context, text string) orchestration.Outcome {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.Orchestrator.SendMessage(ctx, text)
}

func Execute() {
	err := run(newRootCmd())
	if err == nil {
		return
	}

	var exitErr exitcode.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code != exitcode.Cancelled {
			fmt.Fprintln(os.Stderr, "Error:", exitErr.Message)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitcode.Error)
}
