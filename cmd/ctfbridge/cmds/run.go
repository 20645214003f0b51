package cmds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	otellib "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ctfbridge/ctfbridge/internal/backend"
	"github.com/ctfbridge/ctfbridge/internal/config"
	"github.com/ctfbridge/ctfbridge/internal/exchange"
	"github.com/ctfbridge/ctfbridge/internal/exitcode"
	"github.com/ctfbridge/ctfbridge/internal/logger"
	otelctfbridge "github.com/ctfbridge/ctfbridge/internal/otel"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Handle one protocol request from stdin and exit",
	RunE:  runExchange,
}

func runExchange(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.GetConfig()
	if err != nil {
		return startupFail(fmt.Errorf("invalid configuration: %v", err))
	}

	logger.LogLevel.Set(slog.Level(cfg.Logging.App.Level))

	if cfg.Logging.EnableTelemetry {
		shutdown, err := otelctfbridge.SetupOTelSDK(ctx, cfg.Logging.UseOTLP)
		if err != nil {
			logger.Logger.Warn("failed to setup otel sdk", "error", err)
		}
		defer func() {
			fail := shutdown(context.Background())
			if fail != nil {
				logger.Logger.Warn("no clean shutdown for otel", "error", fail)
			}
		}()

		// Link to the orchestrator's invocation span when it handed one
		// over through the environment.
		carrier := otelctfbridge.CreateEnvCarrier()
		extracted := otellib.GetTextMapPropagator().Extract(context.Background(), carrier)

		var span trace.Span
		ctx, span = tracer.Start(
			ctx,
			"Run",
			trace.WithNewRoot(),
			trace.WithLinks(trace.LinkFromContext(extracted)),
		)
		defer span.End()
	}

	b, closeBackend, err := backend.Build(ctx, cfg)
	if err != nil {
		return startupFail(err)
	}
	defer func() {
		fail := closeBackend(context.Background())
		if fail != nil {
			logger.Logger.Warn("failed to close backend", "error", fail)
		}
	}()

	return exchange.Run(ctx, os.Stdin, os.Stdout, os.Stderr, b)
}

// startupFail reports failures that happen before the exchange begins. They
// follow the envelope-failure shape: diagnostic on stderr, non-zero exit,
// nothing on stdout.
func startupFail(cause error) error {
	err := json.NewEncoder(os.Stderr).Encode(protocol.Diagnostic{Error: cause.Error()})
	if err != nil {
		logger.Logger.Error("failed to write diagnostic", "error", err)
	}

	return exitcode.Wrap(exitcode.ExitErrored, cause)
}

func init() {
	rootCmd.AddCommand(runCmd)

	// The orchestrator execs the configured backend command with no
	// arguments, so the bare binary performs the exchange too.
	rootCmd.RunE = runExchange
}
