package cmds

import (
	"context"

	"github.com/spf13/cobra"
	otellib "go.opentelemetry.io/otel"
)

var tracer = otellib.Tracer("github.com/ctfbridge/ctfbridge/cmd/ctfbridge")

var rootCmd = &cobra.Command{
	Use:           "ctfbridge",
	Short:         "CTF platform backend speaking the sync stdio protocol",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
