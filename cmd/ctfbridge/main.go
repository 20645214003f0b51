package main

import (
	"context"
	"errors"
	"os"

	"github.com/ctfbridge/ctfbridge/cmd/ctfbridge/cmds"
	"github.com/ctfbridge/ctfbridge/internal/exitcode"
	"github.com/ctfbridge/ctfbridge/internal/logger"
)

func runApp(ctx context.Context) int {
	err := cmds.Execute(ctx)
	if err != nil {
		var ee exitcode.ExitError
		if errors.As(err, &ee) {
			// The failing layer already wrote its diagnostic to stderr;
			// logging it again would glue a second document onto the stream.
			logger.Logger.Debug("exiting non-zero", "code", ee.Code, "error", err)
			return ee.Code
		}

		logger.Logger.Error("error executing subcommands", "error", err)
		return exitcode.ExitErrored
	}

	return exitcode.ExitNormal
}

func main() {
	logger.InitSlog()

	ctx := context.Background()

	os.Exit(runApp(ctx))
}
