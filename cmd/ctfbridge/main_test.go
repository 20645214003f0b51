package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfbridge/ctfbridge/internal/logger"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

// The orchestrator surfaces the whole trimmed stderr as its error message, so
// an envelope failure must leave exactly one JSON document there.
func TestRunAppEnvelopeFailure(t *testing.T) {
	stdin, err := os.CreateTemp(t.TempDir(), "stdin-*")
	require.NoError(t, err, "failed to create stdin file")
	_, err = stdin.WriteString(`{"action": "nope"}`)
	require.NoError(t, err, "failed to write request")
	_, err = stdin.Seek(0, io.SeekStart)
	require.NoError(t, err, "failed to rewind request")

	origArgs, origStdin, origStderr, origLogger := os.Args, os.Stdin, os.Stderr, logger.Logger
	t.Cleanup(func() {
		os.Args, os.Stdin, os.Stderr, logger.Logger = origArgs, origStdin, origStderr, origLogger
	})

	r, w, err := os.Pipe()
	require.NoError(t, err, "failed to open stderr pipe")

	os.Args = []string{"ctfbridge"}
	os.Stdin = stdin
	os.Stderr = w

	var logs bytes.Buffer
	logger.Logger = slog.New(slog.NewJSONHandler(&logs, nil))

	code := runApp(context.Background())

	require.NoError(t, w.Close())
	stderrBytes, err := io.ReadAll(r)
	require.NoError(t, err, "failed to read captured stderr")

	assert.Equal(t, 1, code, "unknown actions exit non-zero")

	var diag protocol.Diagnostic
	require.NoError(t, json.Unmarshal(stderrBytes, &diag),
		"stderr must carry exactly one JSON document")
	assert.Equal(t, "unknown action: nope", diag.Error, "wrong diagnostic")

	assert.NotContains(t, logs.String(), "error executing subcommands",
		"the diagnostic must not be duplicated by an error log")
}
