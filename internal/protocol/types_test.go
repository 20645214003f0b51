package protocol_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

func TestTimestampMarshal(t *testing.T) {
	t.Run("UTC", func(t *testing.T) {
		ts := protocol.Timestamp(time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC))
		out, err := json.Marshal(ts)
		require.NoError(t, err, "failed to marshal timestamp")
		assert.Equal(t, `"2025-01-01T12:00:00Z"`, string(out), "wrong wire format")
	})

	t.Run("ConvertsToUTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		ts := protocol.Timestamp(time.Date(2025, time.January, 1, 15, 0, 0, 0, loc))
		out, err := json.Marshal(ts)
		require.NoError(t, err, "failed to marshal timestamp")
		assert.Equal(t, `"2025-01-01T12:00:00Z"`, string(out), "expected UTC normalization")
	})
}

func TestTimestampUnmarshal(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		var ts protocol.Timestamp
		err := json.Unmarshal([]byte(`"2025-01-01T12:00:00Z"`), &ts)
		require.NoError(t, err, "failed to unmarshal timestamp")
		assert.Equal(t, time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC), ts.Time(), "wrong parsed time")
	})

	t.Run("RejectsNonString", func(t *testing.T) {
		var ts protocol.Timestamp
		err := json.Unmarshal([]byte(`1735732800`), &ts)
		require.Error(t, err, "expected to fail on a number")
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		var ts protocol.Timestamp
		err := json.Unmarshal([]byte(`"yesterday"`), &ts)
		require.Error(t, err, "expected to fail on a non-RFC3339 string")
	})
}

func TestFileRefHeadersOffWireWhenEmpty(t *testing.T) {
	out, err := json.Marshal(protocol.FileRef{Name: "a", URL: "https://example.com/a"})
	require.NoError(t, err, "failed to marshal file ref")
	assert.NotContains(t, string(out), "headers", "empty headers must stay off the wire")
}

func TestCanonicalResults(t *testing.T) {
	assert.Equal(t,
		&protocol.SubmitResult{Status: protocol.StatusAccepted, Message: "correct!"},
		protocol.Accepted(),
	)
	assert.Equal(t,
		&protocol.SubmitResult{Status: protocol.StatusRejected, Message: "wrong flag"},
		protocol.Rejected(),
	)
	assert.Equal(t,
		&protocol.SubmitResult{Status: protocol.StatusError, Message: "unknown challenge"},
		protocol.UnknownChallenge(),
	)
}
