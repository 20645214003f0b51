package static_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfbridge/ctfbridge/internal/backend/static"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

func TestFetchSampleDataset(t *testing.T) {
	ctx := context.Background()

	provider, err := static.New(ctx, "")
	require.NoError(t, err, "failed to build provider")

	challenges, err := provider.Fetch(ctx)
	require.NoError(t, err, "failed to fetch")
	require.Len(t, challenges, 2, "sample dataset has two challenges")

	assert.Equal(t, "1", challenges[0].ID, "wrong first challenge id")
	assert.Equal(t, "sanity check", challenges[0].Name)
	assert.Equal(t, "misc", challenges[0].Category)
	assert.Equal(t, 50, challenges[0].Points)
	assert.Empty(t, challenges[0].Files, "first challenge carries no files")
	assert.NotNil(t, challenges[0].Files, "files must serialize as an array")

	assert.Equal(t, "2", challenges[1].ID, "wrong second challenge id")
	require.Len(t, challenges[1].Files, 1, "second challenge carries one file")
	assert.Equal(t, "index.html", challenges[1].Files[0].Name)

	again, err := provider.Fetch(ctx)
	require.NoError(t, err, "failed to fetch a second time")
	assert.Equal(t, challenges, again, "fetch must be deterministic")
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	provider, err := static.New(ctx, "")
	require.NoError(t, err, "failed to build provider")

	tests := []struct {
		name        string
		challengeID string
		flag        string
		expected    *protocol.SubmitResult
	}{
		{"CorrectFlag", "1", "FLAG{hello}", protocol.Accepted()},
		{"WrongFlag", "1", "FLAG{goodbye}", protocol.Rejected()},
		{"CaseMatters", "1", "flag{hello}", protocol.Rejected()},
		{"WhitespaceMatters", "1", "FLAG{hello} ", protocol.Rejected()},
		{"UnknownChallenge", "999", "FLAG{hello}", protocol.UnknownChallenge()},
		{"SecondChallenge", "2", "FLAG{view_source}", protocol.Accepted()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := provider.Submit(ctx, tt.challengeID, tt.flag)
			require.NoError(t, err, "submit must not error")
			assert.Equal(t, tt.expected, result, "wrong submit result")
		})
	}
}

func TestSubmitIdempotent(t *testing.T) {
	ctx := context.Background()

	provider, err := static.New(ctx, "")
	require.NoError(t, err, "failed to build provider")

	first, err := provider.Submit(ctx, "1", "FLAG{hello}")
	require.NoError(t, err, "first submit failed")
	second, err := provider.Submit(ctx, "1", "FLAG{hello}")
	require.NoError(t, err, "second submit failed")
	assert.Equal(t, first, second, "resubmitting the same flag must not change the outcome")
}

func TestSolves(t *testing.T) {
	ctx := context.Background()

	provider, err := static.New(ctx, "")
	require.NoError(t, err, "failed to build provider")

	solves, err := provider.Solves(ctx)
	require.NoError(t, err, "failed to list solves")
	require.Len(t, solves, 1, "sample dataset has one solve")

	assert.Equal(t, "1", solves[0].ChallengeID, "wrong solved challenge")
	assert.Equal(t,
		time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC),
		solves[0].SolvedAt.Time(),
		"wrong solve time",
	)
}

func TestLoadDataset(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.yaml")
		content := `challenges:
  - id: "42"
    name: heap feng shui
    category: pwn
    points: 500
    flag: FLAG{grooming}
    files:
      - name: chall
        url: https://example.com/chall
solves:
  - challenge_id: "42"
    solved_at: 2025-06-01T09:30:00Z
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to write dataset")

		provider, err := static.New(ctx, path)
		require.NoError(t, err, "failed to load dataset")

		challenges, err := provider.Fetch(ctx)
		require.NoError(t, err, "failed to fetch")
		require.Len(t, challenges, 1)
		assert.Equal(t, "42", challenges[0].ID)
		assert.Equal(t, 500, challenges[0].Points)

		result, err := provider.Submit(ctx, "42", "FLAG{grooming}")
		require.NoError(t, err, "submit must not error")
		assert.Equal(t, protocol.StatusAccepted, result.Status)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := static.New(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err, "expected to fail on a missing file")
	})

	t.Run("MissingFlag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.yaml")
		content := `challenges:
  - id: "1"
    name: broken
    category: misc
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600), "failed to write dataset")

		_, err := static.New(ctx, path)
		require.Error(t, err, "expected validation to reject a challenge without a flag")
	})
}

func TestNewWithDatasetRejectsDuplicateIDs(t *testing.T) {
	dataset := static.Dataset{
		Challenges: []static.DatasetChallenge{
			{ID: "1", Name: "a", Category: "misc", Flag: "FLAG{a}"},
			{ID: "1", Name: "b", Category: "misc", Flag: "FLAG{b}"},
		},
	}

	_, err := static.NewWithDataset(dataset)
	require.Error(t, err, "expected duplicate ids to be rejected")
	assert.Contains(t, err.Error(), "duplicate challenge id")
}
