package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctfbridge/ctfbridge/internal/backend/postgres"
	"github.com/ctfbridge/ctfbridge/internal/backend/postgres/migrations"
	"github.com/ctfbridge/ctfbridge/internal/config"
	"github.com/ctfbridge/ctfbridge/internal/protocol"
)

// Needs a running postgres. Point CTFBRIDGE_POSTGRES_HOST (plus the usual
// credentials) at one to run these.
func openTestProvider(t *testing.T) *postgres.Provider {
	t.Helper()

	if os.Getenv("CTFBRIDGE_POSTGRES_HOST") == "" {
		t.Skip("CTFBRIDGE_POSTGRES_HOST not set")
	}

	cfg, err := config.GetConfig()
	require.NoError(t, err, "failed to load config")
	require.NotNil(t, cfg.Postgres, "postgres config required")

	ctx := context.Background()
	provider, err := postgres.Open(ctx, cfg)
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = provider.Close() })

	require.NoError(t, migrations.Up(ctx, provider.DB()), "failed to migrate")
	return provider
}

func seed(t *testing.T, provider *postgres.Provider) {
	t.Helper()

	db := provider.DB()
	require.NoError(t, db.Exec("DELETE FROM submission_attempts").Error)
	require.NoError(t, db.Exec("DELETE FROM solves").Error)
	require.NoError(t, db.Exec("DELETE FROM challenge_files").Error)
	require.NoError(t, db.Exec("DELETE FROM challenges").Error)

	require.NoError(t, db.Create(&postgres.Challenge{
		ID:       "1",
		Name:     "sanity check",
		Category: "misc",
		Points:   50,
		Flag:     "FLAG{hello}",
		Position: 0,
	}).Error)
	require.NoError(t, db.Create(&postgres.Challenge{
		ID:       "2",
		Name:     "baby web",
		Category: "web",
		Points:   100,
		Flag:     "FLAG{view_source}",
		Position: 1,
	}).Error)
	require.NoError(t, db.Create(&postgres.Solve{
		ChallengeID: "1",
		SolvedAt:    time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC),
	}).Error)
}

func TestPostgresProvider(t *testing.T) {
	provider := openTestProvider(t)
	seed(t, provider)
	ctx := context.Background()

	t.Run("Fetch", func(t *testing.T) {
		challenges, err := provider.Fetch(ctx)
		require.NoError(t, err, "failed to fetch")
		require.Len(t, challenges, 2)
		assert.Equal(t, "1", challenges[0].ID, "position fixes the order")
		assert.Equal(t, "2", challenges[1].ID)
	})

	t.Run("Submit", func(t *testing.T) {
		result, err := provider.Submit(ctx, "1", "FLAG{hello}")
		require.NoError(t, err)
		assert.Equal(t, protocol.StatusAccepted, result.Status)

		result, err = provider.Submit(ctx, "1", "FLAG{wrong}")
		require.NoError(t, err)
		assert.Equal(t, protocol.StatusRejected, result.Status)

		result, err = provider.Submit(ctx, "999", "FLAG{hello}")
		require.NoError(t, err)
		assert.Equal(t, protocol.StatusError, result.Status)

		var attempts int64
		require.NoError(t, provider.DB().
			Table("submission_attempts").
			Count(&attempts).Error)
		assert.EqualValues(t, 3, attempts, "every submit leaves an attempt row")
	})

	t.Run("Solves", func(t *testing.T) {
		solves, err := provider.Solves(ctx)
		require.NoError(t, err, "failed to list solves")
		require.Len(t, solves, 1)
		assert.Equal(t, "1", solves[0].ChallengeID)
	})
}
