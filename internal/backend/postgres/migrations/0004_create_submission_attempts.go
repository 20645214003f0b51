package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0004, Down0004)
}

// submission_attempts is a side-effect log only; nothing in the protocol
// reads it back.
func Up0004(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `
CREATE TABLE submission_attempts (
	id uuid PRIMARY KEY DEFAULT uuidv7_sub_ms(),
	challenge_id text NOT NULL,
	flag text NOT NULL,
	status text NOT NULL,
	request jsonb,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
`},
		statement{query: `CREATE INDEX idx_submission_attempts_challenge_id ON submission_attempts (challenge_id);`},
	)
}

func Down0004(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `DROP TABLE submission_attempts;`},
	)
}
