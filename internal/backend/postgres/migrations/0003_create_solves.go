package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0003, Down0003)
}

func Up0003(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `
CREATE TABLE solves (
	id uuid PRIMARY KEY DEFAULT uuidv7_sub_ms(),
	challenge_id text NOT NULL REFERENCES challenges (id) ON DELETE CASCADE,
	solved_at timestamptz NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
`},
		statement{query: `CREATE INDEX idx_solves_solved_at ON solves (solved_at);`},
	)
}

func Down0003(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `DROP TABLE solves;`},
	)
}
