package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0002, Down0002)
}

func Up0002(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `
CREATE TABLE challenges (
	id text PRIMARY KEY,
	name text NOT NULL,
	category text NOT NULL,
	description text NOT NULL DEFAULT '',
	points integer NOT NULL DEFAULT 0 CHECK (points >= 0),
	flag text NOT NULL,
	position integer NOT NULL DEFAULT 0,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
`},
		statement{query: `
CREATE TABLE challenge_files (
	id uuid PRIMARY KEY DEFAULT uuidv7_sub_ms(),
	challenge_id text NOT NULL REFERENCES challenges (id) ON DELETE CASCADE,
	name text NOT NULL,
	url text NOT NULL,
	headers jsonb,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
);
`},
		statement{query: `CREATE INDEX idx_challenge_files_challenge_id ON challenge_files (challenge_id);`},
	)
}

func Down0002(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx,
		statement{query: `DROP TABLE challenge_files;`},
		statement{query: `DROP TABLE challenges;`},
	)
}
