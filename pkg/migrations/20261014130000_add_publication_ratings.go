package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE publication_ratings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				publication_id INTEGER REFERENCES publications (id) ON DELETE CASCADE NOT NULL,
				account_id INTEGER REFERENCES accounts (id) NOT NULL,
				rate INTEGER NOT NULL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE UNIQUE INDEX ux_publication_ratings_publication_account ON publication_ratings (publication_id, account_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP TABLE IF EXISTS publication_ratings`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
