package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`ALTER TABLE books ADD COLUMN reserved_loan_id INTEGER REFERENCES loans (id) ON DELETE SET NULL`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_books_reserved_loan_id ON books (reserved_loan_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP INDEX IF EXISTS ix_books_reserved_loan_id`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`ALTER TABLE books DROP COLUMN reserved_loan_id`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
