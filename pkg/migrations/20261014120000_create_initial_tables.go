package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		statements := []string{
			`
			CREATE TABLE libraries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				city TEXT NOT NULL DEFAULT '',
				street TEXT NOT NULL DEFAULT '',
				zip_code INTEGER NOT NULL DEFAULT 0
			)`,
			`
			CREATE TABLE accounts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				email TEXT NOT NULL,
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				role INTEGER NOT NULL DEFAULT 1 CHECK (role BETWEEN 0 AND 4),
				working_at INTEGER REFERENCES libraries (id)
			)`,
			`CREATE UNIQUE INDEX ux_accounts_email ON accounts (email COLLATE NOCASE)`,
			`
			CREATE TABLE publications (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				name TEXT NOT NULL,
				sort_name TEXT NOT NULL DEFAULT '',
				series TEXT,
				synopsis TEXT NOT NULL DEFAULT '',
				authors TEXT NOT NULL DEFAULT '',
				language TEXT NOT NULL DEFAULT '',
				isbn TEXT,
				date_of_publication TIMESTAMPTZ,
				publisher TEXT NOT NULL DEFAULT '',
				genre TEXT NOT NULL DEFAULT '',
				pages INTEGER NOT NULL DEFAULT 0,
				tags TEXT NOT NULL DEFAULT '',
				rating REAL NOT NULL DEFAULT 0,
				rated_sum INTEGER NOT NULL DEFAULT 0,
				rated_times INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX ix_publications_sort_name ON publications (sort_name COLLATE NOCASE)`,
			`
			CREATE TABLE publication_libraries (
				publication_id INTEGER REFERENCES publications (id) ON DELETE CASCADE NOT NULL,
				library_id INTEGER REFERENCES libraries (id) ON DELETE CASCADE NOT NULL,
				PRIMARY KEY (publication_id, library_id)
			)`,
			`
			CREATE TABLE books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				publication_id INTEGER REFERENCES publications (id) NOT NULL,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				condition TEXT NOT NULL DEFAULT 'new',
				section INTEGER NOT NULL DEFAULT 1,
				loaned BOOLEAN NOT NULL DEFAULT FALSE,
				reserved BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`CREATE INDEX ix_books_library_id ON books (library_id)`,
			`CREATE INDEX ix_books_publication_id ON books (publication_id)`,
			`
			CREATE TABLE publication_orders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				publication_id INTEGER REFERENCES publications (id) NOT NULL,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				user_id INTEGER REFERENCES accounts (id) NOT NULL,
				date_of_order TIMESTAMPTZ NOT NULL,
				price INTEGER NOT NULL DEFAULT 0,
				delivered BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			`
			CREATE TABLE book_orders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				order_id INTEGER REFERENCES publication_orders (id) ON DELETE CASCADE NOT NULL UNIQUE,
				number_of_books INTEGER NOT NULL CHECK (number_of_books > 0),
				price_per_book INTEGER NOT NULL CHECK (price_per_book >= 0)
			)`,
			`
			CREATE TABLE loans (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES accounts (id) NOT NULL,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				date_from TIMESTAMPTZ NOT NULL,
				date_to TIMESTAMPTZ NOT NULL,
				extension_to TIMESTAMPTZ,
				fine INTEGER NOT NULL DEFAULT 0,
				loans_id INTEGER REFERENCES accounts (id),
				receives_id INTEGER REFERENCES accounts (id)
			)`,
			`CREATE INDEX ix_loans_library_id ON loans (library_id)`,
			`CREATE INDEX ix_loans_user_id ON loans (user_id)`,
			`
			CREATE TABLE loan_books (
				loan_id INTEGER REFERENCES loans (id) ON DELETE CASCADE NOT NULL,
				book_id INTEGER REFERENCES books (id) NOT NULL,
				PRIMARY KEY (loan_id, book_id)
			)`,
			`CREATE INDEX ix_loan_books_book_id ON loan_books (book_id)`,
			`
			CREATE TABLE waiting_list_entries (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date_created TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER REFERENCES accounts (id) NOT NULL,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				date_from TIMESTAMPTZ NOT NULL,
				date_to TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX ix_waiting_list_entries_date_created ON waiting_list_entries (date_created, id)`,
			`
			CREATE TABLE waiting_list_books (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				entry_id INTEGER REFERENCES waiting_list_entries (id) ON DELETE CASCADE NOT NULL,
				book_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				UNIQUE (entry_id, position)
			)`,
			`
			CREATE TABLE votings (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				library_id INTEGER REFERENCES libraries (id) NOT NULL,
				publication_id INTEGER REFERENCES publications (id) NOT NULL,
				votes INTEGER NOT NULL DEFAULT 0,
				completed BOOLEAN NOT NULL DEFAULT FALSE
			)`,
			// At most one open voting per (library, publication).
			`CREATE UNIQUE INDEX ux_votings_open ON votings (library_id, publication_id) WHERE completed = FALSE`,
			`
			CREATE TABLE voting_voters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				voting_id INTEGER REFERENCES votings (id) ON DELETE CASCADE NOT NULL,
				account_id INTEGER REFERENCES accounts (id) NOT NULL,
				UNIQUE (voting_id, account_id)
			)`,
		}
		for _, stmt := range statements {
			if _, err := db.Exec(stmt); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		tables := []string{
			"voting_voters",
			"votings",
			"waiting_list_books",
			"waiting_list_entries",
			"loan_books",
			"loans",
			"book_orders",
			"publication_orders",
			"books",
			"publication_libraries",
			"publications",
			"accounts",
			"libraries",
		}
		for _, table := range tables {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	Migrations.MustRegister(up, down)
}
