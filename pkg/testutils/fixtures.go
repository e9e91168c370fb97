package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/librisapp/libris/pkg/migrations"
	"github.com/librisapp/libris/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"
)

var emailSeq atomic.Int64

// NewTestDB returns a migrated in-memory database that is closed when the test
// ends.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	models.RegisterModels(db)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CreateLibrary inserts a library with the given name.
func CreateLibrary(t *testing.T, db *bun.DB, name string) *models.Library {
	t.Helper()

	now := time.Now()
	library := &models.Library{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		City:      "Brno",
		Street:    "Kolejni 2",
		ZipCode:   61200,
	}
	_, err := db.NewInsert().Model(library).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return library
}

// AccountOption customizes an account created by CreateAccount.
type AccountOption func(*models.Account)

// WorkingAt assigns the account to a library.
func WorkingAt(library *models.Library) AccountOption {
	return func(a *models.Account) {
		a.WorkingAtID = &library.ID
	}
}

// WithPassword stores a bcrypt hash of password on the account.
func WithPassword(password string) AccountOption {
	return func(a *models.Account) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		a.PasswordHash = string(hash)
	}
}

// CreateAccount inserts an account with the given role and a unique email.
func CreateAccount(t *testing.T, db *bun.DB, role models.Role, opts ...AccountOption) *models.Account {
	t.Helper()

	now := time.Now()
	account := &models.Account{
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        fmt.Sprintf("%s-%d@example.com", role, emailSeq.Add(1)),
		FirstName:    "Test",
		LastName:     role.String(),
		PasswordHash: "hash",
		Role:         role,
	}
	for _, opt := range opts {
		opt(account)
	}
	_, err := db.NewInsert().Model(account).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return account
}

// CreatePublication inserts a publication with the given name.
func CreatePublication(t *testing.T, db *bun.DB, name string) *models.Publication {
	t.Helper()

	now := time.Now()
	publication := &models.Publication{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
		Authors:   "Frank Herbert",
		Language:  "en",
		Pages:     412,
	}
	_, err := db.NewInsert().Model(publication).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return publication
}

// CreateBooks inserts n available copies of publication at library.
func CreateBooks(t *testing.T, db *bun.DB, publication *models.Publication, library *models.Library, n int) []*models.Book {
	t.Helper()

	now := time.Now()
	books := make([]*models.Book, 0, n)
	for i := 0; i < n; i++ {
		books = append(books, &models.Book{
			CreatedAt:     now,
			UpdatedAt:     now,
			PublicationID: publication.ID,
			LibraryID:     library.ID,
			Condition:     models.BookConditionNew,
			Section:       models.DefaultBookSection,
		})
	}
	_, err := db.NewInsert().Model(&books).Returning("*").Exec(context.Background())
	require.NoError(t, err)
	return books
}

// ReloadBook returns the current row for book.
func ReloadBook(t *testing.T, db *bun.DB, book *models.Book) *models.Book {
	t.Helper()

	reloaded := &models.Book{}
	err := db.NewSelect().Model(reloaded).Where("b.id = ?", book.ID).Scan(context.Background())
	require.NoError(t, err)
	return reloaded
}

// SetBookFlags overwrites the availability flags of book. A reservation set
// here is not held for any loan.
func SetBookFlags(t *testing.T, db *bun.DB, book *models.Book, loaned, reserved bool) {
	t.Helper()

	_, err := db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("loaned = ?", loaned).
		Set("reserved = ?", reserved).
		Set("reserved_loan_id = NULL").
		Where("id = ?", book.ID).
		Exec(context.Background())
	require.NoError(t, err)
	book.Loaned = loaned
	book.Reserved = reserved
	book.ReservedLoanID = nil
}
