package testutils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

type handler struct {
	db *bun.DB
}

// createAccountRequest is the request body for seeding an account with any
// role, bypassing the promotion flow.
type createAccountRequest struct {
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required"`
	Role      models.Role `json:"role" validate:"gte=0,lte=4"`
	WorkingAt *int        `json:"working_at"`
}

// createAccount seeds an account.
// POST /test/accounts.
func (h *handler) createAccount(c echo.Context) error {
	ctx := c.Request().Context()

	params := createAccountRequest{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	now := time.Now()
	account := &models.Account{
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        params.Email,
		PasswordHash: string(hash),
		Role:         params.Role,
		WorkingAtID:  params.WorkingAt,
	}
	if _, err := h.db.NewInsert().Model(account).Returning("*").Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create account")
	}

	return response.Success(c, account)
}

type deleteAllResponse struct {
	Deleted int `json:"deleted"`
}

// deleteAll wipes every domain table so end-to-end runs start clean.
// DELETE /test/data.
func (h *handler) deleteAll(c echo.Context) error {
	ctx := c.Request().Context()

	tables := []string{
		"voting_voters",
		"votings",
		"waiting_list_books",
		"waiting_list_entries",
		"loan_books",
		"loans",
		"book_orders",
		"publication_orders",
		"publication_ratings",
		"books",
		"publication_libraries",
		"publications",
		"accounts",
		"libraries",
	}

	deleted := 0
	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, table := range tables {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
			if err != nil {
				return errors.Wrapf(err, "failed to clear %s", table)
			}
			n, _ := res.RowsAffected()
			deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, deleteAllResponse{Deleted: deleted})
}

type createBooksRequest struct {
	PublicationID int `json:"publication_id" validate:"required"`
	LibraryID     int `json:"library_id" validate:"required"`
	Count         int `json:"count" validate:"required,min=1,max=100"`
}

// createBooks seeds copies of a publication at a library without going
// through an order.
// POST /test/books.
func (h *handler) createBooks(c echo.Context) error {
	ctx := c.Request().Context()

	params := createBooksRequest{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	exists, err := h.db.NewSelect().
		Model((*models.Publication)(nil)).
		Where("id = ?", params.PublicationID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Publication")
	}

	now := time.Now()
	books := make([]*models.Book, 0, params.Count)
	for i := 0; i < params.Count; i++ {
		books = append(books, &models.Book{
			CreatedAt:     now,
			UpdatedAt:     now,
			PublicationID: params.PublicationID,
			LibraryID:     params.LibraryID,
			Condition:     models.BookConditionNew,
			Section:       models.DefaultBookSection,
		})
	}
	if _, err := h.db.NewInsert().Model(&books).Returning("*").Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to create books")
	}

	return response.Success(c, books)
}
