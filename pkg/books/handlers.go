package books

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, book)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{
		LibraryID:     params.LibraryID,
		PublicationID: params.PublicationID,
		Available:     params.Available,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, books)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &params.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if !account.CanManageLibrary(book.LibraryID) {
		return errcodes.OutOfScope()
	}

	// Keep track of what's been changed.
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Condition != nil && *params.Condition != book.Condition {
		book.Condition = *params.Condition
		opts.Columns = append(opts.Columns, "condition")
	}
	if params.Section != nil && *params.Section != book.Section {
		book.Section = *params.Section
		opts.Columns = append(opts.Columns, "section")
	}

	err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, book)
}
