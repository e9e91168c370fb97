package loans

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
)

const dateLayout = "2006-01-02"

type handler struct {
	loanService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	dateFrom, err := time.Parse(dateLayout, params.DateFrom)
	if err != nil {
		return errcodes.ValidationError("Date from must be a valid date.")
	}
	dateTo, err := time.Parse(dateLayout, params.DateTo)
	if err != nil {
		return errcodes.ValidationError("Date to must be a valid date.")
	}

	account, _ := auth.CurrentAccount(c)

	result, err := h.loanService.RequestLoan(ctx, account, RequestLoanOptions{
		DateFrom: dateFrom,
		DateTo:   dateTo,
		BookIDs:  params.Books,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if result.Waiting {
		return response.Waiting(c, result.Entry)
	}
	return response.Success(c, result.Loan)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book loan")
	}

	loan, err := h.loanService.RetrieveLoan(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loan)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loans, err := h.loanService.ListLoans(ctx, ListLoansOptions{
		LibraryID: params.LibraryID,
		UserID:    params.UserID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loans)
}

func (h *handler) listLibrary(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	if err := h.checkLibraryScope(c, id); err != nil {
		return err
	}

	loans, err := h.loanService.ListLoans(ctx, ListLoansOptions{LibraryID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loans)
}

func (h *handler) listUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Account")
	}

	loans, err := h.loanService.ListLoans(ctx, ListLoansOptions{UserID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loans)
}

func (h *handler) me(c echo.Context) error {
	ctx := c.Request().Context()
	account, _ := auth.CurrentAccount(c)

	loans, err := h.loanService.ListLoans(ctx, ListLoansOptions{UserID: &account.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loans)
}

func (h *handler) confirm(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoanParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	loan, err := h.loanService.ConfirmLoan(ctx, account, params.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loan)
}

func (h *handler) receive(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoanParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	result, err := h.loanService.ReceiveLoan(ctx, account, params.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, result)
}

func (h *handler) fine(c echo.Context) error {
	ctx := c.Request().Context()

	params := FineParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	loan, err := h.loanService.AddFine(ctx, account, params.ID, params.Fine)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loan)
}

func (h *handler) extend(c echo.Context) error {
	ctx := c.Request().Context()

	params := ExtendParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	loan, err := h.loanService.ExtendLoan(ctx, account, params.ID, params.Days)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, loan)
}

func (h *handler) listWaitingList(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	if err := h.checkLibraryScope(c, id); err != nil {
		return err
	}

	entries, err := h.loanService.ListWaitingList(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, entries)
}

// checkLibraryScope rejects unknown libraries and librarians of other
// libraries.
func (h *handler) checkLibraryScope(c echo.Context, libraryID int) error {
	exists, err := h.loanService.LibraryExists(c.Request().Context(), libraryID)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Library")
	}

	account, _ := auth.CurrentAccount(c)
	if !account.CanManageLibrary(libraryID) {
		return errcodes.OutOfScope()
	}
	return nil
}
