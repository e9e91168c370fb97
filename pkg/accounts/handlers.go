package accounts

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
)

type handler struct {
	accountService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Account")
	}

	account, err := h.accountService.Retrieve(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, account)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListAccountsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListOptions{
		WorkingAt: params.WorkingAt,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	if params.Role != nil {
		role := models.Role(*params.Role)
		opts.Role = &role
	}

	accounts, total, err := h.accountService.List(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Accounts []*models.Account `json:"accounts"`
		Total    int               `json:"total"`
	}{accounts, total}

	return response.Success(c, resp)
}

func (h *handler) setRole(c echo.Context) error {
	ctx := c.Request().Context()

	params := RoleParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, err := h.accountService.SetRole(ctx, params.ID, models.Role(params.Role))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, account)
}

func (h *handler) assignLibrary(c echo.Context) error {
	ctx := c.Request().Context()

	params := LibraryParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, err := h.accountService.AssignLibrary(ctx, params.ID, params.LibraryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, account)
}

func (h *handler) claimAdministrator(c echo.Context) error {
	ctx := c.Request().Context()

	params := ClaimAdministratorPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	current, _ := auth.CurrentAccount(c)

	account, err := h.accountService.ClaimAdministrator(ctx, current, params.Key)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, account)
}

func (h *handler) changePassword(c echo.Context) error {
	ctx := c.Request().Context()

	params := ChangePasswordPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	current, _ := auth.CurrentAccount(c)

	if err := h.accountService.ChangePassword(ctx, current.ID, params.CurrentPassword, params.NewPassword); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, nil)
}
