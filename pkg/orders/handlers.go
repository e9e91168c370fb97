package orders

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
)

type handler struct {
	orderService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateOrderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	order, err := h.orderService.CreateOrder(ctx, account, CreateOrderOptions{
		PublicationID: params.Publication,
		LibraryID:     params.Library,
		NumberOfBooks: params.NumberOfBooks,
		PricePerBook:  params.PricePerBook,
		DateOfOrder:   params.DateOfOrder,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, order)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Order")
	}

	order, err := h.orderService.RetrieveOrder(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, order)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListOrdersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListOrdersOptions{
		LibraryID: params.LibraryID,
		UserID:    params.UserID,
	}
	if params.Delivered != nil {
		delivered := *params.Delivered == 1
		opts.Delivered = &delivered
	}

	orders, err := h.orderService.ListOrders(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, orders)
}

func (h *handler) deliver(c echo.Context) error {
	ctx := c.Request().Context()

	params := OrderParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	result, err := h.orderService.DeliverOrder(ctx, account, params.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, result)
}
