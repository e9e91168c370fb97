package libraries

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
)

type handler struct {
	libraryService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	library := &models.Library{
		Name:        params.Name,
		Description: params.Description,
		City:        params.City,
		Street:      params.Street,
		ZipCode:     params.ZipCode,
	}

	err := h.libraryService.CreateLibrary(ctx, library)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, library)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, library)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLibrariesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	libraries, err := h.libraryService.ListLibraries(ctx, ListLibrariesOptions{
		City: params.City,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, libraries)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := UpdateLibraryPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the library.
	library, err := h.libraryService.RetrieveLibrary(ctx, RetrieveLibraryOptions{
		ID: &params.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateLibraryOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != library.Name {
		library.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.Description != nil && *params.Description != library.Description {
		library.Description = *params.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if params.City != nil && *params.City != library.City {
		library.City = *params.City
		opts.Columns = append(opts.Columns, "city")
	}
	if params.Street != nil && *params.Street != library.Street {
		library.Street = *params.Street
		opts.Columns = append(opts.Columns, "street")
	}
	if params.ZipCode != nil && *params.ZipCode != library.ZipCode {
		library.ZipCode = *params.ZipCode
		opts.Columns = append(opts.Columns, "zip_code")
	}

	// Update the model.
	err = h.libraryService.UpdateLibrary(ctx, library, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, library)
}
