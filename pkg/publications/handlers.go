package publications

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
	publicationService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreatePublicationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publication := &models.Publication{
		Name:              params.Name,
		Series:            params.Series,
		Synopsis:          params.Synopsis,
		Authors:           params.Authors,
		Language:          params.Language,
		ISBN:              params.ISBN,
		DateOfPublication: params.DateOfPublication,
		Publisher:         params.Publisher,
		Genre:             params.Genre,
		Pages:             params.Pages,
		Tags:              params.Tags,
	}

	err := h.publicationService.CreatePublication(ctx, publication)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, publication)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Publication")
	}

	publication, err := h.publicationService.RetrievePublication(ctx, RetrievePublicationOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, publication)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListPublicationsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publications, err := h.publicationService.ListPublications(ctx, ListPublicationsOptions{
		LibraryID: params.LibraryID,
		Genre:     params.Genre,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, publications)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := UpdatePublicationPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	publication, err := h.publicationService.RetrievePublication(ctx, RetrievePublicationOptions{
		ID: &params.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdatePublicationOptions{Columns: []string{}}

	setString := func(column string, value *string, field *string) {
		if value != nil && *value != *field {
			*field = *value
			opts.Columns = append(opts.Columns, column)
		}
	}
	setString("name", params.Name, &publication.Name)
	setString("synopsis", params.Synopsis, &publication.Synopsis)
	setString("authors", params.Authors, &publication.Authors)
	setString("language", params.Language, &publication.Language)
	setString("publisher", params.Publisher, &publication.Publisher)
	setString("genre", params.Genre, &publication.Genre)
	setString("tags", params.Tags, &publication.Tags)

	if params.Series != nil {
		publication.Series = params.Series
		opts.Columns = append(opts.Columns, "series")
	}
	if params.ISBN != nil {
		publication.ISBN = params.ISBN
		opts.Columns = append(opts.Columns, "isbn")
	}
	if params.DateOfPublication != nil {
		publication.DateOfPublication = params.DateOfPublication
		opts.Columns = append(opts.Columns, "date_of_publication")
	}
	if params.Pages != nil && *params.Pages != publication.Pages {
		publication.Pages = *params.Pages
		opts.Columns = append(opts.Columns, "pages")
	}

	// Update the model.
	err = h.publicationService.UpdatePublication(ctx, publication, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, publication)
}

func (h *handler) associate(c echo.Context) error {
	ctx := c.Request().Context()

	params := LibraryParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	publication, err := h.publicationService.AssociateWithLibrary(ctx, account, params.ID, params.LibraryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, publication)
}

func (h *handler) availability(c echo.Context) error {
	ctx := c.Request().Context()

	params := LibraryParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	availability, err := h.publicationService.RetrieveAvailability(ctx, params.ID, params.LibraryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, availability)
}

func (h *handler) rate(c echo.Context) error {
	ctx := c.Request().Context()

	params := RateParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	publication, err := h.publicationService.RatePublication(ctx, account, params.ID, params.Rate)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, publication)
}
