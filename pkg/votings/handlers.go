package votings

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
)

type handler struct {
	votingService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Voting")
	}

	voting, err := h.votingService.RetrieveVoting(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, voting)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListVotingsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	votings, err := h.votingService.ListVotings(ctx, ListVotingsOptions{
		LibraryID:     params.LibraryID,
		PublicationID: params.PublicationID,
		OpenOnly:      params.Open,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, votings)
}

// listLibrary returns the open votings of one library.
func (h *handler) listLibrary(c echo.Context) error {
	ctx := c.Request().Context()
	libraryID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Library")
	}

	votings, err := h.votingService.ListVotings(ctx, ListVotingsOptions{
		LibraryID: &libraryID,
		OpenOnly:  true,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, votings)
}

func (h *handler) vote(c echo.Context) error {
	ctx := c.Request().Context()

	params := VotingParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	voting, err := h.votingService.Vote(ctx, account, params.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, voting)
}

func (h *handler) end(c echo.Context) error {
	ctx := c.Request().Context()

	params := VotingParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	result, err := h.votingService.EndVoting(ctx, account, params.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, result)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	params := VotingParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, _ := auth.CurrentAccount(c)

	if err := h.votingService.DeleteVoting(ctx, account, params.ID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, nil)
}
