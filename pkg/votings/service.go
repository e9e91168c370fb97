package votings

import (
	"context"
	"database/sql"
	"time"

	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type ListVotingsOptions struct {
	LibraryID     *int
	PublicationID *int
	OpenOnly      bool
}

// EndResult is the closed voting and the successor opened in its place.
type EndResult struct {
	Ended     *models.Voting `json:"ended"`
	Successor *models.Voting `json:"successor"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Open starts a voting for the pair unless one is already open. It runs on idb
// so callers can open votings inside their own transaction. The returned bool
// reports whether a new voting was created.
func Open(ctx context.Context, idb bun.IDB, libraryID, publicationID int) (*models.Voting, bool, error) {
	now := time.Now()
	voting := &models.Voting{
		CreatedAt:     now,
		UpdatedAt:     now,
		LibraryID:     libraryID,
		PublicationID: publicationID,
	}

	// The partial unique index on open votings turns a duplicate into a no-op.
	res, err := idb.NewInsert().
		Model(voting).
		On("CONFLICT DO NOTHING").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return voting, true, nil
	}

	existing := &models.Voting{}
	err = idb.NewSelect().
		Model(existing).
		Where("v.library_id = ?", libraryID).
		Where("v.publication_id = ?", publicationID).
		Where("v.completed = FALSE").
		Scan(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	return existing, false, nil
}

func retrieve(ctx context.Context, idb bun.IDB, id int) (*models.Voting, error) {
	voting := &models.Voting{}
	err := idb.NewSelect().
		Model(voting).
		Where("v.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Voting")
		}
		return nil, errors.WithStack(err)
	}
	return voting, nil
}

func (svc *Service) RetrieveVoting(ctx context.Context, id int) (*models.Voting, error) {
	return retrieve(ctx, svc.db, id)
}

func (svc *Service) ListVotings(ctx context.Context, opts ListVotingsOptions) ([]*models.Voting, error) {
	votings := []*models.Voting{}

	q := svc.db.
		NewSelect().
		Model(&votings).
		Order("v.id ASC")

	if opts.LibraryID != nil {
		q = q.Where("v.library_id = ?", *opts.LibraryID)
	}
	if opts.PublicationID != nil {
		q = q.Where("v.publication_id = ?", *opts.PublicationID)
	}
	if opts.OpenOnly {
		q = q.Where("v.completed = FALSE")
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return votings, nil
}

// Vote records one vote from account.
func (svc *Service) Vote(ctx context.Context, account *models.Account, id int) (*models.Voting, error) {
	var voting *models.Voting

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		v, err := retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if v.Completed {
			return errcodes.VotingClosed()
		}

		voter := &models.VotingVoter{
			CreatedAt: time.Now(),
			VotingID:  v.ID,
			AccountID: account.ID,
		}
		res, err := tx.NewInsert().
			Model(voter).
			On("CONFLICT (voting_id, account_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.AlreadyVoted()
		}

		res, err = tx.NewUpdate().
			Model((*models.Voting)(nil)).
			Set("votes = votes + 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", v.ID).
			Where("completed = FALSE").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.VotingClosed()
		}

		voting, err = retrieve(ctx, tx, v.ID)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return voting, nil
}

// EndVoting closes the voting and opens its successor for the same library
// and publication.
func (svc *Service) EndVoting(ctx context.Context, staff *models.Account, id int) (*EndResult, error) {
	result := &EndResult{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		v, err := retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if !staff.CanManageLibrary(v.LibraryID) {
			return errcodes.OutOfScope()
		}

		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.Voting)(nil)).
			Set("completed = TRUE").
			Set("updated_at = ?", now).
			Where("id = ?", v.ID).
			Where("completed = FALSE").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.VotingClosed()
		}
		v.Completed = true
		v.UpdatedAt = now
		result.Ended = v

		successor, _, err := Open(ctx, tx, v.LibraryID, v.PublicationID)
		if err != nil {
			return err
		}
		result.Successor = successor
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("voting ended", logger.Data{
		"voting_id":    result.Ended.ID,
		"votes":        result.Ended.Votes,
		"successor_id": result.Successor.ID,
	})

	return result, nil
}

// DeleteVoting removes the voting and its voters. No successor is opened.
func (svc *Service) DeleteVoting(ctx context.Context, staff *models.Account, id int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		v, err := retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if !staff.CanManageLibrary(v.LibraryID) {
			return errcodes.OutOfScope()
		}

		_, err = tx.NewDelete().
			Model((*models.VotingVoter)(nil)).
			Where("voting_id = ?", v.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model(v).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	return errors.WithStack(err)
}
