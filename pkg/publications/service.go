package publications

import (
	"context"
	"database/sql"
	"time"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/htmlutil"
	"github.com/librisapp/libris/pkg/isbn"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/sortname"
	"github.com/librisapp/libris/pkg/votings"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// MaxRate is the highest rating a reader can give.
const MaxRate = 5

type RetrievePublicationOptions struct {
	ID *int
}

type ListPublicationsOptions struct {
	LibraryID *int
	Genre     *string
}

type UpdatePublicationOptions struct {
	Columns []string
}

// Availability describes the copies of a publication at one library.
type Availability struct {
	PublicationID int   `json:"publication"`
	LibraryID     int   `json:"library"`
	Owned         int   `json:"owned"`
	Available     int   `json:"available"`
	Books         []int `json:"books"`
}

type Service struct {
	db     *bun.DB
	policy config.RatingPolicy
}

func NewService(db *bun.DB, policy config.RatingPolicy) *Service {
	return &Service{db, policy}
}

// Associate marks the publication as stocked at the library and opens a
// voting for the pair. It is a no-op when the pair is already associated. It
// runs on idb so order delivery can associate inside its own transaction.
func Associate(ctx context.Context, idb bun.IDB, publicationID, libraryID int) (bool, error) {
	link := &models.PublicationLibrary{
		PublicationID: publicationID,
		LibraryID:     libraryID,
	}
	res, err := idb.NewInsert().
		Model(link).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	voting, _, err := votings.Open(ctx, idb, libraryID, publicationID)
	if err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info("publication associated with library", logger.Data{
		"publication_id": publicationID,
		"library_id":     libraryID,
		"voting_id":      voting.ID,
	})

	return true, nil
}

// normalize derives the sort name, reduces the synopsis to plain text and
// stores the ISBN in its 13-digit form.
func normalize(publication *models.Publication) error {
	publication.SortName = sortname.ForTitle(publication.Name, publication.Language)
	publication.Synopsis = htmlutil.StripTags(publication.Synopsis)
	if publication.ISBN != nil {
		if *publication.ISBN == "" {
			publication.ISBN = nil
			return nil
		}
		normalized, err := isbn.Normalize(*publication.ISBN)
		if err != nil {
			return errcodes.ValidationError("ISBN checksum is invalid.")
		}
		publication.ISBN = &normalized
	}
	return nil
}

func (svc *Service) CreatePublication(ctx context.Context, publication *models.Publication) error {
	if err := normalize(publication); err != nil {
		return err
	}

	now := time.Now()
	if publication.CreatedAt.IsZero() {
		publication.CreatedAt = now
	}
	publication.UpdatedAt = publication.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(publication).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrievePublication(ctx context.Context, opts RetrievePublicationOptions) (*models.Publication, error) {
	publication := &models.Publication{}

	q := svc.db.
		NewSelect().
		Model(publication).
		Relation("AvailableAt", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("l.id ASC")
		})

	if opts.ID != nil {
		q = q.Where("p.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Publication")
		}
		return nil, errors.WithStack(err)
	}

	return publication, nil
}

func (svc *Service) ListPublications(ctx context.Context, opts ListPublicationsOptions) ([]*models.Publication, error) {
	publications := []*models.Publication{}

	q := svc.db.
		NewSelect().
		Model(&publications).
		OrderExpr("p.sort_name COLLATE NOCASE ASC").
		Order("p.id ASC")

	if opts.LibraryID != nil {
		q = q.Where("p.id IN (?)", svc.db.NewSelect().
			Model((*models.PublicationLibrary)(nil)).
			Column("publication_id").
			Where("library_id = ?", *opts.LibraryID))
	}
	if opts.Genre != nil {
		q = q.Where("p.genre = ? COLLATE NOCASE", *opts.Genre)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return publications, nil
}

func (svc *Service) UpdatePublication(ctx context.Context, publication *models.Publication, opts UpdatePublicationOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	if err := normalize(publication); err != nil {
		return err
	}

	// Update updated_at.
	publication.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")
	for _, column := range opts.Columns {
		if column == "name" || column == "language" {
			columns = append(columns, "sort_name")
			break
		}
	}

	res, err := svc.db.
		NewUpdate().
		Model(publication).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Publication")
	}

	return nil
}

// AssociateWithLibrary is the staff entry point for Associate.
func (svc *Service) AssociateWithLibrary(ctx context.Context, staff *models.Account, publicationID, libraryID int) (*models.Publication, error) {
	if !staff.CanManageLibrary(libraryID) {
		return nil, errcodes.OutOfScope()
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := mustExist(ctx, tx, (*models.Publication)(nil), publicationID, "Publication"); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, (*models.Library)(nil), libraryID, "Library"); err != nil {
			return err
		}
		_, err := Associate(ctx, tx, publicationID, libraryID)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrievePublication(ctx, RetrievePublicationOptions{ID: &publicationID})
}

// RetrieveAvailability counts the copies of the publication at the library.
// Publications not associated with the library are reported as not found.
func (svc *Service) RetrieveAvailability(ctx context.Context, publicationID, libraryID int) (*Availability, error) {
	associated, err := svc.db.NewSelect().
		Model((*models.PublicationLibrary)(nil)).
		Where("publication_id = ?", publicationID).
		Where("library_id = ?", libraryID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !associated {
		return nil, errcodes.NotFound("Publication at this library")
	}

	books := []*models.Book{}
	err = svc.db.NewSelect().
		Model(&books).
		Where("b.publication_id = ?", publicationID).
		Where("b.library_id = ?", libraryID).
		Order("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	availability := &Availability{
		PublicationID: publicationID,
		LibraryID:     libraryID,
		Owned:         len(books),
		Books:         []int{},
	}
	for _, b := range books {
		if b.Available() {
			availability.Available++
			availability.Books = append(availability.Books, b.ID)
		}
	}

	return availability, nil
}

// RatePublication folds rate into the running mean of the publication.
func (svc *Service) RatePublication(ctx context.Context, account *models.Account, publicationID, rate int) (*models.Publication, error) {
	if rate < 0 || rate > MaxRate {
		return nil, errcodes.ValidationError("Rate must be between 0 and 5.")
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := mustExist(ctx, tx, (*models.Publication)(nil), publicationID, "Publication"); err != nil {
			return err
		}

		if svc.policy.Dedupe {
			rating := &models.PublicationRating{
				CreatedAt:     time.Now(),
				PublicationID: publicationID,
				AccountID:     account.ID,
				Rate:          rate,
			}
			res, err := tx.NewInsert().
				Model(rating).
				On("CONFLICT (publication_id, account_id) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return errcodes.AlreadyRated()
			}
		}

		_, err := tx.NewUpdate().
			Model((*models.Publication)(nil)).
			Set("rated_sum = rated_sum + ?", rate).
			Set("rated_times = rated_times + 1").
			Set("rating = CAST(rated_sum + ? AS REAL) / (rated_times + 1)", rate).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", publicationID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return svc.RetrievePublication(ctx, RetrievePublicationOptions{ID: &publicationID})
}

func mustExist(ctx context.Context, idb bun.IDB, model interface{}, id int, resource string) error {
	exists, err := idb.NewSelect().
		Model(model).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound(resource)
	}
	return nil
}
