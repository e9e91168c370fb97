package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/publications"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type CreateOrderOptions struct {
	PublicationID int
	LibraryID     *int
	NumberOfBooks int
	PricePerBook  int
	DateOfOrder   *time.Time
}

type ListOrdersOptions struct {
	LibraryID *int
	UserID    *int
	Delivered *bool
}

// DeliverResult is the delivered order and the books it put on the shelf.
type DeliverResult struct {
	Order *models.Order  `json:"order"`
	Books []*models.Book `json:"books"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateOrder places an order for copies of a publication. Librarians always
// order for the library they work at; administrators name the library.
func (svc *Service) CreateOrder(ctx context.Context, requester *models.Account, opts CreateOrderOptions) (*models.Order, error) {
	var libraryID int
	switch requester.Role {
	case models.RoleLibrarian:
		if requester.WorkingAtID == nil {
			return nil, errcodes.UnassignedLibrarian()
		}
		libraryID = *requester.WorkingAtID
	case models.RoleAdministrator:
		if opts.LibraryID == nil {
			return nil, errcodes.ValidationError(`"library" is required.`)
		}
		libraryID = *opts.LibraryID
	default:
		return nil, errcodes.Forbidden("Ordering publications")
	}

	now := time.Now()
	dateOfOrder := now
	if opts.DateOfOrder != nil {
		dateOfOrder = *opts.DateOfOrder
	}

	order := &models.Order{
		CreatedAt:     now,
		UpdatedAt:     now,
		PublicationID: opts.PublicationID,
		LibraryID:     libraryID,
		UserID:        requester.ID,
		DateOfOrder:   dateOfOrder,
		Price:         opts.NumberOfBooks * opts.PricePerBook,
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := mustExist(ctx, tx, (*models.Publication)(nil), opts.PublicationID, "Publication"); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, (*models.Library)(nil), libraryID, "Library"); err != nil {
			return err
		}

		_, err := tx.NewInsert().Model(order).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		order.BookOrder = &models.BookOrder{
			OrderID:       order.ID,
			NumberOfBooks: opts.NumberOfBooks,
			PricePerBook:  opts.PricePerBook,
		}
		_, err = tx.NewInsert().Model(order.BookOrder).Returning("*").Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return order, nil
}

func retrieve(ctx context.Context, idb bun.IDB, id int) (*models.Order, error) {
	order := &models.Order{}
	err := idb.NewSelect().
		Model(order).
		Relation("BookOrder").
		Where("po.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Order")
		}
		return nil, errors.WithStack(err)
	}
	return order, nil
}

func (svc *Service) RetrieveOrder(ctx context.Context, id int) (*models.Order, error) {
	return retrieve(ctx, svc.db, id)
}

func (svc *Service) ListOrders(ctx context.Context, opts ListOrdersOptions) ([]*models.Order, error) {
	orders := []*models.Order{}

	q := svc.db.
		NewSelect().
		Model(&orders).
		Relation("BookOrder").
		Order("po.date_of_order DESC", "po.id DESC")

	if opts.LibraryID != nil {
		q = q.Where("po.library_id = ?", *opts.LibraryID)
	}
	if opts.UserID != nil {
		q = q.Where("po.user_id = ?", *opts.UserID)
	}
	if opts.Delivered != nil {
		q = q.Where("po.delivered = ?", *opts.Delivered)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return orders, nil
}

// DeliverOrder marks the order delivered and creates its books. The flip is
// conditional on the stored flag, so concurrent deliveries create the books
// once.
func (svc *Service) DeliverOrder(ctx context.Context, requester *models.Account, id int) (*DeliverResult, error) {
	result := &DeliverResult{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		order, err := retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if requester.Role == models.RoleLibrarian && !requester.CanManageLibrary(order.LibraryID) {
			return errcodes.OutOfScope()
		}
		if order.Delivered {
			return errcodes.AlreadyDelivered()
		}
		if order.BookOrder == nil {
			return errcodes.NotFound("Book order")
		}

		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("delivered = TRUE").
			Set("updated_at = ?", now).
			Where("id = ?", order.ID).
			Where("delivered = FALSE").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.AlreadyDelivered()
		}
		order.Delivered = true
		order.UpdatedAt = now

		books := make([]*models.Book, 0, order.BookOrder.NumberOfBooks)
		for i := 0; i < order.BookOrder.NumberOfBooks; i++ {
			books = append(books, &models.Book{
				CreatedAt:     now,
				UpdatedAt:     now,
				PublicationID: order.PublicationID,
				LibraryID:     order.LibraryID,
				Condition:     models.BookConditionNew,
				Section:       models.DefaultBookSection,
			})
		}
		_, err = tx.NewInsert().Model(&books).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if _, err := publications.Associate(ctx, tx, order.PublicationID, order.LibraryID); err != nil {
			return err
		}

		result.Order = order
		result.Books = books
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("order delivered", logger.Data{
		"order_id":   result.Order.ID,
		"library_id": result.Order.LibraryID,
		"books":      len(result.Books),
	})

	return result, nil
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
