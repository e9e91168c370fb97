package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func countBooks(t *testing.T, db *bun.DB, publication *models.Publication, library *models.Library) int {
	t.Helper()

	n, err := db.NewSelect().
		Model((*models.Book)(nil)).
		Where("publication_id = ?", publication.ID).
		Where("library_id = ?", library.ID).
		Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateOrder_Librarian(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	other := testutils.CreateLibrary(t, db, "Branch")
	publication := testutils.CreatePublication(t, db, "Dune")
	librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(library))

	// The requested library is ignored for librarians.
	order, err := svc.CreateOrder(ctx, librarian, CreateOrderOptions{
		PublicationID: publication.ID,
		LibraryID:     &other.ID,
		NumberOfBooks: 10,
		PricePerBook:  500,
	})
	require.NoError(t, err)
	assert.Equal(t, library.ID, order.LibraryID)
	assert.Equal(t, librarian.ID, order.UserID)
	assert.Equal(t, 5000, order.Price)
	assert.False(t, order.Delivered)
	require.NotNil(t, order.BookOrder)
	assert.Equal(t, 10, order.BookOrder.NumberOfBooks)
	assert.Equal(t, 500, order.BookOrder.PricePerBook)
	assert.False(t, order.DateOfOrder.IsZero())
}

func TestCreateOrder_Errors(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")
	opts := CreateOrderOptions{PublicationID: publication.ID, NumberOfBooks: 1, PricePerBook: 100}

	unassigned := testutils.CreateAccount(t, db, models.RoleLibrarian)
	_, err := svc.CreateOrder(ctx, unassigned, opts)
	assert.ErrorIs(t, err, errcodes.UnassignedLibrarian())

	admin := testutils.CreateAccount(t, db, models.RoleAdministrator)
	_, err = svc.CreateOrder(ctx, admin, opts)
	assert.ErrorIs(t, err, errcodes.ValidationError(""))

	distributor := testutils.CreateAccount(t, db, models.RoleDistributor)
	_, err = svc.CreateOrder(ctx, distributor, opts)
	assert.ErrorIs(t, err, errcodes.Forbidden(""))

	missing := 999
	_, err = svc.CreateOrder(ctx, admin, CreateOrderOptions{PublicationID: publication.ID, LibraryID: &missing, NumberOfBooks: 1})
	assert.ErrorIs(t, err, errcodes.NotFound("Library"))

	_, err = svc.CreateOrder(ctx, admin, CreateOrderOptions{PublicationID: 999, LibraryID: &library.ID, NumberOfBooks: 1})
	assert.ErrorIs(t, err, errcodes.NotFound("Publication"))

	orders, err := svc.ListOrders(ctx, ListOrdersOptions{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestDeliverOrder(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")
	admin := testutils.CreateAccount(t, db, models.RoleAdministrator)
	distributor := testutils.CreateAccount(t, db, models.RoleDistributor)

	order, err := svc.CreateOrder(ctx, admin, CreateOrderOptions{
		PublicationID: publication.ID,
		LibraryID:     &library.ID,
		NumberOfBooks: 10,
		PricePerBook:  500,
	})
	require.NoError(t, err)

	result, err := svc.DeliverOrder(ctx, distributor, order.ID)
	require.NoError(t, err)
	assert.True(t, result.Order.Delivered)
	require.Len(t, result.Books, 10)
	for _, b := range result.Books {
		assert.NotZero(t, b.ID)
		assert.Equal(t, models.BookConditionNew, b.Condition)
		assert.Equal(t, models.DefaultBookSection, b.Section)
		assert.False(t, b.Loaned)
		assert.False(t, b.Reserved)
	}
	assert.Equal(t, 10, countBooks(t, db, publication, library))

	// Delivery stocks the publication and opens a voting for it.
	linked, err := db.NewSelect().
		Model((*models.PublicationLibrary)(nil)).
		Where("publication_id = ? AND library_id = ?", publication.ID, library.ID).
		Exists(ctx)
	require.NoError(t, err)
	assert.True(t, linked)

	open, err := db.NewSelect().
		Model((*models.Voting)(nil)).
		Where("publication_id = ? AND library_id = ? AND completed = FALSE", publication.ID, library.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, open)

	_, err = svc.DeliverOrder(ctx, admin, order.ID)
	assert.ErrorIs(t, err, errcodes.AlreadyDelivered())
	assert.Equal(t, 10, countBooks(t, db, publication, library))
}

func TestDeliverOrder_ConcurrentDeliveriesCreateBooksOnce(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")
	admin := testutils.CreateAccount(t, db, models.RoleAdministrator)

	order, err := svc.CreateOrder(ctx, admin, CreateOrderOptions{
		PublicationID: publication.ID,
		LibraryID:     &library.ID,
		NumberOfBooks: 3,
		PricePerBook:  100,
	})
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DeliverOrder(ctx, admin, order.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, errcodes.AlreadyDelivered())
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 3, countBooks(t, db, publication, library))
}

func TestDeliverOrder_LibrarianScope(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	branch := testutils.CreateLibrary(t, db, "Branch")
	publication := testutils.CreatePublication(t, db, "Dune")
	owner := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(library))
	outsider := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(branch))

	order, err := svc.CreateOrder(ctx, owner, CreateOrderOptions{PublicationID: publication.ID, NumberOfBooks: 2})
	require.NoError(t, err)

	_, err = svc.DeliverOrder(ctx, outsider, order.ID)
	assert.ErrorIs(t, err, errcodes.OutOfScope())

	_, err = svc.DeliverOrder(ctx, owner, order.ID)
	require.NoError(t, err)

	_, err = svc.DeliverOrder(ctx, owner, 999)
	assert.ErrorIs(t, err, errcodes.NotFound("Order"))
}

func TestListOrders_Filters(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	branch := testutils.CreateLibrary(t, db, "Branch")
	publication := testutils.CreatePublication(t, db, "Dune")
	admin := testutils.CreateAccount(t, db, models.RoleAdministrator)
	librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(branch))

	first, err := svc.CreateOrder(ctx, admin, CreateOrderOptions{PublicationID: publication.ID, LibraryID: &library.ID, NumberOfBooks: 1})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, librarian, CreateOrderOptions{PublicationID: publication.ID, NumberOfBooks: 1})
	require.NoError(t, err)
	_, err = svc.DeliverOrder(ctx, admin, first.ID)
	require.NoError(t, err)

	delivered := true
	undelivered := false

	tests := []struct {
		name string
		opts ListOrdersOptions
		want int
	}{
		{"all", ListOrdersOptions{}, 2},
		{"by library", ListOrdersOptions{LibraryID: &branch.ID}, 1},
		{"by user", ListOrdersOptions{UserID: &admin.ID}, 1},
		{"delivered", ListOrdersOptions{Delivered: &delivered}, 1},
		{"undelivered at library", ListOrdersOptions{LibraryID: &library.ID, Delivered: &undelivered}, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			orders, err := svc.ListOrders(ctx, tt.opts)
			require.NoError(t, err)
			assert.Len(t, orders, tt.want)
			for _, o := range orders {
				assert.NotNil(t, o.BookOrder)
			}
		})
	}
}
