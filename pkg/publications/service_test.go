package publications

import (
	"context"
	"sync"
	"testing"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatePublication_RunningMean(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	publication := testutils.CreatePublication(t, db, "Dune")
	reader := testutils.CreateAccount(t, db, models.RoleRegisteredReader)

	for _, rate := range []int{5, 4, 0, 4} {
		_, err := svc.RatePublication(ctx, reader, publication.ID, rate)
		require.NoError(t, err)
	}

	got, err := svc.RetrievePublication(ctx, RetrievePublicationOptions{ID: &publication.ID})
	require.NoError(t, err)
	assert.Equal(t, 13, got.RatedSum)
	assert.Equal(t, 4, got.RatedTimes)
	assert.InDelta(t, 3.25, got.Rating, 0.0001)
}

func TestRatePublication_Validation(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()
	reader := testutils.CreateAccount(t, db, models.RoleRegisteredReader)
	publication := testutils.CreatePublication(t, db, "Dune")

	_, err := svc.RatePublication(ctx, reader, publication.ID, 6)
	assert.ErrorIs(t, err, errcodes.ValidationError(""))

	_, err = svc.RatePublication(ctx, reader, publication.ID, -1)
	assert.ErrorIs(t, err, errcodes.ValidationError(""))

	_, err = svc.RatePublication(ctx, reader, 999, 3)
	assert.ErrorIs(t, err, errcodes.NotFound("Publication"))
}

func TestRatePublication_Dedupe(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{Dedupe: true})
	ctx := context.Background()

	publication := testutils.CreatePublication(t, db, "Dune")
	reader := testutils.CreateAccount(t, db, models.RoleRegisteredReader)
	other := testutils.CreateAccount(t, db, models.RoleRegisteredReader)

	_, err := svc.RatePublication(ctx, reader, publication.ID, 2)
	require.NoError(t, err)

	_, err = svc.RatePublication(ctx, reader, publication.ID, 5)
	assert.ErrorIs(t, err, errcodes.AlreadyRated())

	got, err := svc.RatePublication(ctx, other, publication.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RatedTimes)
	assert.InDelta(t, 3.0, got.Rating, 0.0001)
}

func TestRatePublication_ConcurrentUpdatesAreNotLost(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	publication := testutils.CreatePublication(t, db, "Dune")
	reader := testutils.CreateAccount(t, db, models.RoleRegisteredReader)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RatePublication(ctx, reader, publication.ID, 3)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := svc.RetrievePublication(ctx, RetrievePublicationOptions{ID: &publication.ID})
	require.NoError(t, err)
	assert.Equal(t, workers, got.RatedTimes)
	assert.Equal(t, 3*workers, got.RatedSum)
	assert.InDelta(t, 3.0, got.Rating, 0.0001)
}

func TestAssociateWithLibrary(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")
	librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(library))

	got, err := svc.AssociateWithLibrary(ctx, librarian, publication.ID, library.ID)
	require.NoError(t, err)
	require.Len(t, got.AvailableAt, 1)
	assert.Equal(t, library.ID, got.AvailableAt[0].ID)

	// A second association neither duplicates the link nor opens another voting.
	_, err = svc.AssociateWithLibrary(ctx, librarian, publication.ID, library.ID)
	require.NoError(t, err)

	votings, err := db.NewSelect().
		Model((*models.Voting)(nil)).
		Where("library_id = ? AND publication_id = ?", library.ID, publication.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, votings)

	listed, err := svc.ListPublications(ctx, ListPublicationsOptions{LibraryID: &library.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, publication.ID, listed[0].ID)
}

func TestAssociateWithLibrary_Errors(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	branch := testutils.CreateLibrary(t, db, "Branch")
	publication := testutils.CreatePublication(t, db, "Dune")
	librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(branch))
	admin := testutils.CreateAccount(t, db, models.RoleAdministrator)

	_, err := svc.AssociateWithLibrary(ctx, librarian, publication.ID, library.ID)
	assert.ErrorIs(t, err, errcodes.OutOfScope())

	_, err = svc.AssociateWithLibrary(ctx, admin, 999, library.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Publication"))

	_, err = svc.AssociateWithLibrary(ctx, admin, publication.ID, 999)
	assert.ErrorIs(t, err, errcodes.NotFound("Library"))
}

func TestRetrieveAvailability(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")

	_, err := svc.RetrieveAvailability(ctx, publication.ID, library.ID)
	assert.ErrorIs(t, err, errcodes.NotFound(""))

	_, err = Associate(ctx, db, publication.ID, library.ID)
	require.NoError(t, err)

	books := testutils.CreateBooks(t, db, publication, library, 4)
	testutils.SetBookFlags(t, db, books[0], true, false)
	testutils.SetBookFlags(t, db, books[1], false, true)

	availability, err := svc.RetrieveAvailability(ctx, publication.ID, library.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, availability.Owned)
	assert.Equal(t, 2, availability.Available)
	assert.Equal(t, []int{books[2].ID, books[3].ID}, availability.Books)
}

func TestCreatePublication_Normalizes(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	isbn10 := "0-316-76948-7"
	publication := &models.Publication{
		Name:     "The Catcher in the Rye",
		Synopsis: "<p>Holden <em>Caulfield</em> &amp; New York.</p><p>1951</p>",
		Authors:  "J. D. Salinger",
		Language: "en",
		ISBN:     &isbn10,
	}
	require.NoError(t, svc.CreatePublication(ctx, publication))

	got, err := svc.RetrievePublication(ctx, RetrievePublicationOptions{ID: &publication.ID})
	require.NoError(t, err)
	assert.Equal(t, "Catcher in the Rye, The", got.SortName)
	assert.Equal(t, "Holden Caulfield & New York.\n1951", got.Synopsis)
	require.NotNil(t, got.ISBN)
	assert.Equal(t, "9780316769488", *got.ISBN)

	bad := "9780316769489"
	err = svc.CreatePublication(ctx, &models.Publication{Name: "Bad", Authors: "X", Language: "en", ISBN: &bad})
	assert.ErrorIs(t, err, errcodes.ValidationError(""))
}

func TestUpdatePublication_RecomputesSortName(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	publication := &models.Publication{Name: "Hobbit", Authors: "J. R. R. Tolkien", Language: "en"}
	require.NoError(t, svc.CreatePublication(ctx, publication))
	assert.Equal(t, "Hobbit", publication.SortName)

	publication.Name = "The Hobbit"
	require.NoError(t, svc.UpdatePublication(ctx, publication, UpdatePublicationOptions{Columns: []string{"name"}}))

	got, err := svc.RetrievePublication(ctx, RetrievePublicationOptions{ID: &publication.ID})
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", got.Name)
	assert.Equal(t, "Hobbit, The", got.SortName)
}

func TestListPublications_SortedByCatalogueTitle(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db, config.RatingPolicy{})
	ctx := context.Background()

	for _, name := range []string{"The Hobbit", "emma", "A Wizard of Earthsea", "Dune"} {
		require.NoError(t, svc.CreatePublication(ctx, &models.Publication{Name: name, Authors: "Someone", Language: "en"}))
	}

	listed, err := svc.ListPublications(ctx, ListPublicationsOptions{})
	require.NoError(t, err)
	names := make([]string, 0, len(listed))
	for _, p := range listed {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Dune", "emma", "The Hobbit", "A Wizard of Earthsea"}, names)
}
