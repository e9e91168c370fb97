package books

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerUpdate(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{bookService: NewService(db)}

	home := testutils.CreateLibrary(t, db, "Central")
	other := testutils.CreateLibrary(t, db, "Branch")
	publication := testutils.CreatePublication(t, db, "Dune")
	book := testutils.CreateBooks(t, db, publication, home, 1)[0]

	t.Run("librarian of the owning library", func(t *testing.T) {
		librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(home))

		c, rr := testutils.NewEchoContext(t, http.MethodPut, "/book/"+strconv.Itoa(book.ID), `{"condition":"Damaged","section":4}`)
		testutils.SetParams(c, "id", strconv.Itoa(book.ID))
		testutils.AsAccount(c, librarian)

		require.NoError(t, h.update(c))
		assert.Equal(t, http.StatusOK, rr.Code)

		reloaded := testutils.ReloadBook(t, db, book)
		assert.Equal(t, models.BookConditionDamaged, reloaded.Condition)
		assert.Equal(t, 4, reloaded.Section)
		assert.False(t, reloaded.Loaned)
	})

	t.Run("librarian of another library", func(t *testing.T) {
		librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(other))

		c, _ := testutils.NewEchoContext(t, http.MethodPut, "/book/"+strconv.Itoa(book.ID), `{"section":9}`)
		testutils.SetParams(c, "id", strconv.Itoa(book.ID))
		testutils.AsAccount(c, librarian)

		err := h.update(c)
		assert.ErrorIs(t, err, errcodes.OutOfScope())
		assert.Equal(t, 4, testutils.ReloadBook(t, db, book).Section)
	})

	t.Run("unknown condition", func(t *testing.T) {
		admin := testutils.CreateAccount(t, db, models.RoleAdministrator)

		c, _ := testutils.NewEchoContext(t, http.MethodPut, "/book/"+strconv.Itoa(book.ID), `{"condition":"shredded"}`)
		testutils.SetParams(c, "id", strconv.Itoa(book.ID))
		testutils.AsAccount(c, admin)

		var errResp *errcodes.Error
		require.ErrorAs(t, h.update(c), &errResp)
		assert.Equal(t, "validation_error", errResp.Code)
	})

	t.Run("missing book", func(t *testing.T) {
		admin := testutils.CreateAccount(t, db, models.RoleAdministrator)

		c, _ := testutils.NewEchoContext(t, http.MethodPut, "/book/999", `{"section":2}`)
		testutils.SetParams(c, "id", "999")
		testutils.AsAccount(c, admin)

		assert.ErrorIs(t, h.update(c), errcodes.NotFound("Book"))
	})
}

func TestHandlerList_Filters(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{bookService: NewService(db)}

	home := testutils.CreateLibrary(t, db, "Central")
	other := testutils.CreateLibrary(t, db, "Branch")
	dune := testutils.CreatePublication(t, db, "Dune")
	emma := testutils.CreatePublication(t, db, "Emma")
	duneBooks := testutils.CreateBooks(t, db, dune, home, 3)
	testutils.CreateBooks(t, db, emma, home, 1)
	testutils.CreateBooks(t, db, dune, other, 2)
	testutils.SetBookFlags(t, db, duneBooks[0], true, false)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 6},
		{"by library", "?library_id=" + strconv.Itoa(home.ID), 4},
		{"by publication", "?publication_id=" + strconv.Itoa(dune.ID), 5},
		{"available at library", "?available=true&publication_id=" + strconv.Itoa(dune.ID) + "&library_id=" + strconv.Itoa(home.ID), 2},
		{"unavailable", "?available=false", 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, rr := testutils.NewEchoContext(t, http.MethodGet, "/book"+tt.query, "")
			require.NoError(t, h.list(c))

			var resp struct {
				Data []*models.Book `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Len(t, resp.Data, tt.want)
		})
	}
}

func TestRetrieveBook_LoadsRelations(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")
	book := testutils.CreateBooks(t, db, publication, library, 1)[0]

	got, err := svc.RetrieveBook(context.Background(), RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	require.NotNil(t, got.Publication)
	require.NotNil(t, got.Library)
	assert.Equal(t, "Dune", got.Publication.Name)
	assert.Equal(t, "Central", got.Library.Name)
	assert.True(t, got.Available())
}
