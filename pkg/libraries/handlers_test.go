package libraries

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

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{libraryService: NewService(db)}

	payload := `{"name":"  Central Library ","city":"Brno","street":"Kobližná 4","zip_code":60200}`
	c, rr := testutils.NewEchoContext(t, http.MethodPost, "/library", payload)

	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status string         `json:"status"`
		Data   models.Library `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotZero(t, resp.Data.ID)
	assert.Equal(t, "Central Library", resp.Data.Name)
	assert.Equal(t, 60200, resp.Data.ZipCode)
}

func TestHandlerCreate_RejectsUnknownFields(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{libraryService: NewService(db)}

	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/library", `{"name":"A","city":"B","street":"C","owner":1}`)

	var errResp *errcodes.Error
	require.ErrorAs(t, h.create(c), &errResp)
	assert.Equal(t, http.StatusBadRequest, errResp.HTTPCode)
	assert.Contains(t, errResp.Message, "owner")
}

func TestHandlerUpdate_OnlyChangedColumns(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	h := &handler{libraryService: svc}
	library := testutils.CreateLibrary(t, db, "Central")

	c, rr := testutils.NewEchoContext(t, http.MethodPut, "/library/"+strconv.Itoa(library.ID), `{"description":"Open on weekends"}`)
	testutils.SetParams(c, "id", strconv.Itoa(library.ID))

	require.NoError(t, h.update(c))
	assert.Equal(t, http.StatusOK, rr.Code)

	got, err := svc.RetrieveLibrary(context.Background(), RetrieveLibraryOptions{ID: &library.ID})
	require.NoError(t, err)
	assert.Equal(t, "Central", got.Name)
	assert.Equal(t, "Open on weekends", got.Description)
	assert.Equal(t, library.City, got.City)
}

func TestHandlerRetrieve_NotFound(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{libraryService: NewService(db)}

	c, _ := testutils.NewEchoContext(t, http.MethodGet, "/library/42", "")
	testutils.SetParams(c, "id", "42")

	assert.ErrorIs(t, h.retrieve(c), errcodes.NotFound("Library"))
}

func TestListLibraries_OrderedByName(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	svc := NewService(db)
	testutils.CreateLibrary(t, db, "Zlín")
	testutils.CreateLibrary(t, db, "Brno")

	libraries, err := svc.ListLibraries(context.Background(), ListLibrariesOptions{})
	require.NoError(t, err)
	require.Len(t, libraries, 2)
	assert.Equal(t, "Brno", libraries[0].Name)
	assert.Equal(t, "Zlín", libraries[1].Name)
}
