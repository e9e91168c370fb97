package orders

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerCreate_Validation(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{orderService: NewService(db)}
	admin := testutils.CreateAccount(t, db, models.RoleAdministrator)

	tests := []struct {
		name    string
		payload string
		code    string
	}{
		{"zero books", `{"publication":1,"library":1,"number_of_books":0,"price_per_book":5}`, "validation_error"},
		{"negative price", `{"publication":1,"library":1,"number_of_books":2,"price_per_book":-5}`, "validation_error"},
		{"wrong type", `{"publication":"dune","library":1,"number_of_books":2}`, "validation_type_error"},
		{"unknown field", `{"publication":1,"number_of_books":2,"total_price":10}`, "unknown_parameter"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testutils.NewEchoContext(t, http.MethodPost, "/order/create", tt.payload)
			testutils.AsAccount(c, admin)

			var errResp *errcodes.Error
			require.ErrorAs(t, h.create(c), &errResp)
			assert.Equal(t, http.StatusBadRequest, errResp.HTTPCode)
			assert.Equal(t, tt.code, errResp.Code)
		})
	}
}

func TestHandlerList_DeliveredFlagMustBeBinary(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{orderService: NewService(db)}

	c, _ := testutils.NewEchoContext(t, http.MethodGet, "/order?delivered=2", "")

	var errResp *errcodes.Error
	require.ErrorAs(t, h.list(c), &errResp)
	assert.Equal(t, "validation_error", errResp.Code)

	c, rr := testutils.NewEchoContext(t, http.MethodGet, "/order?delivered=0", "")
	require.NoError(t, h.list(c))
	assert.JSONEq(t, `{"status":"success","data":[]}`, rr.Body.String())
}

func TestHandlerDeliver_SecondCallIsBadRequest(t *testing.T) {
	t.Parallel()

	db := testutils.NewTestDB(t)
	h := &handler{orderService: NewService(db)}

	library := testutils.CreateLibrary(t, db, "Central")
	publication := testutils.CreatePublication(t, db, "Dune")
	librarian := testutils.CreateAccount(t, db, models.RoleLibrarian, testutils.WorkingAt(library))

	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/order/create", `{"publication":`+strconv.Itoa(publication.ID)+`,"number_of_books":10,"price_per_book":500}`)
	testutils.AsAccount(c, librarian)
	require.NoError(t, h.create(c))

	orders, err := h.orderService.ListOrders(c.Request().Context(), ListOrdersOptions{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	id := strconv.Itoa(orders[0].ID)

	c, rr := testutils.NewEchoContext(t, http.MethodPost, "/order/"+id+"/deliver", "")
	testutils.SetParams(c, "id", id)
	testutils.AsAccount(c, librarian)
	testutils.AllowEmptyBody(c)
	require.NoError(t, h.deliver(c))
	assert.Equal(t, http.StatusOK, rr.Code)

	c, _ = testutils.NewEchoContext(t, http.MethodPost, "/order/"+id+"/deliver", "")
	testutils.SetParams(c, "id", id)
	testutils.AsAccount(c, librarian)
	testutils.AllowEmptyBody(c)

	var errResp *errcodes.Error
	require.ErrorAs(t, h.deliver(c), &errResp)
	assert.Equal(t, http.StatusBadRequest, errResp.HTTPCode)
	assert.Equal(t, "already_delivered", errResp.Code)
}
