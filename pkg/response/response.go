// Package response renders successful payloads in the API envelope. Errors are
// rendered by errcodes.Handler using the same shape.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusWaiting = "waiting"
	StatusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Success writes a 200 response with the success status.
func Success(c echo.Context, data interface{}) error {
	return errors.WithStack(c.JSON(http.StatusOK, Envelope{Status: StatusSuccess, Data: data}))
}

// Waiting writes a 200 response for a request that was accepted but deferred,
// such as a loan request placed on the waiting list.
func Waiting(c echo.Context, data interface{}) error {
	return errors.WithStack(c.JSON(http.StatusOK, Envelope{Status: StatusWaiting, Data: data}))
}
