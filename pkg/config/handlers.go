package config

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/response"
)

type handler struct {
	config *Config
}

type policiesResponse struct {
	Loans   LoanPolicy   `json:"loans"`
	Ratings RatingPolicy `json:"ratings"`
}

func (h *handler) policies(c echo.Context) error {
	return response.Success(c, policiesResponse{
		Loans:   h.config.LoanPolicy(),
		Ratings: h.config.RatingPolicy(),
	})
}
