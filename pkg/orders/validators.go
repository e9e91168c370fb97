package orders

import "time"

type CreateOrderPayload struct {
	Publication   int        `json:"publication" validate:"required,min=1"`
	Library       *int       `json:"library" validate:"omitempty,min=1"`
	NumberOfBooks int        `json:"number_of_books" validate:"required,min=1,max=1000"`
	PricePerBook  int        `json:"price_per_book" validate:"min=0"`
	DateOfOrder   *time.Time `json:"date_of_order"`
}

type ListOrdersQuery struct {
	LibraryID *int `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	UserID    *int `query:"user_id" json:"user_id,omitempty" validate:"omitempty,min=1"`
	Delivered *int `query:"delivered" json:"delivered,omitempty" validate:"omitempty,oneof=0 1"`
}

type OrderParams struct {
	ID int `param:"id" json:"-" validate:"required,min=1"`
}
