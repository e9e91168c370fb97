package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Order is a purchase request for copies of a publication at a library. The
// per-copy details live in the paired BookOrder row.
type Order struct {
	bun.BaseModel `bun:"table:publication_orders,alias:po"`

	ID            int          `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	PublicationID int          `json:"publication_id"`
	Publication   *Publication `bun:"rel:belongs-to,join:publication_id=id" json:"-"`
	LibraryID     int          `json:"library_id"`
	Library       *Library     `bun:"rel:belongs-to,join:library_id=id" json:"-"`
	UserID        int          `json:"user_id"`
	DateOfOrder   time.Time    `json:"date_of_order"`
	Price         int          `json:"price"`
	Delivered     bool         `json:"delivered"`

	BookOrder *BookOrder `bun:"rel:has-one,join:id=order_id" json:"book_order,omitempty"`
}

type BookOrder struct {
	bun.BaseModel `bun:"table:book_orders,alias:bo"`

	ID            int `bun:",pk,nullzero" json:"id"`
	OrderID       int `json:"order_id"`
	NumberOfBooks int `json:"number_of_books"`
	PricePerBook  int `json:"price_per_book"`
}
