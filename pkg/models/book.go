package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Book conditions.
const (
	BookConditionNew     = "new"
	BookConditionUsed    = "used"
	BookConditionDamaged = "damaged"
)

// DefaultBookSection is the shelf section assigned to freshly delivered books.
const DefaultBookSection = 1

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID             int          `bun:",pk,nullzero" json:"id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	PublicationID  int          `json:"publication_id"`
	Publication    *Publication `bun:"rel:belongs-to,join:publication_id=id" json:"publication,omitempty"`
	LibraryID      int          `json:"library_id"`
	Library        *Library     `bun:"rel:belongs-to,join:library_id=id" json:"library,omitempty"`
	Condition      string       `bun:",nullzero" json:"condition"`
	Section        int          `json:"section"`
	Loaned         bool         `json:"loaned"`
	Reserved       bool         `json:"reserved"`
	ReservedLoanID *int         `bun:"reserved_loan_id" json:"reserved_loan"` // promoted loan holding the reservation
}

// Available reports whether the book can be bound to a new loan.
func (b *Book) Available() bool {
	return !b.Loaned && !b.Reserved
}

// ReservedFor reports whether the book is reserved for the loan with id.
func (b *Book) ReservedFor(loanID int) bool {
	return b.Reserved && b.ReservedLoanID != nil && *b.ReservedLoanID == loanID
}
