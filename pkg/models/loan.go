package models

import (
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

// Loan states, derived from which staff columns are set.
const (
	LoanStateRequested = "requested"
	LoanStateActive    = "active"
	LoanStateReturned  = "returned"
)

type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:lo"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      int        `bun:"user_id" json:"user"`
	LibraryID   int        `json:"library"`
	DateFrom    time.Time  `json:"date_from"`
	DateTo      time.Time  `json:"date_to"`
	ExtensionTo *time.Time `json:"extension_to"`
	Fine        int        `json:"fine"`
	LoansID     *int       `bun:"loans_id" json:"loans"`
	ReceivesID  *int       `bun:"receives_id" json:"receives"`

	Books []*Book `bun:"m2m:loan_books,join:Loan=Book" json:"-"`
}

// State returns the lifecycle state of the loan.
func (l *Loan) State() string {
	switch {
	case l.ReceivesID != nil:
		return LoanStateReturned
	case l.LoansID != nil:
		return LoanStateActive
	default:
		return LoanStateRequested
	}
}

// BookIDs returns the ids of the books bound to the loan, in load order.
func (l *Loan) BookIDs() []int {
	ids := make([]int, 0, len(l.Books))
	for _, b := range l.Books {
		ids = append(ids, b.ID)
	}
	return ids
}

type LoanBook struct {
	bun.BaseModel `bun:"table:loan_books,alias:lb"`

	LoanID int   `bun:",pk"`
	Loan   *Loan `bun:"rel:belongs-to,join:loan_id=id"`
	BookID int   `bun:",pk"`
	Book   *Book `bun:"rel:belongs-to,join:book_id=id"`
}

// WaitingListEntry is a loan request that could not be admitted yet because at
// least one of its books was loaned or reserved.
type WaitingListEntry struct {
	bun.BaseModel `bun:"table:waiting_list_entries,alias:wl"`

	ID          int                `bun:",pk,nullzero" json:"id"`
	DateCreated time.Time          `json:"date_created"`
	UserID      int                `bun:"user_id" json:"user"`
	LibraryID   int                `json:"library"`
	DateFrom    time.Time          `json:"date_from"`
	DateTo      time.Time          `json:"date_to"`
	Books       []*WaitingListBook `bun:"rel:has-many,join:id=entry_id" json:"-"`
}

// BookIDs returns the requested book ids in request order.
func (e *WaitingListEntry) BookIDs() []int {
	ids := make([]int, 0, len(e.Books))
	for _, b := range e.Books {
		ids = append(ids, b.BookID)
	}
	return ids
}

type WaitingListBook struct {
	bun.BaseModel `bun:"table:waiting_list_books,alias:wlb"`

	ID       int `bun:",pk,nullzero"`
	EntryID  int
	BookID   int
	Position int
}

func (l Loan) MarshalJSON() ([]byte, error) {
	type alias Loan
	return json.Marshal(struct {
		alias
		Books []int  `json:"books"`
		State string `json:"state"`
	}{alias(l), l.BookIDs(), l.State()})
}

func (e WaitingListEntry) MarshalJSON() ([]byte, error) {
	type alias WaitingListEntry
	return json.Marshal(struct {
		alias
		Books []int `json:"books"`
	}{alias(e), e.BookIDs()})
}
