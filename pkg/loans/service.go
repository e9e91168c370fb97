package loans

import (
	"context"
	"database/sql"
	"time"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type RequestLoanOptions struct {
	DateFrom time.Time
	DateTo   time.Time
	BookIDs  []int
}

type ListLoansOptions struct {
	LibraryID *int
	UserID    *int
}

// RequestResult is the outcome of a loan request. Exactly one of Loan and
// Entry is set; Waiting reports that the request was queued.
type RequestResult struct {
	Loan    *models.Loan
	Entry   *models.WaitingListEntry
	Waiting bool
}

// ReceiveResult is the returned loan and the loans the waiting list sweep
// created from the freed books.
type ReceiveResult struct {
	Loan          *models.Loan   `json:"loan"`
	Promoted      int            `json:"promoted"`
	PromotedLoans []*models.Loan `json:"promoted_loans"`
}

type Service struct {
	db     *bun.DB
	policy config.LoanPolicy
}

func NewService(db *bun.DB, policy config.LoanPolicy) *Service {
	return &Service{db, policy}
}

// RequestLoan creates a requested loan for the books, or a waiting list entry
// when any of them is loaned or reserved. Availability flags are untouched.
func (svc *Service) RequestLoan(ctx context.Context, requester *models.Account, opts RequestLoanOptions) (*RequestResult, error) {
	ids := uniqueIDs(opts.BookIDs)
	if len(ids) == 0 {
		return nil, errcodes.ValidationError("At least one book is required.")
	}
	if opts.DateTo.Before(opts.DateFrom) {
		return nil, errcodes.ValidationError("Date to must not be before date from.")
	}

	result := &RequestResult{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		books, err := loadBooks(ctx, tx, ids)
		if err != nil {
			return err
		}
		if len(books) != len(ids) {
			return errcodes.NotFound("Book")
		}
		libraryID, ok := sharedLibrary(books)
		if !ok {
			return errcodes.CrossLibraryRequest()
		}

		now := time.Now()
		if !allAvailable(books) {
			entry := &models.WaitingListEntry{
				DateCreated: now,
				UserID:      requester.ID,
				LibraryID:   libraryID,
				DateFrom:    opts.DateFrom,
				DateTo:      opts.DateTo,
			}
			_, err := tx.NewInsert().Model(entry).Returning("*").Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			entry.Books = make([]*models.WaitingListBook, 0, len(ids))
			for i, id := range ids {
				entry.Books = append(entry.Books, &models.WaitingListBook{
					EntryID:  entry.ID,
					BookID:   id,
					Position: i,
				})
			}
			_, err = tx.NewInsert().Model(&entry.Books).Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			result.Entry = entry
			result.Waiting = true
			return nil
		}

		loan, err := createLoan(ctx, tx, requester.ID, libraryID, opts.DateFrom, opts.DateTo, books)
		if err != nil {
			return err
		}
		result.Loan = loan
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if result.Waiting {
		logger.FromContext(ctx).Info("loan request queued", logger.Data{
			"entry_id":   result.Entry.ID,
			"library_id": result.Entry.LibraryID,
			"user_id":    result.Entry.UserID,
		})
	}

	return result, nil
}

// ConfirmLoan hands the books of a requested loan to the borrower.
func (svc *Service) ConfirmLoan(ctx context.Context, staff *models.Account, id int) (*models.Loan, error) {
	var loan *models.Loan

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		loan, err = retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if !staff.CanManageLibrary(loan.LibraryID) {
			return errcodes.OutOfScope()
		}
		if loan.LoansID != nil {
			return errcodes.AlreadyConfirmed()
		}
		// A book reserved by the sweep can only go to the loan it was
		// reserved for.
		for _, b := range loan.Books {
			if b.Loaned || (b.Reserved && !b.ReservedFor(loan.ID)) {
				return errcodes.BookUnavailable()
			}
		}

		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.Loan)(nil)).
			Set("loans_id = ?", staff.ID).
			Set("updated_at = ?", now).
			Where("id = ?", loan.ID).
			Where("loans_id IS NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.AlreadyConfirmed()
		}

		ids := loan.BookIDs()
		if len(ids) > 0 {
			res, err = tx.NewUpdate().
				Model((*models.Book)(nil)).
				Set("loaned = TRUE").
				Set("reserved = FALSE").
				Set("reserved_loan_id = NULL").
				Set("updated_at = ?", now).
				Where("id IN (?)", bun.In(ids)).
				Where("loaned = FALSE").
				Where("(reserved = FALSE OR reserved_loan_id = ?)", loan.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if n, _ := res.RowsAffected(); int(n) != len(ids) {
				return errcodes.BookUnavailable()
			}
		}

		loan, err = retrieve(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("loan confirmed", logger.Data{
		"loan_id":    loan.ID,
		"library_id": loan.LibraryID,
		"staff_id":   staff.ID,
	})

	return loan, nil
}

// ReceiveLoan takes the books of an active loan back and promotes waiting list
// entries that the freed books satisfy. Receiving a requested loan withdraws it
// and releases the books reserved for it.
func (svc *Service) ReceiveLoan(ctx context.Context, staff *models.Account, id int) (*ReceiveResult, error) {
	result := &ReceiveResult{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		loan, err := retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if !staff.CanManageLibrary(loan.LibraryID) {
			return errcodes.OutOfScope()
		}
		if loan.ReceivesID != nil {
			return errcodes.AlreadyReturned()
		}

		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.Loan)(nil)).
			Set("receives_id = ?", staff.ID).
			Set("updated_at = ?", now).
			Where("id = ?", loan.ID).
			Where("receives_id IS NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.AlreadyReturned()
		}

		// An unconfirmed loan never held its books, so it only gives up the
		// reservations made for it. Other loans may hold the same books.
		release := tx.NewUpdate().
			Model((*models.Book)(nil)).
			Set("reserved = FALSE").
			Set("reserved_loan_id = NULL").
			Set("updated_at = ?", now)
		if loan.LoansID != nil {
			release = release.
				Set("loaned = FALSE").
				Where("id IN (?)", bun.In(loan.BookIDs()))
		} else {
			release = release.Where("reserved_loan_id = ?", loan.ID)
		}
		if _, err := release.Exec(ctx); err != nil {
			return errors.WithStack(err)
		}

		promoted, err := Sweep(ctx, tx)
		if err != nil {
			return err
		}

		result.Loan, err = retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		result.Promoted = len(promoted)
		result.PromotedLoans = promoted
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("loan received", logger.Data{
		"loan_id":    result.Loan.ID,
		"library_id": result.Loan.LibraryID,
		"staff_id":   staff.ID,
		"promoted":   result.Promoted,
	})

	return result, nil
}

// ExtendLoan pushes the end of the loan back by days.
func (svc *Service) ExtendLoan(ctx context.Context, requester *models.Account, id, days int) (*models.Loan, error) {
	if days < 1 {
		return nil, errcodes.ValidationError("Days must be at least 1.")
	}
	if days > svc.policy.MaxExtensionDays {
		return nil, errcodes.ExceedsMaxExtension(svc.policy.MaxExtensionDays)
	}

	staff := requester.Role.IsStaff()
	var loan *models.Loan

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		loan, err = retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if staff {
			if !requester.CanManageLibrary(loan.LibraryID) {
				return errcodes.OutOfScope()
			}
		} else if loan.UserID != requester.ID {
			return errcodes.NotOwner()
		}
		if loan.ReceivesID != nil {
			return errcodes.AlreadyReturned()
		}

		exempt := staff && svc.policy.StaffExtensionExempt
		if loan.ExtensionTo != nil && !exempt {
			return errcodes.AlreadyExtended()
		}

		base := loan.DateTo
		if loan.ExtensionTo != nil {
			base = *loan.ExtensionTo
		}
		extensionTo := base.AddDate(0, 0, days)

		q := tx.NewUpdate().
			Model((*models.Loan)(nil)).
			Set("extension_to = ?", extensionTo).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", loan.ID)
		if !exempt {
			q = q.Where("extension_to IS NULL")
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.AlreadyExtended()
		}

		loan, err = retrieve(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

// AddFine increases the fine of a loan. Fines never decrease.
func (svc *Service) AddFine(ctx context.Context, staff *models.Account, id, amount int) (*models.Loan, error) {
	if amount < 0 {
		return nil, errcodes.ValidationError("Fine must not be negative.")
	}

	var loan *models.Loan

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		loan, err = retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if !staff.CanManageLibrary(loan.LibraryID) {
			return errcodes.OutOfScope()
		}

		_, err = tx.NewUpdate().
			Model((*models.Loan)(nil)).
			Set("fine = fine + ?", amount).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", loan.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		loan, err = retrieve(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

func (svc *Service) RetrieveLoan(ctx context.Context, id int) (*models.Loan, error) {
	return retrieve(ctx, svc.db, id)
}

func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, error) {
	loans := []*models.Loan{}
	q := svc.db.NewSelect().
		Model(&loans).
		Relation("Books", orderBooks).
		Order("lo.id ASC")

	if opts.LibraryID != nil {
		q = q.Where("lo.library_id = ?", *opts.LibraryID)
	}
	if opts.UserID != nil {
		q = q.Where("lo.user_id = ?", *opts.UserID)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loans, nil
}

// ListWaitingList returns the waiting list of a library in admission order.
func (svc *Service) ListWaitingList(ctx context.Context, libraryID int) ([]*models.WaitingListEntry, error) {
	entries := []*models.WaitingListEntry{}
	err := svc.db.NewSelect().
		Model(&entries).
		Relation("Books", orderPositions).
		Where("wl.library_id = ?", libraryID).
		Order("wl.date_created ASC", "wl.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return entries, nil
}

// LibraryExists reports whether the library with id exists.
func (svc *Service) LibraryExists(ctx context.Context, id int) (bool, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Library)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	return exists, errors.WithStack(err)
}

func retrieve(ctx context.Context, idb bun.IDB, id int) (*models.Loan, error) {
	loan := &models.Loan{}
	err := idb.NewSelect().
		Model(loan).
		Relation("Books", orderBooks).
		Where("lo.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book loan")
		}
		return nil, errors.WithStack(err)
	}
	return loan, nil
}

// createLoan inserts a requested loan and binds books to it.
func createLoan(ctx context.Context, idb bun.IDB, userID, libraryID int, from, to time.Time, books []*models.Book) (*models.Loan, error) {
	now := time.Now()
	loan := &models.Loan{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
		LibraryID: libraryID,
		DateFrom:  from,
		DateTo:    to,
	}
	_, err := idb.NewInsert().Model(loan).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	links := make([]*models.LoanBook, 0, len(books))
	for _, b := range books {
		links = append(links, &models.LoanBook{LoanID: loan.ID, BookID: b.ID})
	}
	_, err = idb.NewInsert().Model(&links).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	loan.Books = books
	return loan, nil
}

// loadBooks returns the books with the given ids in the order of ids. Missing
// ids are left out.
func loadBooks(ctx context.Context, idb bun.IDB, ids []int) ([]*models.Book, error) {
	var found []*models.Book
	err := idb.NewSelect().
		Model(&found).
		Where("b.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	byID := make(map[int]*models.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	books := make([]*models.Book, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			books = append(books, b)
		}
	}
	return books, nil
}

func sharedLibrary(books []*models.Book) (int, bool) {
	if len(books) == 0 {
		return 0, false
	}
	libraryID := books[0].LibraryID
	for _, b := range books[1:] {
		if b.LibraryID != libraryID {
			return 0, false
		}
	}
	return libraryID, true
}

func allAvailable(books []*models.Book) bool {
	for _, b := range books {
		if !b.Available() {
			return false
		}
	}
	return true
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func orderBooks(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("b.id ASC")
}

func orderPositions(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("wlb.position ASC")
}
