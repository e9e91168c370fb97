package loans

import (
	"context"
	"time"

	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Sweep admits waiting list entries whose books are all free, oldest first.
// Each admitted entry becomes a requested loan, its books are reserved for that
// loan and the entry is removed. It must run inside the caller's transaction.
func Sweep(ctx context.Context, idb bun.IDB) ([]*models.Loan, error) {
	var entries []*models.WaitingListEntry
	err := idb.NewSelect().
		Model(&entries).
		Relation("Books", orderPositions).
		Order("wl.date_created ASC", "wl.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	log := logger.FromContext(ctx)
	promoted := []*models.Loan{}

	for _, entry := range entries {
		ids := uniqueIDs(entry.BookIDs())
		if len(ids) == 0 {
			continue
		}

		// Books reserved by an earlier promotion in this sweep are read back
		// as reserved here.
		books, err := loadBooks(ctx, idb, ids)
		if err != nil {
			return nil, err
		}
		if len(books) != len(ids) {
			continue
		}
		libraryID, ok := sharedLibrary(books)
		if !ok || !allAvailable(books) {
			continue
		}

		loan, err := createLoan(ctx, idb, entry.UserID, libraryID, entry.DateFrom, entry.DateTo, books)
		if err != nil {
			return nil, err
		}

		res, err := idb.NewUpdate().
			Model((*models.Book)(nil)).
			Set("reserved = TRUE").
			Set("reserved_loan_id = ?", loan.ID).
			Set("updated_at = ?", time.Now()).
			Where("id IN (?)", bun.In(ids)).
			Where("loaned = FALSE").
			Where("reserved = FALSE").
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); int(n) != len(ids) {
			return nil, errors.Errorf("reserved %d of %d books for waiting list entry %d", n, len(ids), entry.ID)
		}
		for _, b := range books {
			b.Reserved = true
			b.ReservedLoanID = &loan.ID
		}

		_, err = idb.NewDelete().
			Model((*models.WaitingListBook)(nil)).
			Where("entry_id = ?", entry.ID).
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		_, err = idb.NewDelete().
			Model((*models.WaitingListEntry)(nil)).
			Where("id = ?", entry.ID).
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		log.Info("waiting list entry promoted", logger.Data{
			"entry_id":   entry.ID,
			"loan_id":    loan.ID,
			"library_id": libraryID,
			"user_id":    entry.UserID,
		})
		promoted = append(promoted, loan)
	}

	return promoted, nil
}
