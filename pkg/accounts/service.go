package accounts

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"time"

	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Service handles account administration.
type Service struct {
	db       *bun.DB
	adminKey string
}

// NewService creates a new accounts service. An empty adminKey disables
// ClaimAdministrator.
func NewService(db *bun.DB, adminKey string) *Service {
	return &Service{db: db, adminKey: adminKey}
}

// ListOptions contains options for listing accounts.
type ListOptions struct {
	Role      *models.Role
	WorkingAt *int
	Limit     int
	Offset    int
}

// Retrieve gets an account by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.Account, error) {
	return retrieve(ctx, s.db, id)
}

// List returns a page of accounts and the total number of matches.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.Account, int, error) {
	accounts := []*models.Account{}

	query := s.db.NewSelect().
		Model(&accounts).
		Order("a.id ASC")

	if opts.Role != nil {
		query = query.Where("a.role = ?", *opts.Role)
	}
	if opts.WorkingAt != nil {
		query = query.Where("a.working_at = ?", *opts.WorkingAt)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return accounts, total, nil
}

// SetRole changes the role of an account. Accounts that stop being librarians
// lose their library assignment.
func (s *Service) SetRole(ctx context.Context, id int, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, errcodes.ValidationError("Role must be between 0 and 4.")
	}

	var account *models.Account
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = retrieve(ctx, tx, id)
		if err != nil {
			return err
		}

		columns := []string{"role", "updated_at"}
		account.Role = role
		account.UpdatedAt = time.Now()
		if role != models.RoleLibrarian && account.WorkingAtID != nil {
			account.WorkingAtID = nil
			columns = append(columns, "working_at")
		}

		_, err = tx.NewUpdate().
			Model(account).
			Column(columns...).
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("account role changed", logger.Data{
		"account_id": account.ID,
		"role":       account.Role.String(),
	})

	return account, nil
}

// AssignLibrary makes a librarian work at the given library.
func (s *Service) AssignLibrary(ctx context.Context, id, libraryID int) (*models.Account, error) {
	var account *models.Account
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = retrieve(ctx, tx, id)
		if err != nil {
			return err
		}
		if account.Role != models.RoleLibrarian {
			return errcodes.NotLibrarian()
		}

		exists, err := tx.NewSelect().
			Model((*models.Library)(nil)).
			Where("id = ?", libraryID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Library")
		}

		account.WorkingAtID = &libraryID
		account.UpdatedAt = time.Now()
		_, err = tx.NewUpdate().
			Model(account).
			Column("working_at", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return account, nil
}

// ClaimAdministrator promotes the account to administrator when the key
// matches the configured admin key and no administrator exists yet.
func (s *Service) ClaimAdministrator(ctx context.Context, account *models.Account, key string) (*models.Account, error) {
	if s.adminKey == "" {
		return nil, errcodes.Forbidden("Claiming administrator")
	}

	var claimed *models.Account
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Account)(nil)).
			Where("role = ?", models.RoleAdministrator).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.ValidationError("An administrator already exists.")
		}

		if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) != 1 {
			return errcodes.Unauthorized("Invalid admin key.")
		}

		claimed, err = retrieve(ctx, tx, account.ID)
		if err != nil {
			return err
		}
		claimed.Role = models.RoleAdministrator
		claimed.WorkingAtID = nil
		claimed.UpdatedAt = time.Now()
		_, err = tx.NewUpdate().
			Model(claimed).
			Column("role", "working_at", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("administrator claimed", logger.Data{
		"account_id": claimed.ID,
	})

	return claimed, nil
}

// ChangePassword replaces the password of an account after verifying the
// current one.
func (s *Service) ChangePassword(ctx context.Context, id int, currentPassword, newPassword string) error {
	account, err := retrieve(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(currentPassword, account.PasswordHash) {
		return errcodes.Unauthorized("Current password is incorrect.")
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	_, err = s.db.NewUpdate().
		Model((*models.Account)(nil)).
		Set("password_hash = ?", hashedPassword).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func retrieve(ctx context.Context, idb bun.IDB, id int) (*models.Account, error) {
	account := &models.Account{}
	err := idb.NewSelect().
		Model(account).
		Where("a.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Account")
		}
		return nil, errors.WithStack(err)
	}
	return account, nil
}
