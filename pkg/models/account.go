package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is the closed set of account roles. The numeric values are stored in
// the accounts table and are part of the public API.
type Role int

const (
	RoleUnregistered Role = iota
	RoleRegisteredReader
	RoleDistributor
	RoleLibrarian
	RoleAdministrator
)

var roleNames = map[Role]string{
	RoleUnregistered:     "unregistered",
	RoleRegisteredReader: "registered_reader",
	RoleDistributor:      "distributor",
	RoleLibrarian:        "librarian",
	RoleAdministrator:    "administrator",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// IsStaff reports whether the role can act on behalf of a library.
func (r Role) IsStaff() bool {
	return r == RoleLibrarian || r == RoleAdministrator
}

type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `bun:",nullzero" json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	WorkingAtID  *int      `bun:"working_at" json:"working_at"`

	WorkingAt *Library `bun:"rel:belongs-to,join:working_at=id" json:"-"`
}

// HasRole checks whether the account holds any of the given roles.
func (a *Account) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CanManageLibrary reports whether the account may act as staff for the given
// library. Administrators manage every library; librarians only the one they
// are assigned to.
func (a *Account) CanManageLibrary(libraryID int) bool {
	switch a.Role {
	case RoleAdministrator:
		return true
	case RoleLibrarian:
		return a.WorkingAtID != nil && *a.WorkingAtID == libraryID
	default:
		return false
	}
}
