package models

import "github.com/uptrace/bun"

// RegisterModels registers the join models used by many-to-many relations.
// It must run before any query touches those relations.
func RegisterModels(db *bun.DB) {
	db.RegisterModel(
		(*PublicationLibrary)(nil),
		(*LoanBook)(nil),
	)
}
