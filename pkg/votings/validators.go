package votings

type VotingParams struct {
	ID int `param:"id" json:"-" validate:"required,min=1"`
}

type ListVotingsQuery struct {
	LibraryID     *int `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	PublicationID *int `query:"publication_id" json:"publication_id,omitempty" validate:"omitempty,min=1"`
	Open          bool `query:"open" json:"open,omitempty"`
}
