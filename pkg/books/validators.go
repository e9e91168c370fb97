package books

type ListBooksQuery struct {
	LibraryID     *int  `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	PublicationID *int  `query:"publication_id" json:"publication_id,omitempty" validate:"omitempty,min=1"`
	Available     *bool `query:"available" json:"available,omitempty"`
}

type UpdateBookPayload struct {
	ID        int     `param:"id" json:"-" validate:"required"`
	Condition *string `json:"condition,omitempty" mod:"trim,lcase" validate:"omitempty,condition"`
	Section   *int    `json:"section,omitempty" validate:"omitempty,min=1"`
}
