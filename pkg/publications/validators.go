package publications

import "time"

type CreatePublicationPayload struct {
	Name              string     `json:"name" mod:"trim" validate:"required,max=50"`
	Series            *string    `json:"series" mod:"trim" validate:"omitempty,max=50"`
	Synopsis          string     `json:"synopsis" validate:"max=4096"`
	Authors           string     `json:"authors" mod:"trim" validate:"required,max=255"`
	Language          string     `json:"language" mod:"trim" validate:"required,max=50"`
	ISBN              *string    `json:"isbn" mod:"trim" validate:"omitempty,isbn"`
	DateOfPublication *time.Time `json:"date_of_publication"`
	Publisher         string     `json:"publisher" mod:"trim" validate:"max=50"`
	Genre             string     `json:"genre" mod:"trim" validate:"max=50"`
	Pages             int        `json:"pages" validate:"min=0"`
	Tags              string     `json:"tags" validate:"max=255"`
}

type UpdatePublicationPayload struct {
	ID                int        `param:"id" json:"-" validate:"required"`
	Name              *string    `json:"name,omitempty" mod:"trim" validate:"omitempty,max=50"`
	Series            *string    `json:"series,omitempty" mod:"trim" validate:"omitempty,max=50"`
	Synopsis          *string    `json:"synopsis,omitempty" validate:"omitempty,max=4096"`
	Authors           *string    `json:"authors,omitempty" mod:"trim" validate:"omitempty,max=255"`
	Language          *string    `json:"language,omitempty" mod:"trim" validate:"omitempty,max=50"`
	ISBN              *string    `json:"isbn,omitempty" mod:"trim" validate:"omitempty,isbn"`
	DateOfPublication *time.Time `json:"date_of_publication,omitempty"`
	Publisher         *string    `json:"publisher,omitempty" mod:"trim" validate:"omitempty,max=50"`
	Genre             *string    `json:"genre,omitempty" mod:"trim" validate:"omitempty,max=50"`
	Pages             *int       `json:"pages,omitempty" validate:"omitempty,min=0"`
	Tags              *string    `json:"tags,omitempty" validate:"omitempty,max=255"`
}

type ListPublicationsQuery struct {
	LibraryID *int    `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	Genre     *string `query:"genre" json:"genre,omitempty" validate:"omitempty,max=50"`
}

type LibraryParams struct {
	ID        int `param:"id" json:"-" validate:"required,min=1"`
	LibraryID int `param:"library_id" json:"-" validate:"required,min=1"`
}

type RateParams struct {
	ID   int `param:"id" json:"-" validate:"required,min=1"`
	Rate int `param:"rate" json:"-" validate:"min=0,max=5"`
}
