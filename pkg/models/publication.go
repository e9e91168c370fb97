package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Publication struct {
	bun.BaseModel `bun:"table:publications,alias:p"`

	ID                int        `bun:",pk,nullzero" json:"id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Name              string     `bun:",nullzero" json:"name"`
	SortName          string     `json:"sort_name"`
	Series            *string    `json:"series"`
	Synopsis          string     `json:"synopsis"`
	Authors           string     `json:"authors"`
	Language          string     `json:"language"`
	ISBN              *string    `bun:"isbn" json:"isbn"`
	DateOfPublication *time.Time `json:"date_of_publication"`
	Publisher         string     `json:"publisher"`
	Genre             string     `json:"genre"`
	Pages             int        `json:"pages"`
	Tags              string     `json:"tags"`
	Rating            float64    `json:"rating"`
	RatedSum          int        `json:"-"`
	RatedTimes        int        `json:"rated_times"`

	AvailableAt []*Library `bun:"m2m:publication_libraries,join:Publication=Library" json:"available_at,omitempty"`
}

// PublicationLibrary is the join row recording that a publication is stocked
// (or wanted) at a library.
type PublicationLibrary struct {
	bun.BaseModel `bun:"table:publication_libraries,alias:pl"`

	PublicationID int          `bun:",pk" json:"publication_id"`
	Publication   *Publication `bun:"rel:belongs-to,join:publication_id=id" json:"-"`
	LibraryID     int          `bun:",pk" json:"library_id"`
	Library       *Library     `bun:"rel:belongs-to,join:library_id=id" json:"-"`
}

// PublicationRating records that an account rated a publication. Only written
// when rating de-duplication is enabled.
type PublicationRating struct {
	bun.BaseModel `bun:"table:publication_ratings,alias:pr"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	PublicationID int       `json:"publication_id"`
	AccountID     int       `json:"account_id"`
	Rate          int       `json:"rate"`
}
