package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Voting struct {
	bun.BaseModel `bun:"table:votings,alias:v"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LibraryID     int       `json:"library"`
	PublicationID int       `json:"publication"`
	Votes         int       `json:"votes"`
	Completed     bool      `json:"completed"`
}

type VotingVoter struct {
	bun.BaseModel `bun:"table:voting_voters,alias:vv"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	VotingID  int       `json:"voting_id"`
	AccountID int       `json:"account_id"`
}
