package loans

type CreateLoanPayload struct {
	DateFrom string `json:"date_from" validate:"required,date"`
	DateTo   string `json:"date_to" validate:"required,date"`
	Books    []int  `json:"books" validate:"min=1,dive,min=1"`
}

type ListLoansQuery struct {
	LibraryID *int `query:"library_id" json:"library_id,omitempty" validate:"omitempty,min=1"`
	UserID    *int `query:"user_id" json:"user_id,omitempty" validate:"omitempty,min=1"`
}

type LoanParams struct {
	ID int `param:"id" json:"-" validate:"required,min=1"`
}

type FineParams struct {
	ID   int `param:"id" json:"-" validate:"required,min=1"`
	Fine int `param:"fine" json:"-" validate:"min=0"`
}

type ExtendParams struct {
	ID   int `param:"id" json:"-" validate:"required,min=1"`
	Days int `param:"days" json:"-" validate:"min=1"`
}
