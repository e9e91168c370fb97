package accounts

// ListAccountsQuery represents the query parameters for listing accounts.
type ListAccountsQuery struct {
	Role      *int `query:"role" json:"role,omitempty" validate:"omitempty,min=0,max=4"`
	WorkingAt *int `query:"working_at" json:"working_at,omitempty" validate:"omitempty,min=1"`
	Limit     int  `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=100"`
	Offset    int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type RoleParams struct {
	ID   int `param:"id" json:"-" validate:"required,min=1"`
	Role int `param:"role" json:"-" validate:"min=0,max=4"`
}

type LibraryParams struct {
	ID        int `param:"id" json:"-" validate:"required,min=1"`
	LibraryID int `param:"library_id" json:"-" validate:"required,min=1"`
}

type ClaimAdministratorPayload struct {
	Key string `json:"key" validate:"required"`
}

type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}
