package libraries

type CreateLibraryPayload struct {
	Name        string `json:"name" mod:"trim" validate:"required,max=100"`
	Description string `json:"description" mod:"trim" validate:"max=1000"`
	City        string `json:"city" mod:"trim" validate:"required,max=100"`
	Street      string `json:"street" mod:"trim" validate:"required,max=200"`
	ZipCode     int    `json:"zip_code" validate:"min=0,max=99999"`
}

type ListLibrariesQuery struct {
	City *string `query:"city" json:"city,omitempty" mod:"trim" validate:"omitempty,max=100"`
}

type UpdateLibraryPayload struct {
	ID          int     `param:"id" json:"-" validate:"required"`
	Name        *string `json:"name,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" mod:"trim" validate:"omitempty,max=1000"`
	City        *string `json:"city,omitempty" mod:"trim" validate:"omitempty,max=100"`
	Street      *string `json:"street,omitempty" mod:"trim" validate:"omitempty,max=200"`
	ZipCode     *int    `json:"zip_code,omitempty" validate:"omitempty,min=0,max=99999"`
}
