package auth

// RegisterPayload represents the registration request body.
type RegisterPayload struct {
	Email     string `json:"email" mod:"trim,lcase" validate:"required,email,max=254"`
	FirstName string `json:"first_name" mod:"trim" validate:"max=150"`
	LastName  string `json:"last_name" mod:"trim" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// LoginPayload represents the login request body.
type LoginPayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by login and register. The token is also set as
// the session cookie.
type LoginResponse struct {
	Token   string      `json:"token"`
	Account interface{} `json:"account"`
}
