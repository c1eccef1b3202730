package httpdto

// SignInRequest is used for POST /signin
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is used for POST /register
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterResponse is returned with 201 after a successful registration
type RegisterResponse struct {
	Success bool    `json:"success"`
	User    UserDTO `json:"user"`
}

// RegisterErrorResponse is returned when registration fails
type RegisterErrorResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Fields  map[string]bool `json:"fields,omitempty"`
	Field   string          `json:"field,omitempty"`
	Error   string          `json:"error,omitempty"`
}
