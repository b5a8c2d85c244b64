package auth

import "github.com/google/uuid"

// LoginRequest carries operator credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OperatorSummary is the operator payload returned on login.
type OperatorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Operator    OperatorSummary `json:"operator"`
}
