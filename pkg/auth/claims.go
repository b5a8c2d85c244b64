package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID   uuid.UUID
	OperatorName string
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to POS clients.
type AccessTokenClaims struct {
	OperatorID   uuid.UUID `json:"operator_id"`
	OperatorName string    `json:"operator_name,omitempty"`
	jwt.RegisteredClaims
}
