// Package types provides type definitions for structured data used throughout the career portal client.
package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// RegisterRequest represents the request to create a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the credential exchange request sent to POST /token.
// The backend reuses its registration schema for login, so an empty email is sent along.
type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email"`
}

// TokenResponse represents the login response carrying the bearer credential.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	return newValidator().Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return newValidator().Struct(r)
}

// newValidator returns a validator with the project's custom tags registered.
func newValidator() *validator.Validate {
	validate := validator.New()
	// notblank rejects whitespace-only strings that "required" lets through.
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	return validate
}
