package service

import (
	"github.com/go-playground/validator/v10"

	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
)

// Field limits follow the stored schema: usernames up to 50 characters,
// passwords capped at bcrypt's 72-byte input limit, emails up to 120.
type registrationForm struct {
	Username string `validate:"required,max=50"`
	Password string `validate:"required,max=72"`
	Email    string `validate:"omitempty,email,max=120"`
}

type CredentialValidator struct {
	validate *validator.Validate
}

func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{validate: validator.New()}
}

func (cv *CredentialValidator) ValidateRegistration(username, password, email string) error {
	form := registrationForm{
		Username: username,
		Password: password,
		Email:    email,
	}
	if err := cv.validate.Struct(form); err != nil {
		return commonerrors.ErrValidation.WithCause(err)
	}
	return nil
}
