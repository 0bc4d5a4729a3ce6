package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/avoronkov/webauth/internal/auth/service"
	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
)

func TestCredentialValidator_ValidateRegistration(t *testing.T) {
	cv := service.NewCredentialValidator()

	testCases := []struct {
		name     string
		username string
		password string
		email    string
		wantErr  bool
	}{
		{"valid without email", "alice", "password123", "", false},
		{"valid with email", "alice", "password123", "alice@example.com", false},
		{"missing username", "", "password123", "", true},
		{"missing password", "alice", "", "", true},
		{"username too long", strings.Repeat("a", 51), "password123", "", true},
		{"password at bcrypt limit", "alice", strings.Repeat("p", 72), "", false},
		{"password over bcrypt limit", "alice", strings.Repeat("p", 73), "", true},
		{"malformed email", "alice", "password123", "not-an-email", true},
		{"email too long", "alice", "password123", strings.Repeat("a", 115) + "@b.com", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := cv.ValidateRegistration(tc.username, tc.password, tc.email)

			if tc.wantErr {
				if !errors.Is(err, commonerrors.ErrValidation) {
					t.Errorf("expected VALIDATION_FAILED, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
