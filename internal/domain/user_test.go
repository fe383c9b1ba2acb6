package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("Mihir", "mihir@example.com", "mypass123", 25)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Name != "Mihir" {
		t.Errorf("Expected name %q, got %q", "Mihir", user.Name)
	}

	if user.Email != "mihir@example.com" {
		t.Errorf("Expected email %q, got %q", "mihir@example.com", user.Email)
	}

	if user.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	if user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero UpdatedAt time")
	}
}

func TestNewUserNormalization(t *testing.T) {
	user, err := NewUser("  Mihir  ", "  MIHIR@Example.COM ", "mypass123", 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.Name != "Mihir" {
		t.Errorf("Expected trimmed name %q, got %q", "Mihir", user.Name)
	}

	if user.Email != "mihir@example.com" {
		t.Errorf("Expected lower-cased trimmed email, got %q", user.Email)
	}
}

func TestNewUserValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		age      int
		wantErr  error
	}{
		{"empty name", "", "a@example.com", "mypass123", 0, ErrEmptyName},
		{"whitespace name", "   ", "a@example.com", "mypass123", 0, ErrEmptyName},
		{"negative age", "Mihir", "a@example.com", "mypass123", -1, ErrNegativeAge},
		{"empty email", "Mihir", "", "mypass123", 0, ErrEmptyEmail},
		{"invalid email", "Mihir", "not-an-email", "mypass123", 0, ErrInvalidEmail},
		{"short password", "Mihir", "a@example.com", "abc123", 0, ErrPasswordTooShort},
		{"password contains password", "Mihir", "a@example.com", "Password1", 0, ErrPasswordContainsWord},
		{"password contains PASSWORD upper", "Mihir", "a@example.com", "myPASSWORD", 0, ErrPasswordContainsWord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.userName, tt.email, tt.password, tt.age)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	// A user loaded from the store has no plaintext password, only a hash.
	user := User{
		ID:             uuid.New(),
		Name:           "Mihir",
		Email:          "mihir@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}

	if err := user.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	user.HashedPassword = ""
	if err := user.Validate(); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected error %v, got %v", ErrEmptyPassword, err)
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("mypass123"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if err := ValidatePassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooShort, err)
	}

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidatePassword(string(long)); !errors.Is(err, ErrPasswordTooLong) {
		t.Errorf("Expected error %v, got %v", ErrPasswordTooLong, err)
	}
}
