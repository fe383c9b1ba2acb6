package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID          = errors.New("user ID cannot be empty")
	ErrEmptyName            = errors.New("name cannot be empty")
	ErrNegativeAge          = errors.New("age must not be negative")
	ErrEmptyEmail           = errors.New("email cannot be empty")
	ErrInvalidEmail         = errors.New("invalid email format")
	ErrPasswordTooShort     = errors.New("password must be at least 7 characters long")
	ErrPasswordTooLong      = errors.New("password must be at most 72 characters long")
	ErrPasswordContainsWord = errors.New("password cannot contain 'password'")
	ErrEmptyPassword        = errors.New("password cannot be empty")
)

// bcrypt rejects inputs longer than 72 bytes.
const maxPasswordLength = 72

// User represents a registered user of the task manager. Password holds the
// plaintext only transiently during signup or a profile update; after hashing
// it is cleared and only HashedPassword is persisted.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Age            int       `json:"age"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, used transiently during signup/updates
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	Avatar         []byte    `json:"-"` // PNG bytes, served only via the avatar endpoint
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given name, email, password and age.
// It generates a new UUID for the user ID, normalizes the name and email
// (trimming whitespace, lower-casing the email) and sets the timestamps.
// Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(name, email, password string, age int) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Age:       age,
		Email:     NormalizeEmail(email),
		Password:  strings.TrimSpace(password),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims surrounding whitespace and lower-cases an email
// address. All email comparisons in the system operate on the normalized
// form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}

	if u.Age < 0 {
		return ErrNegativeAge
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	// During signup/update the plaintext password is present and must meet
	// the policy. For users loaded from the store only the hash exists.
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// ValidatePassword checks a plaintext password against the password policy:
// at least 7 characters, at most 72 (the bcrypt input limit), and it must
// not contain the substring "password" in any casing.
func ValidatePassword(password string) error {
	if len(password) < 7 {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return ErrPasswordContainsWord
	}
	return nil
}

// validEmailFormat reports whether the email parses as an RFC 5322 address
// with no display name.
func validEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
