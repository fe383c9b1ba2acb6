package api

import (
	"errors"
	"net/http"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/platform/imaging"
	"github.com/mihirk/taskman-api/internal/service/auth"
	userservice "github.com/mihirk/taskman-api/internal/service/user"
	"github.com/mihirk/taskman-api/internal/store"
)

// LoginErrorMessage is the single body returned for every login failure.
// Unknown email and wrong password are deliberately indistinguishable.
const LoginErrorMessage = "Unable to login!"

// domainValidationErrors enumerates the validation sentinels whose messages
// are safe to return verbatim, the way client-side form errors would read.
var domainValidationErrors = []error{
	domain.ErrEmptyName,
	domain.ErrNegativeAge,
	domain.ErrEmptyEmail,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrPasswordContainsWord,
	domain.ErrEmptyPassword,
	domain.ErrEmptyDescription,
	domain.ErrDescriptionTooShort,
}

func isDomainValidationError(err error) bool {
	for _, sentinel := range domainValidationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return errors.Is(err, domain.ErrValidation)
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Login failures stay 400 rather than 401: the endpoint is public and
	// the response must not distinguish bad email from bad password.
	case errors.Is(err, userservice.ErrInvalidCredentials):
		return http.StatusBadRequest

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// A duplicate email reads like any other signup validation failure.
	case store.IsDuplicateError(err):
		return http.StatusBadRequest

	// Bad request errors
	case isDomainValidationError(err),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, imaging.ErrDecodeFailed):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Please authenticate."

	case errors.Is(err, userservice.ErrInvalidCredentials):
		return LoginErrorMessage

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrAvatarNotFound),
		errors.Is(err, store.ErrUserNotFound):
		// The public avatar endpoint must not reveal whether the user
		// exists, only that no image is available.
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case isDomainValidationError(err):
		// Validation sentinel messages are static policy text, safe to
		// show as-is.
		return err.Error()

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, imaging.ErrDecodeFailed):
		return "Please provide a valid image"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError combines status mapping and message sanitization for the
// common handler tail.
func HandleAPIError(err error) (int, string) {
	status := MapErrorToStatusCode(err)
	return status, GetSafeErrorMessage(err)
}
