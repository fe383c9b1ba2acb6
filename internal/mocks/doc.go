// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of interfaces used throughout the
// application, facilitating consistent and DRY testing across the codebase.
// Instead of defining inline mocks in individual test files, these standardized
// mock implementations can be reused.
//
// Each mock exposes function fields (CreateFn, ValidateTokenFn, ...) that
// override the default behavior per test, plus map-backed defaults that make
// common cases work without any setup.
//
// Usage:
//
//	import "github.com/mihirk/taskman-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    jwtService := &mocks.MockJWTService{Token: "mocked-token"}
//	    // Use the mock in your test...
//	}
package mocks
