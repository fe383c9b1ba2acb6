// Package api provides the HTTP handlers for the task manager: account
// signup, login and session management, profile and avatar endpoints, and
// the owner-scoped task CRUD surface.
//
// Handlers decode and validate requests, delegate to the service and store
// layers, and translate errors into sanitized HTTP responses via the helpers
// in errors.go. Route wiring lives in cmd/server.
package api
