package api

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mihirk/taskman-api/internal/api/middleware"
	"github.com/mihirk/taskman-api/internal/api/shared"
	"github.com/mihirk/taskman-api/internal/platform/logger"
	userservice "github.com/mihirk/taskman-api/internal/service/user"
)

// MaxAvatarBytes caps the accepted avatar upload size.
const MaxAvatarBytes = 1_000_000

// InvalidUpdatesMessage is returned when a profile or task update carries a
// field outside the allowed set.
const InvalidUpdatesMessage = "Invalid updates"

// AvatarFileTypeMessage is returned when the uploaded file has a
// non-image extension.
const AvatarFileTypeMessage = "Please select .jpg, .png, and .jpeg files only."

var allowedAvatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UserHandler handles account-related HTTP requests
type UserHandler struct {
	userService *userservice.Service
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *userservice.Service, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		userService: userService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users requests.
// It creates a new account and opens its first session.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid signup request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		log.Debug("signup request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.userService.Signup(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login requests.
// Every failure responds 400 with the same message.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid login request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, LoginErrorMessage)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, LoginErrorMessage)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures and unexpected errors alike get the
		// canonical login failure body; only the log tells them apart.
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, LoginErrorMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout requests.
// It revokes exactly the session the request authenticated with.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}
	token, ok := middleware.GetSessionToken(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	if err := h.userService.Logout(r.Context(), user.ID, token); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to log out", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logoutAll requests.
// It revokes every session of the authenticated user.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	if err := h.userService.LogoutAll(r.Context(), user.ID); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to log out", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Me handles GET /users/me requests.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// Update handles PATCH /users/me requests. The body is decoded strictly:
// any key outside name, age, email and password fails the whole request.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSONStrict(r, &req); err != nil {
		log.Debug("rejected profile update", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, InvalidUpdatesMessage)
		return
	}

	// A body with no recognized fields is a no-op, not an error.
	if req.IsEmpty() {
		shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user, req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(updated))
}

// Delete handles DELETE /users/me requests.
// The response echoes the deleted profile.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	if err := h.userService.Delete(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to delete account", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UploadAvatar handles POST /users/me/avatar requests. The image arrives as
// the multipart field "avatar", capped at MaxAvatarBytes, with a jpg, jpeg
// or png extension. It is normalized to a 250x250 PNG before storage.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	// The reader cap leaves headroom above MaxAvatarBytes for multipart
	// framing; the per-file check below enforces the documented limit, so
	// a file of exactly MaxAvatarBytes still parses.
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarBytes+10240)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		log.Debug("avatar upload rejected", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Please provide an avatar file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn("failed to close uploaded file", slog.String("error", closeErr.Error()))
		}
	}()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAvatarExtensions[ext] {
		shared.RespondWithError(w, r, http.StatusBadRequest, AvatarFileTypeMessage)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarBytes+1))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Failed to read avatar file", err)
		return
	}
	if len(data) > MaxAvatarBytes {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Avatar file is too large")
		return
	}

	if err := h.userService.SetAvatar(r.Context(), user.ID, data); err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar requests.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.AuthErrorMessage)
		return
	}

	if err := h.userService.ClearAvatar(r.Context(), user.ID); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to delete avatar", err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles GET /users/{id}/avatar requests. The endpoint is public;
// a missing user and a missing avatar both read as 404.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}

	avatar, err := h.userService.GetAvatar(r.Context(), userID)
	if err != nil {
		status, message := HandleAPIError(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(avatar); err != nil {
		h.logger.Error("failed to write avatar response", slog.String("error", err.Error()))
	}
}
