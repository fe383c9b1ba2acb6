package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mihirk/taskman-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user signup endpoint.
// Age is optional and defaults to zero.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Age      int    `json:"age"      validate:"gte=0"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest defines the payload for profile updates. All fields are
// optional; the request is decoded strictly so any key outside this set is
// rejected with a 400 before anything is touched.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Age      *int    `json:"age"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// IsEmpty reports whether the update carries no fields at all.
func (r *UpdateUserRequest) IsEmpty() bool {
	return r.Name == nil && r.Age == nil && r.Email == nil && r.Password == nil
}

// CreateTaskRequest defines the payload for task creation.
// Completed is optional and defaults to false.
type CreateTaskRequest struct {
	Description string `json:"description" validate:"required"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest defines the payload for task updates. Decoded strictly;
// unknown keys fail the whole request.
type UpdateTaskRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// IsEmpty reports whether the update carries no fields at all.
func (r *UpdateTaskRequest) IsEmpty() bool {
	return r.Description == nil && r.Completed == nil
}

// UserResponse is the public view of a user. The password hash, the session
// tokens and the avatar blob never appear here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse defines the successful response for the signup and login
// endpoints: the user plus a fresh session token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Age:       user.Age,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Description: task.Description,
		Completed:   task.Completed,
		Owner:       task.OwnerID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}
	return responses
}
