package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID         = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner      = errors.New("task owner cannot be empty")
	ErrEmptyDescription    = errors.New("task description cannot be empty")
	ErrDescriptionTooShort = errors.New("task description must be at least 5 characters long")
)

// Minimum length of a task description after trimming.
const minDescriptionLength = 5

// Task represents a single work item belonging to exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     uuid.UUID `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user. It generates a new
// UUID for the task ID, trims the description and sets the timestamps.
// Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, description string, completed bool) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Completed:   completed,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwner
	}

	return ValidateDescription(t.Description)
}

// ValidateDescription checks a task description against the content policy:
// non-empty and at least 5 characters after trimming.
func ValidateDescription(description string) error {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return ErrEmptyDescription
	}
	if len(trimmed) < minDescriptionLength {
		return ErrDescriptionTooShort
	}
	return nil
}
