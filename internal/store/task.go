package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mihirk/taskman-api/internal/domain"
)

// ListTasksOptions controls filtering, sorting and pagination for task
// listings. The zero value lists every task for the owner in creation order.
type ListTasksOptions struct {
	// Completed filters by completion state when non-nil.
	Completed *bool

	// SortField names the column to order by. Empty means creation time.
	// Implementations must reject fields outside their sortable set.
	SortField string

	// SortDescending orders the listing newest/highest first when true.
	SortDescending bool

	// Limit caps the number of returned tasks. Zero or negative means no cap.
	Limit int

	// Skip discards that many tasks from the start of the listing.
	// Zero or negative means no offset.
	Skip int
}

// TaskStore defines the interface for task data persistence. Every read and
// mutation is owner-scoped: a task is only visible to the user it belongs to.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByOwnerAndID retrieves a task by its ID, restricted to the given
	// owner. Returns ErrTaskNotFound if the task does not exist or belongs
	// to a different owner; the two cases are indistinguishable.
	GetByOwnerAndID(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// List retrieves the owner's tasks according to the given options.
	List(ctx context.Context, ownerID uuid.UUID, opts ListTasksOptions) ([]*domain.Task, error)

	// Update persists changes to an existing task's description and
	// completion state. Returns ErrTaskNotFound if the task does not exist
	// or belongs to a different owner.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID, restricted to the given owner, and
	// returns the deleted task. Returns ErrTaskNotFound if the task does
	// not exist or belongs to a different owner.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task belonging to the given owner and
	// reports how many were deleted. Used by the user-deletion cascade.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
