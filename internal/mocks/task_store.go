package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, task *domain.Task) error
	GetByOwnerAndIDFn func(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	ListFn            func(ctx context.Context, ownerID uuid.UUID, opts store.ListTasksOptions) ([]*domain.Task, error)
	UpdateFn          func(ctx context.Context, task *domain.Task) error
	DeleteFn          func(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
	DeleteByOwnerFn   func(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Data for default implementation, in insertion order
	mu    sync.Mutex
	Tasks []*domain.Task

	CreateError error
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Tasks = append(m.Tasks, task)
	return nil
}

// GetByOwnerAndID implements the TaskStore interface
func (m *MockTaskStore) GetByOwnerAndID(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	if m.GetByOwnerAndIDFn != nil {
		return m.GetByOwnerAndIDFn(ctx, ownerID, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, task := range m.Tasks {
		if task.ID == taskID && task.OwnerID == ownerID {
			return task, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// List implements the TaskStore interface. The default implementation
// applies the completion filter and pagination but not sorting.
func (m *MockTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.ListTasksOptions,
) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, opts)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domain.Task
	for _, task := range m.Tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if opts.Completed != nil && task.Completed != *opts.Completed {
			continue
		}
		result = append(result, task)
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(result) {
			return nil, nil
		}
		result = result[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.Tasks {
		if existing.ID == task.ID && existing.OwnerID == task.OwnerID {
			m.Tasks[i] = task
			return nil
		}
	}
	return store.ErrTaskNotFound
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, ownerID, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, task := range m.Tasks {
		if task.ID == taskID && task.OwnerID == ownerID {
			m.Tasks = append(m.Tasks[:i], m.Tasks[i+1:]...)
			return task, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

// DeleteByOwner implements the TaskStore interface
func (m *MockTaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.DeleteByOwnerFn != nil {
		return m.DeleteByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*domain.Task
	var deleted int64
	for _, task := range m.Tasks {
		if task.OwnerID == ownerID {
			deleted++
			continue
		}
		kept = append(kept, task)
	}
	m.Tasks = kept
	return deleted, nil
}

// WithTx implements the TaskStore interface for transaction support
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	// For mock purposes, just return the same mock
	return m
}
