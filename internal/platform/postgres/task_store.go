package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/platform/logger"
	"github.com/mihirk/taskman-api/internal/store"
)

// sortableTaskColumns is the closed set of columns a task listing may be
// ordered by. Sort fields are interpolated into the query text, so anything
// outside this set is rejected before the query is built.
var sortableTaskColumns = map[string]string{
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// ErrInvalidSortField is returned when a task listing names a sort field
// outside the sortable column set.
var ErrInvalidSortField = fmt.Errorf("%w: unsupported sort field", store.ErrInvalidEntity)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the owner does not exist (foreign key
// violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, description, completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Description,
		task.Completed,
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("owner_id", task.OwnerID.String()))
			return fmt.Errorf("%w: owner with ID %s not found",
				store.ErrInvalidEntity, task.OwnerID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("owner_id", task.OwnerID.String()))
		return MapError(err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", task.OwnerID.String()))
	return nil
}

// GetByOwnerAndID implements store.TaskStore.GetByOwnerAndID
// Returns store.ErrTaskNotFound when the task is absent or belongs to a
// different owner; the caller cannot distinguish the two.
func (s *PostgresTaskStore) GetByOwnerAndID(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	query := `
		SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	return s.scanTask(s.db.QueryRowContext(ctx, query, taskID, ownerID))
}

// List implements store.TaskStore.List
// The sort field must come from the sortable column set; values are bound as
// parameters and only whitelisted column names reach the query text.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	opts store.ListTasksOptions,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := buildListTasksQuery(ownerID, opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.Description,
			&task.Completed,
			&task.OwnerID,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist or belongs to a
// different owner.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET description = $1, completed = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Description,
		task.Completed,
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
// It removes the task and returns the deleted row.
// Returns store.ErrTaskNotFound if the task does not exist or belongs to a
// different owner.
func (s *PostgresTaskStore) Delete(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
		RETURNING id, description, completed, owner_id, created_at, updated_at
	`
	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, taskID, ownerID))
	if err != nil {
		return nil, err
	}

	log.Info("task deleted successfully",
		slog.String("task_id", taskID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// DeleteByOwner implements store.TaskStore.DeleteByOwner
func (s *PostgresTaskStore) DeleteByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = $1`, ownerID)
	if err != nil {
		log.Error("failed to delete tasks for owner",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	log.Info("deleted tasks for owner",
		slog.String("owner_id", ownerID.String()),
		slog.Int64("count", rows))
	return rows, nil
}

// buildListTasksQuery assembles the SELECT for a task listing. Only the
// owner filter is unconditional; completion filter, ordering, limit and
// offset are appended as requested.
func buildListTasksQuery(
	ownerID uuid.UUID,
	opts store.ListTasksOptions,
) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1`)
	args := []any{ownerID}

	if opts.Completed != nil {
		args = append(args, *opts.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}

	column := "created_at"
	if opts.SortField != "" {
		mapped, ok := sortableTaskColumns[opts.SortField]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidSortField, opts.SortField)
		}
		column = mapped
	}
	direction := "ASC"
	if opts.SortDescending {
		direction = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", column, direction)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	return sb.String(), args, nil
}

// scanTask scans a single task row, mapping sql.ErrNoRows to
// store.ErrTaskNotFound.
func (s *PostgresTaskStore) scanTask(row *sql.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Description,
		&task.Completed,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return &task, nil
}
