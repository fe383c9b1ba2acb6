package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mihirk/taskman-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestBuildListTasksQuery(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name      string
		opts      store.ListTasksOptions
		wantSQL   string
		wantArgs  []any
		wantError bool
	}{
		{
			name: "defaults",
			opts: store.ListTasksOptions{},
			wantSQL: `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 ORDER BY created_at ASC`,
			wantArgs: []any{ownerID},
		},
		{
			name: "completed filter",
			opts: store.ListTasksOptions{Completed: boolPtr(true)},
			wantSQL: `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 AND completed = $2 ORDER BY created_at ASC`,
			wantArgs: []any{ownerID, true},
		},
		{
			name: "sort descending by camelCase field",
			opts: store.ListTasksOptions{SortField: "createdAt", SortDescending: true},
			wantSQL: `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 ORDER BY created_at DESC`,
			wantArgs: []any{ownerID},
		},
		{
			name: "limit and skip",
			opts: store.ListTasksOptions{Limit: 10, Skip: 20},
			wantSQL: `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
			wantArgs: []any{ownerID, 10, 20},
		},
		{
			name: "everything combined",
			opts: store.ListTasksOptions{
				Completed:      boolPtr(false),
				SortField:      "description",
				SortDescending: false,
				Limit:          5,
				Skip:           5,
			},
			wantSQL: `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 AND completed = $2 ORDER BY description ASC LIMIT $3 OFFSET $4`,
			wantArgs: []any{ownerID, false, 5, 5},
		},
		{
			name:     "negative limit and skip ignored",
			opts:     store.ListTasksOptions{Limit: -1, Skip: -3},
			wantSQL:  `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 ORDER BY created_at ASC`,
			wantArgs: []any{ownerID},
		},
		{
			name:      "unknown sort field rejected",
			opts:      store.ListTasksOptions{SortField: "owner_id; DROP TABLE tasks"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args, err := buildListTasksQuery(ownerID, tt.opts)
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSortField)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
