package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockResult implements sql.Result for testing
type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (m mockResult) RowsAffected() (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.rowsAffected, nil
}

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "decks",
		ColumnName:     "title",
		ConstraintName: "decks_user_id_fkey",
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedErr error
		expectedMsg string
	}{
		{name: "nil error", err: nil, expectedErr: nil},
		{name: "no rows", err: sql.ErrNoRows, expectedErr: store.ErrNotFound},
		{name: "unique violation", err: newPgError(uniqueViolationCode), expectedErr: store.ErrDuplicate},
		{
			name:        "foreign key violation",
			err:         newPgError(foreignKeyViolationCode),
			expectedErr: store.ErrInvalidEntity,
			expectedMsg: "decks_user_id_fkey",
		},
		{name: "check violation", err: newPgError(checkViolationCode), expectedErr: store.ErrInvalidEntity},
		{
			name:        "not null violation",
			err:         newPgError(notNullViolationCode),
			expectedErr: store.ErrInvalidEntity,
			expectedMsg: "title",
		},
		{
			name:        "malformed uuid",
			err:         newPgError(invalidTextRepresentationCode),
			expectedErr: store.ErrNotFound,
		},
		{
			name:        "wrapped pg error",
			err:         fmt.Errorf("exec: %w", newPgError(uniqueViolationCode)),
			expectedErr: store.ErrDuplicate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapError(tc.err)
			if tc.expectedErr == nil {
				assert.NoError(t, mapped)
				return
			}
			assert.ErrorIs(t, mapped, tc.expectedErr)
			if tc.expectedMsg != "" {
				assert.Contains(t, mapped.Error(), tc.expectedMsg)
			}
		})
	}

	t.Run("unmapped errors pass through", func(t *testing.T) {
		original := errors.New("connection refused")
		assert.Same(t, original, MapError(original))

		serialization := newPgError("40001")
		assert.Equal(t, error(serialization), MapError(serialization))
	})
}

func TestMapEntityError(t *testing.T) {
	assert.Equal(t, store.ErrDeckNotFound, mapEntityError(sql.ErrNoRows, store.ErrDeckNotFound))
	assert.Equal(t, store.ErrCardNotFound,
		mapEntityError(newPgError(invalidTextRepresentationCode), store.ErrCardNotFound))
	assert.ErrorIs(t, mapEntityError(newPgError(uniqueViolationCode), store.ErrDeckNotFound), store.ErrDuplicate)
}

func TestCheckRowsAffected(t *testing.T) {
	t.Run("rows affected", func(t *testing.T) {
		assert.NoError(t, CheckRowsAffected(mockResult{rowsAffected: 1}, store.ErrDeckNotFound))
	})

	t.Run("no rows uses entity error", func(t *testing.T) {
		assert.Equal(t, store.ErrDeckNotFound, CheckRowsAffected(mockResult{}, store.ErrDeckNotFound))
	})

	t.Run("no rows without entity error", func(t *testing.T) {
		assert.Equal(t, store.ErrNotFound, CheckRowsAffected(mockResult{}, nil))
	})

	t.Run("rows affected error", func(t *testing.T) {
		err := CheckRowsAffected(mockResult{err: errors.New("driver")}, store.ErrDeckNotFound)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get rows affected")
	})

	t.Run("nil result", func(t *testing.T) {
		assert.Error(t, CheckRowsAffected(nil, nil))
	})
}

func TestMapUniqueViolation(t *testing.T) {
	assert.ErrorIs(t, MapUniqueViolation(newPgError(uniqueViolationCode), store.ErrEmailExists), store.ErrEmailExists)
	assert.ErrorIs(t, MapUniqueViolation(newPgError(uniqueViolationCode), nil), store.ErrDuplicate)
	assert.ErrorIs(t, MapUniqueViolation(sql.ErrNoRows, store.ErrEmailExists), store.ErrNotFound)
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsUniqueViolation(newPgError(uniqueViolationCode)))
	assert.False(t, IsUniqueViolation(newPgError(foreignKeyViolationCode)))
	assert.True(t, IsForeignKeyViolation(newPgError(foreignKeyViolationCode)))
	assert.False(t, IsForeignKeyViolation(errors.New("plain")))
	assert.True(t, IsNotFoundError(sql.ErrNoRows))
	assert.True(t, IsNotFoundError(store.ErrDeckNotFound))
	assert.False(t, IsNotFoundError(nil))
}
