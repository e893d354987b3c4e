package storage

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: "23505"},
			expected: true,
		},
		{
			name:     "wrapped unique violation",
			err:      errors.Join(errors.New("insert failed"), &pgconn.PgError{Code: "23505"}),
			expected: true,
		},
		{
			name:     "other pg error",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("connection refused"),
			expected: false,
		},
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err))
		})
	}
}
