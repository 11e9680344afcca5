package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBindsValuesPositionally(t *testing.T) {
	q := New("SELECT id FROM courses WHERE title LIKE ? AND status <> ?", "%go%", "Deleted")

	require.NoError(t, q.Err())
	assert.Equal(t, "SELECT id FROM courses WHERE title LIKE $1 AND status <> $2", q.SQL())
	assert.Equal(t, []any{"%go%", "Deleted"}, q.Args())
}

func TestQuerySplicesRawFragmentsVerbatim(t *testing.T) {
	q := New("SELECT id FROM courses ORDER BY ? ? LIMIT ?", Raw("rating"), Raw("DESC"), 10)

	require.NoError(t, q.Err())
	assert.Equal(t, "SELECT id FROM courses ORDER BY rating DESC LIMIT $1", q.SQL())
	assert.Equal(t, []any{10}, q.Args())
}

func TestQueryAppendContinuesNumbering(t *testing.T) {
	q := New("UPDATE courses SET title = ?", "New title").
		Append(" WHERE id = ? AND row_version = ?", int64(5), int64(3))

	require.NoError(t, q.Err())
	assert.Equal(t, "UPDATE courses SET title = $1 WHERE id = $2 AND row_version = $3", q.SQL())
	assert.Equal(t, []any{"New title", int64(5), int64(3)}, q.Args())
}

func TestQueryRejectsPlaceholderMismatch(t *testing.T) {
	assert.Error(t, New("SELECT ? FROM courses").Err())
	assert.Error(t, New("SELECT 1 FROM courses", "stray").Err())
}

func TestRawIsNeverBound(t *testing.T) {
	// A user-supplied string in the same position must be bound, not spliced.
	bound := New("ORDER BY ?", "rating; DROP TABLE courses")
	require.NoError(t, bound.Err())
	assert.Equal(t, "ORDER BY $1", bound.SQL())
	assert.Len(t, bound.Args(), 1)
}
