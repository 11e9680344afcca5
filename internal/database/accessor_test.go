package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/coursehub/coursehub/internal/apperror"
)

func TestTranslateUniqueViolation(t *testing.T) {
	err := Translate(&pgconn.PgError{Code: "23505", ConstraintName: "courses_title_unique"})

	assert.ErrorIs(t, err, apperror.ErrConstraintViolation)
	assert.Contains(t, err.Error(), "courses_title_unique")
}

func TestTranslateNoRows(t *testing.T) {
	assert.ErrorIs(t, Translate(pgx.ErrNoRows), apperror.ErrNotFound)
}

func TestTranslatePassesThroughOtherErrors(t *testing.T) {
	other := &pgconn.PgError{Code: "40001"}
	assert.Equal(t, error(other), Translate(other))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, Translate(plain))

	assert.NoError(t, Translate(nil))
}
