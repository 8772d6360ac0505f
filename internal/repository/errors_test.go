package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate email", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, ErrEmailTaken},
		{"duplicate slug", &pgconn.PgError{Code: "23505", ConstraintName: "courses_slug_key"}, ErrSlugTaken},
		{"duplicate enrollment", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "enrollments_user_course_key"}), ErrAlreadyEnrolled},
		{"unknown course", &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_course_id_fkey"}, ErrCourseNotFound},
		{"unknown user", &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_user_id_fkey"}, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translate(tt.err), tt.want)
		})
	}
}

func TestTranslatePassesThroughOtherErrors(t *testing.T) {
	other := &pgconn.PgError{Code: "23505", ConstraintName: "some_other_key"}
	assert.Same(t, other, translate(other))

	plain := errors.New("connection reset")
	assert.Same(t, plain, translate(plain))

	assert.NoError(t, translate(nil))
}
