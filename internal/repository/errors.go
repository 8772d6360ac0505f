package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrCourseNotFound  = errors.New("course not found")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrAlreadyEnrolled = errors.New("already enrolled")
)

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names declared in the migrations.
const (
	constraintUserEmail        = "users_email_key"
	constraintCourseSlug       = "courses_slug_key"
	constraintEnrollmentPair   = "enrollments_user_course_key"
	constraintEnrollmentUser   = "enrollments_user_id_fkey"
	constraintEnrollmentCourse = "enrollments_course_id_fkey"
)

// violation reports the constraint name when err is a postgres error with the given SQLSTATE.
func violation(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// translate maps constraint violations onto the repository sentinels and
// passes every other error through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if name, ok := violation(err, codeUniqueViolation); ok {
		switch name {
		case constraintUserEmail:
			return ErrEmailTaken
		case constraintCourseSlug:
			return ErrSlugTaken
		case constraintEnrollmentPair:
			return ErrAlreadyEnrolled
		}
	}
	if name, ok := violation(err, codeForeignKeyViolation); ok {
		switch name {
		case constraintEnrollmentUser:
			return ErrUserNotFound
		case constraintEnrollmentCourse:
			return ErrCourseNotFound
		}
	}
	return err
}
