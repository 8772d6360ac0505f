package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zehnify/api/internal/models"
)

var (
	userColumns   = []string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}
	courseCols = []string{"id", "title", "slug", "description", "price", "category", "difficulty", "thumbnail_url", "lessons", "created_at", "updated_at"}
	createdAt     = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func sql(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func sampleCourse() models.Course {
	thumb := "https://cdn.zehnify.app/courses/c1/t.png"
	return models.Course{
		ID:           "c1",
		Title:        "React Basics",
		Slug:         "react-basics",
		Description:  "Components and hooks",
		Price:        19.99,
		Category:     "Web",
		Difficulty:   models.DifficultyBeginner,
		ThumbnailURL: &thumb,
		Lessons:      []models.Lesson{{Title: "JSX", VideoURL: "https://v.example/1", Order: 1}},
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func courseRow(rows *pgxmock.Rows, c models.Course) *pgxmock.Rows {
	return rows.AddRow(c.ID, c.Title, c.Slug, c.Description, c.Price, c.Category, c.Difficulty,
		c.ThumbnailURL, c.Lessons, c.CreatedAt, c.UpdatedAt)
}

func TestUserRepositoryCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	user := models.User{
		ID: "u1", Name: "Zaara", Email: "zaara@example.com", PasswordHash: []byte("$argon2id$..."),
		Role: models.UserRoleUser, CreatedAt: createdAt, UpdatedAt: createdAt,
	}

	mock.ExpectExec(sql("INSERT INTO users")).
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), user))

	mock.ExpectExec(sql("INSERT INTO users")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(uniqueViolation("users_email_key"))
	assert.ErrorIs(t, repo.Create(context.Background(), user), ErrEmailTaken)
}

func TestUserRepositoryLookup(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery(sql("FROM users WHERE email = $1")).
		WithArgs("zaara@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("u1", "Zaara", "zaara@example.com", []byte("hash"), models.UserRoleAdmin, createdAt, createdAt))

	user, err := repo.FindByEmail(ctx, "zaara@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, []byte("hash"), user.PasswordHash)
	assert.True(t, user.IsAdmin())

	mock.ExpectQuery(sql("FROM users WHERE id = $1")).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(userColumns))

	_, err = repo.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepositoryUpdates(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()

	mock.ExpectExec(sql("UPDATE users SET role = $2")).
		WithArgs("u1", models.UserRoleAdmin).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateRole(ctx, "u1", models.UserRoleAdmin))

	mock.ExpectExec(sql("UPDATE users SET password_hash = $2")).
		WithArgs("ghost", []byte("new")).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdatePasswordHash(ctx, "ghost", []byte("new")), ErrUserNotFound)
}

func TestCourseRepositoryCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository(mock)
	course := sampleCourse()
	course.Lessons = nil

	// nil lessons are stored as an empty JSON array
	mock.ExpectExec(sql("INSERT INTO courses")).
		WithArgs(course.ID, course.Title, course.Slug, course.Description, course.Price, course.Category,
			course.Difficulty, course.ThumbnailURL, []models.Lesson{}, course.CreatedAt, course.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), course))

	mock.ExpectExec(sql("INSERT INTO courses")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(uniqueViolation("courses_slug_key"))
	assert.ErrorIs(t, repo.Create(context.Background(), course), ErrSlugTaken)
}

func TestCourseRepositoryGetByID(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository(mock)
	ctx := context.Background()
	want := sampleCourse()

	mock.ExpectQuery(sql("FROM courses WHERE id = $1")).
		WithArgs("c1").
		WillReturnRows(courseRow(pgxmock.NewRows(courseCols), want))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	mock.ExpectQuery(sql("FROM courses WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(courseCols))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseRepositoryList(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository(mock)
	ctx := context.Background()

	mock.ExpectQuery(sql("FROM courses ORDER BY created_at DESC, id DESC")).
		WillReturnRows(pgxmock.NewRows(courseCols))

	courses, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)

	newer := sampleCourse()
	older := sampleCourse()
	older.ID, older.Slug, older.ThumbnailURL, older.Lessons = "c0", "intro", nil, nil
	older.CreatedAt = createdAt.Add(-time.Hour)

	rows := pgxmock.NewRows(courseCols)
	courseRow(rows, newer)
	courseRow(rows, older)
	mock.ExpectQuery(sql("FROM courses ORDER BY")).WillReturnRows(rows)

	courses, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "c1", courses[0].ID)
	assert.Nil(t, courses[1].ThumbnailURL)
	assert.Equal(t, []models.Lesson{}, courses[1].Lessons)
}

func TestCourseRepositoryUpdateAndDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewCourseRepository(mock)
	ctx := context.Background()
	course := sampleCourse()

	mock.ExpectExec(sql("UPDATE courses")).
		WithArgs(course.ID, course.Title, course.Description, course.Price, course.Category,
			course.Difficulty, course.ThumbnailURL, course.Lessons, course.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Update(ctx, course))

	course.ID = "missing"
	mock.ExpectExec(sql("UPDATE courses")).
		WithArgs(course.ID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.Update(ctx, course), ErrCourseNotFound)

	mock.ExpectExec(sql("DELETE FROM courses WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(ctx, "c1"))

	mock.ExpectExec(sql("DELETE FROM courses WHERE id = $1")).
		WithArgs("c1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), ErrCourseNotFound)
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	enrollment := models.Enrollment{ID: "e1", UserID: "u1", CourseID: "c1", EnrolledAt: createdAt}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"inserted", nil, nil},
		{"duplicate pair", uniqueViolation("enrollments_user_course_key"), ErrAlreadyEnrolled},
		{"unknown course", &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_course_id_fkey"}, ErrCourseNotFound},
		{"unknown user", &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_user_id_fkey"}, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			repo := NewEnrollmentRepository(mock)

			exp := mock.ExpectExec(sql("INSERT INTO enrollments")).
				WithArgs(enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt, enrollment.Progress)
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := repo.Create(context.Background(), enrollment)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnrollmentRepositoryListByUser(t *testing.T) {
	mock := newMock(t)
	repo := NewEnrollmentRepository(mock)
	course := sampleCourse()

	columns := append([]string{"id", "user_id", "course_id", "enrolled_at", "progress"}, courseCols...)
	mock.ExpectQuery(sql("JOIN courses c ON c.id = e.course_id")).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			"e1", "u1", course.ID, createdAt, 0.5,
			course.ID, course.Title, course.Slug, course.Description, course.Price, course.Category, course.Difficulty,
			course.ThumbnailURL, course.Lessons, course.CreatedAt, course.UpdatedAt,
		))

	enrollments, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 0.5, enrollments[0].Progress)
	require.NotNil(t, enrollments[0].Course)
	assert.Equal(t, course, *enrollments[0].Course)
}
