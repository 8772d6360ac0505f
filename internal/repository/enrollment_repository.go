package repository

import (
	"context"

	"zehnify/api/internal/models"
)

type EnrollmentRepository struct {
	pool DBTX
}

func NewEnrollmentRepository(pool DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Create inserts the enrollment in a single statement so the
// (user_id, course_id) unique constraint decides concurrent duplicates:
// exactly one insert wins and the others get ErrAlreadyEnrolled.
// Unknown users or courses surface as ErrUserNotFound / ErrCourseNotFound.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment models.Enrollment) error {
	const query = `
		INSERT INTO enrollments (
			id, user_id, course_id, enrolled_at, progress
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := r.pool.Exec(ctx, query,
		enrollment.ID,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.EnrolledAt,
		enrollment.Progress,
	)
	return translate(err)
}

// ListByUser returns the user's enrollments, newest first, each joined with its course.
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	const query = `
		SELECT e.id, e.user_id, e.course_id, e.enrolled_at, e.progress,
		       c.id, c.title, c.slug, c.description, c.price, c.category, c.difficulty,
		       c.thumbnail_url, c.lessons, c.created_at, c.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC, e.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := make([]models.Enrollment, 0)
	for rows.Next() {
		var (
			enrollment models.Enrollment
			course     models.Course
		)
		if err := rows.Scan(
			&enrollment.ID,
			&enrollment.UserID,
			&enrollment.CourseID,
			&enrollment.EnrolledAt,
			&enrollment.Progress,
			&course.ID,
			&course.Title,
			&course.Slug,
			&course.Description,
			&course.Price,
			&course.Category,
			&course.Difficulty,
			&course.ThumbnailURL,
			&course.Lessons,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		course.Lessons = lessonsOrEmpty(course.Lessons)
		enrollment.Course = &course
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, rows.Err()
}
