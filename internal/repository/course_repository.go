package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"zehnify/api/internal/models"
)

type CourseRepository struct {
	pool DBTX
}

func NewCourseRepository(pool DBTX) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `
	id, title, slug, description, price, category, difficulty,
	thumbnail_url, lessons, created_at, updated_at
`

// Create inserts the course. A slug collision surfaces as ErrSlugTaken.
func (r *CourseRepository) Create(ctx context.Context, course models.Course) error {
	const query = `
		INSERT INTO courses (
			id, title, slug, description, price, category, difficulty,
			thumbnail_url, lessons, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11
		)
	`

	_, err := r.pool.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Slug,
		course.Description,
		course.Price,
		course.Category,
		course.Difficulty,
		course.ThumbnailURL,
		lessonsOrEmpty(course.Lessons),
		course.CreatedAt,
		course.UpdatedAt,
	)
	return translate(err)
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// Update overwrites the mutable columns. The slug is never rewritten.
func (r *CourseRepository) Update(ctx context.Context, course models.Course) error {
	const query = `
		UPDATE courses
		SET title = $2,
		    description = $3,
		    price = $4,
		    category = $5,
		    difficulty = $6,
		    thumbnail_url = $7,
		    lessons = $8,
		    updated_at = $9
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Price,
		course.Category,
		course.Difficulty,
		course.ThumbnailURL,
		lessonsOrEmpty(course.Lessons),
		course.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// Delete removes the course; enrollments referencing it go with it through ON DELETE CASCADE.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (models.Course, error) {
	var course models.Course
	if err := row.Scan(
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
		return models.Course{}, err
	}
	course.Lessons = lessonsOrEmpty(course.Lessons)
	return course, nil
}

// a nil slice would encode as JSON null and violate the NOT NULL lessons column
func lessonsOrEmpty(lessons []models.Lesson) []models.Lesson {
	if lessons == nil {
		return []models.Lesson{}
	}
	return lessons
}
