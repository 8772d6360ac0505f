package service

import (
	"context"

	"zehnify/api/internal/models"
)

// UserStore is satisfied by repository.UserRepository and memory.Users.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id string, hash []byte) error
}

type CourseStore interface {
	Create(ctx context.Context, course models.Course) error
	GetByID(ctx context.Context, id string) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Update(ctx context.Context, course models.Course) error
	Delete(ctx context.Context, id string) error
}

type EnrollmentStore interface {
	Create(ctx context.Context, enrollment models.Enrollment) error
	ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
}

// CourseCache is optional; a nil cache means every read goes to the store.
type CourseCache interface {
	GetCourses(ctx context.Context) ([]models.Course, bool, error)
	SetCourses(ctx context.Context, courses []models.Course) error
	InvalidateCourses(ctx context.Context) error
}

// ThumbnailStore is optional; without it thumbnail uploads report ErrUnavailable.
type ThumbnailStore interface {
	PutThumbnail(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
