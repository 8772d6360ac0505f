package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"zehnify/api/internal/ids"
	"zehnify/api/internal/models"
	"zehnify/api/internal/repository"
)

type EnrollmentService struct {
	enrollments EnrollmentStore
	courses     CourseStore
	log         zerolog.Logger
	now         func() time.Time
}

func NewEnrollmentService(enrollments EnrollmentStore, courses CourseStore, log zerolog.Logger) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		log:         log,
		now:         time.Now,
	}
}

// Enroll records that userID takes courseID. An empty userID means the actor.
// Only admins may enroll someone other than themselves.
func (s *EnrollmentService) Enroll(ctx context.Context, actor models.User, userID, courseID string) (models.Enrollment, error) {
	userID, err := s.subject(actor, userID)
	if err != nil {
		return models.Enrollment{}, err
	}
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return models.Enrollment{}, fmt.Errorf("%w: courseId is required", ErrInvalidInput)
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return models.Enrollment{}, fmt.Errorf("%w: no course with id %s", ErrNotFound, courseID)
		}
		return models.Enrollment{}, fmt.Errorf("get course: %w", err)
	}

	enrollment := models.Enrollment{
		ID:         ids.New(),
		UserID:     userID,
		CourseID:   course.ID,
		EnrolledAt: s.now().UTC(),
	}

	// the unique (user_id, course_id) constraint settles concurrent attempts
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return models.Enrollment{}, fmt.Errorf("%w: already enrolled in this course", ErrConflict)
		case errors.Is(err, repository.ErrCourseNotFound):
			return models.Enrollment{}, fmt.Errorf("%w: no course with id %s", ErrNotFound, courseID)
		case errors.Is(err, repository.ErrUserNotFound):
			return models.Enrollment{}, fmt.Errorf("%w: no user with id %s", ErrNotFound, userID)
		}
		return models.Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}

	s.log.Info().
		Str("enrollment_id", enrollment.ID).
		Str("user_id", userID).
		Str("course_id", course.ID).
		Msg("user enrolled")

	enrollment.Course = &course
	return enrollment, nil
}

// ListForUser returns the user's enrollments, newest first, each with its course.
func (s *EnrollmentService) ListForUser(ctx context.Context, actor models.User, userID string) ([]models.Enrollment, error) {
	userID, err := s.subject(actor, userID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	return enrollments, nil
}

func (s *EnrollmentService) subject(actor models.User, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return actor.ID, nil
	}
	if userID != actor.ID && !actor.IsAdmin() {
		return "", fmt.Errorf("%w: cannot act on another user's enrollments", ErrForbidden)
	}
	return userID, nil
}
