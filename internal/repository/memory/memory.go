// Package memory holds in-memory stores with the same contracts as the
// postgres repositories: unique email, unique slug, unique enrollment pair,
// enrollment foreign keys and course delete cascading to enrollments.
// Every check-and-write happens under one lock, mirroring the atomicity the
// database constraints give the real repositories.
package memory

import (
	"context"
	"sort"
	"sync"

	"zehnify/api/internal/models"
	"zehnify/api/internal/repository"
)

type pair struct {
	userID   string
	courseID string
}

type DB struct {
	mu sync.Mutex

	users       map[string]models.User
	emails      map[string]string
	courses     map[string]models.Course
	slugs       map[string]string
	enrollments map[string]models.Enrollment
	pairs       map[pair]string
}

func New() *DB {
	return &DB{
		users:       make(map[string]models.User),
		emails:      make(map[string]string),
		courses:     make(map[string]models.Course),
		slugs:       make(map[string]string),
		enrollments: make(map[string]models.Enrollment),
		pairs:       make(map[pair]string),
	}
}

func (db *DB) Users() *Users             { return &Users{db: db} }
func (db *DB) Courses() *Courses         { return &Courses{db: db} }
func (db *DB) Enrollments() *Enrollments { return &Enrollments{db: db} }

type Users struct{ db *DB }

func (u *Users) Create(_ context.Context, user models.User) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	if _, taken := u.db.emails[user.Email]; taken {
		return repository.ErrEmailTaken
	}
	u.db.users[user.ID] = user
	u.db.emails[user.Email] = user.ID
	return nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	id, ok := u.db.emails[email]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u.db.users[id], nil
}

func (u *Users) GetByID(_ context.Context, id string) (models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	user, ok := u.db.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (u *Users) UpdatePasswordHash(_ context.Context, id string, hash []byte) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	user, ok := u.db.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = append([]byte(nil), hash...)
	u.db.users[id] = user
	return nil
}

func (u *Users) UpdateRole(_ context.Context, id string, role models.UserRole) error {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	user, ok := u.db.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.Role = role
	u.db.users[id] = user
	return nil
}

type Courses struct{ db *DB }

func (c *Courses) Create(_ context.Context, course models.Course) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	if _, taken := c.db.slugs[course.Slug]; taken {
		return repository.ErrSlugTaken
	}
	c.db.courses[course.ID] = cloneCourse(course)
	c.db.slugs[course.Slug] = course.ID
	return nil
}

func (c *Courses) GetByID(_ context.Context, id string) (models.Course, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	course, ok := c.db.courses[id]
	if !ok {
		return models.Course{}, repository.ErrCourseNotFound
	}
	return cloneCourse(course), nil
}

func (c *Courses) List(_ context.Context) ([]models.Course, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	courses := make([]models.Course, 0, len(c.db.courses))
	for _, course := range c.db.courses {
		courses = append(courses, cloneCourse(course))
	}
	sort.Slice(courses, func(i, j int) bool {
		if !courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].CreatedAt.After(courses[j].CreatedAt)
		}
		return courses[i].ID > courses[j].ID
	})
	return courses, nil
}

func (c *Courses) Update(_ context.Context, course models.Course) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	existing, ok := c.db.courses[course.ID]
	if !ok {
		return repository.ErrCourseNotFound
	}
	course.Slug = existing.Slug
	course.CreatedAt = existing.CreatedAt
	c.db.courses[course.ID] = cloneCourse(course)
	return nil
}

func (c *Courses) Delete(_ context.Context, id string) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()

	course, ok := c.db.courses[id]
	if !ok {
		return repository.ErrCourseNotFound
	}
	delete(c.db.courses, id)
	delete(c.db.slugs, course.Slug)

	for enrollmentID, enrollment := range c.db.enrollments {
		if enrollment.CourseID == id {
			delete(c.db.enrollments, enrollmentID)
			delete(c.db.pairs, pair{enrollment.UserID, enrollment.CourseID})
		}
	}
	return nil
}

type Enrollments struct{ db *DB }

func (e *Enrollments) Create(_ context.Context, enrollment models.Enrollment) error {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()

	key := pair{enrollment.UserID, enrollment.CourseID}
	if _, taken := e.db.pairs[key]; taken {
		return repository.ErrAlreadyEnrolled
	}
	if _, ok := e.db.users[enrollment.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	if _, ok := e.db.courses[enrollment.CourseID]; !ok {
		return repository.ErrCourseNotFound
	}

	enrollment.Course = nil
	e.db.enrollments[enrollment.ID] = enrollment
	e.db.pairs[key] = enrollment.ID
	return nil
}

func (e *Enrollments) ListByUser(_ context.Context, userID string) ([]models.Enrollment, error) {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()

	enrollments := make([]models.Enrollment, 0)
	for _, enrollment := range e.db.enrollments {
		if enrollment.UserID != userID {
			continue
		}
		course := cloneCourse(e.db.courses[enrollment.CourseID])
		enrollment.Course = &course
		enrollments = append(enrollments, enrollment)
	}
	sort.Slice(enrollments, func(i, j int) bool {
		if !enrollments[i].EnrolledAt.Equal(enrollments[j].EnrolledAt) {
			return enrollments[i].EnrolledAt.After(enrollments[j].EnrolledAt)
		}
		return enrollments[i].ID > enrollments[j].ID
	})
	return enrollments, nil
}

// Count reports how many enrollments exist, for assertions in tests.
func (e *Enrollments) Count() int {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return len(e.db.enrollments)
}

func cloneCourse(course models.Course) models.Course {
	lessons := make([]models.Lesson, len(course.Lessons))
	copy(lessons, course.Lessons)
	course.Lessons = lessons
	if course.ThumbnailURL != nil {
		url := *course.ThumbnailURL
		course.ThumbnailURL = &url
	}
	return course
}
