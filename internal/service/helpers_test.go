package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"zehnify/api/internal/models"
	"zehnify/api/internal/repository/memory"
	"zehnify/api/internal/security"
)

var cheapParams = security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

type fixture struct {
	db          *memory.DB
	auth        *AuthService
	catalog     *CatalogService
	enrollments *EnrollmentService
}

func newFixture(t *testing.T, opts ...CatalogOption) *fixture {
	t.Helper()

	db := memory.New()
	log := zerolog.Nop()
	auth := NewAuthService(db.Users(), security.NewTokenIssuer("test-secret", "zehnify-test", time.Hour), log)
	auth.hash = func(password string) ([]byte, error) {
		return security.HashPasswordWithParams(password, cheapParams)
	}

	return &fixture{
		db:          db,
		auth:        auth,
		catalog:     NewCatalogService(db.Courses(), log, opts...),
		enrollments: NewEnrollmentService(db.Enrollments(), db.Courses(), log),
	}
}

func (f *fixture) register(t *testing.T, name, email string) models.User {
	t.Helper()
	result, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return result.User
}

func (f *fixture) admin(t *testing.T) models.User {
	t.Helper()
	user := f.register(t, "Admin", "admin@zehnify.app")
	if err := f.db.Users().UpdateRole(context.Background(), user.ID, models.UserRoleAdmin); err != nil {
		t.Fatalf("promote: %v", err)
	}
	user.Role = models.UserRoleAdmin
	return user
}

func (f *fixture) course(t *testing.T, title string) models.Course {
	t.Helper()
	price := 49.0
	course, err := f.catalog.Create(context.Background(), CreateCourseInput{
		Title:       title,
		Description: "An introduction",
		Price:       &price,
		Category:    "Web",
	})
	if err != nil {
		t.Fatalf("create course %q: %v", title, err)
	}
	return course
}

type fakeCache struct {
	mu          sync.Mutex
	courses     []models.Course
	cached      bool
	gets        int
	invalidates int
}

func (c *fakeCache) GetCourses(context.Context) ([]models.Course, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.courses, c.cached, nil
}

func (c *fakeCache) SetCourses(_ context.Context, courses []models.Course) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses = courses
	c.cached = true
	return nil
}

func (c *fakeCache) InvalidateCourses(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses = nil
	c.cached = false
	c.invalidates++
	return nil
}

type fakeThumbnails struct {
	keys  []string
	types []string
}

func (f *fakeThumbnails) PutThumbnail(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	f.types = append(f.types, contentType)
	return "https://cdn.zehnify.app/" + key, nil
}
