package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"zehnify/api/internal/ids"
	"zehnify/api/internal/media"
	"zehnify/api/internal/models"
	"zehnify/api/internal/repository"
)

type CatalogService struct {
	courses    CourseStore
	cache      CourseCache
	thumbnails ThumbnailStore
	maxUpload  int64
	log        zerolog.Logger
	now        func() time.Time
}

type CatalogOption func(*CatalogService)

func WithCourseCache(cache CourseCache) CatalogOption {
	return func(s *CatalogService) { s.cache = cache }
}

func WithThumbnailStore(store ThumbnailStore, maxBytes int64) CatalogOption {
	return func(s *CatalogService) {
		s.thumbnails = store
		s.maxUpload = maxBytes
	}
}

func NewCatalogService(courses CourseStore, log zerolog.Logger, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		courses:   courses,
		maxUpload: 5 << 20,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCourseInput carries the fields of a new course. Price is a pointer
// so that an omitted price is distinguishable from a free course.
type CreateCourseInput struct {
	Title        string
	Description  string
	Price        *float64
	Category     string
	Difficulty   models.Difficulty
	ThumbnailURL *string
	Lessons      []models.Lesson
}

// UpdateCourseInput is a partial update: nil fields keep their current value.
type UpdateCourseInput struct {
	Title        *string
	Description  *string
	Price        *float64
	Category     *string
	Difficulty   *models.Difficulty
	ThumbnailURL *string
	Lessons      *[]models.Lesson
}

// courseFields holds the rules every stored course satisfies.
type courseFields struct {
	Title       string          `validate:"required"`
	Description string          `validate:"required"`
	Price       float64         `validate:"gte=0"`
	Category    string          `validate:"required"`
	Difficulty  string          `validate:"oneof=Beginner Intermediate Advanced"`
	Lessons     []models.Lesson `validate:"dive"`
}

func checkCourse(course models.Course) error {
	return checkInput(courseFields{
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Category:    course.Category,
		Difficulty:  string(course.Difficulty),
		Lessons:     course.Lessons,
	})
}

func (s *CatalogService) List(ctx context.Context) ([]models.Course, error) {
	if s.cache != nil {
		courses, ok, err := s.cache.GetCourses(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("catalog cache read failed")
		} else if ok {
			return courses, nil
		}
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	if courses == nil {
		courses = []models.Course{}
	}

	if s.cache != nil {
		if err := s.cache.SetCourses(ctx, courses); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return courses, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return models.Course{}, fmt.Errorf("%w: no course with id %s", ErrNotFound, id)
		}
		return models.Course{}, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

func (s *CatalogService) Create(ctx context.Context, input CreateCourseInput) (models.Course, error) {
	if input.Price == nil {
		return models.Course{}, fmt.Errorf("%w: price is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	course := models.Course{
		ID:           ids.New(),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Price:        *input.Price,
		Category:     strings.TrimSpace(input.Category),
		Difficulty:   input.Difficulty,
		ThumbnailURL: nonEmpty(input.ThumbnailURL),
		Lessons:      normalizeLessons(input.Lessons),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if course.Difficulty == "" {
		course.Difficulty = models.DifficultyBeginner
	}
	if err := checkCourse(course); err != nil {
		return models.Course{}, err
	}
	course.Slug = Slugify(course.Title)

	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return models.Course{}, fmt.Errorf("%w: a course with slug %q already exists", ErrConflict, course.Slug)
		}
		return models.Course{}, fmt.Errorf("create course: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Str("course_id", course.ID).Str("slug", course.Slug).Msg("course created")
	return course, nil
}

// Update merges the provided fields into the stored course. The slug stays
// what it was at creation so existing links keep working.
func (s *CatalogService) Update(ctx context.Context, id string, input UpdateCourseInput) (models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return models.Course{}, err
	}

	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		course.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		course.Price = *input.Price
	}
	if input.Category != nil {
		course.Category = strings.TrimSpace(*input.Category)
	}
	if input.Difficulty != nil {
		course.Difficulty = *input.Difficulty
	}
	if input.ThumbnailURL != nil {
		course.ThumbnailURL = nonEmpty(input.ThumbnailURL)
	}
	if input.Lessons != nil {
		course.Lessons = normalizeLessons(*input.Lessons)
	}
	if err := checkCourse(course); err != nil {
		return models.Course{}, err
	}

	return s.save(ctx, course)
}

// Delete removes the course together with every enrollment in it.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return fmt.Errorf("%w: no course with id %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete course: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Str("course_id", id).Msg("course deleted")
	return nil
}

type ThumbnailInput struct {
	File        io.Reader
	ContentType string
}

// SetThumbnail validates the uploaded image, stores it and points the course at it.
func (s *CatalogService) SetThumbnail(ctx context.Context, id string, input ThumbnailInput) (models.Course, error) {
	if s.thumbnails == nil {
		return models.Course{}, fmt.Errorf("%w: thumbnail storage is not configured", ErrUnavailable)
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return models.Course{}, err
	}

	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(input.File, s.maxUpload+1))
	if err != nil {
		return models.Course{}, fmt.Errorf("read upload: %w", err)
	}
	if n > s.maxUpload {
		return models.Course{}, fmt.Errorf("%w: thumbnail exceeds %d bytes", ErrInvalidInput, s.maxUpload)
	}

	img, err := media.Prepare(buf.Bytes(), input.ContentType)
	if err != nil {
		return models.Course{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := fmt.Sprintf("courses/%s/%s.%s", course.ID, ids.New(), img.Ext())
	url, err := s.thumbnails.PutThumbnail(ctx, key, img.Data, img.MIME)
	if err != nil {
		return models.Course{}, fmt.Errorf("store thumbnail: %w", err)
	}

	course.ThumbnailURL = &url
	return s.save(ctx, course)
}

func (s *CatalogService) save(ctx context.Context, course models.Course) (models.Course, error) {
	course.UpdatedAt = s.now().UTC()
	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return models.Course{}, fmt.Errorf("%w: no course with id %s", ErrNotFound, course.ID)
		}
		return models.Course{}, fmt.Errorf("update course: %w", err)
	}

	s.invalidate(ctx)
	return course, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCourses(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

// Slugify lower-cases the title and joins its words with hyphens:
// "React Basics" becomes "react-basics".
func Slugify(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}

func normalizeLessons(lessons []models.Lesson) []models.Lesson {
	out := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		lesson.Title = strings.TrimSpace(lesson.Title)
		out = append(out, lesson)
	}
	return out
}

func nonEmpty(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
