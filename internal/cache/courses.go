package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"zehnify/api/internal/models"
)

const catalogKey = "catalog:courses"

// CourseCache keeps the full catalog listing as a single JSON value.
type CourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCourseCache(client *redis.Client, ttl time.Duration) *CourseCache {
	return &CourseCache{client: client, ttl: ttl}
}

func (c *CourseCache) GetCourses(ctx context.Context) ([]models.Course, bool, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get catalog: %w", err)
	}

	var courses []models.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, false, fmt.Errorf("decode catalog: %w", err)
	}
	return courses, true, nil
}

func (c *CourseCache) SetCourses(ctx context.Context, courses []models.Course) error {
	raw, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := c.client.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set catalog: %w", err)
	}
	return nil
}

func (c *CourseCache) InvalidateCourses(ctx context.Context) error {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog: %w", err)
	}
	return nil
}
