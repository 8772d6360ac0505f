package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zehnify/api/internal/config"
	"zehnify/api/internal/models"
)

func newCache(t *testing.T, ttl time.Duration) (*CourseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCourseCache(client, ttl), mr
}

func catalog() []models.Course {
	thumb := "https://cdn.zehnify.app/courses/c1/t.webp"
	at := time.Date(2026, 5, 4, 12, 30, 0, 0, time.UTC)
	return []models.Course{
		{
			ID: "c1", Title: "Go in Practice", Slug: "go-in-practice", Description: "Services in Go",
			Price: 49, Category: "Backend", Difficulty: models.DifficultyIntermediate, ThumbnailURL: &thumb,
			Lessons:   []models.Lesson{{Title: "Modules", ContentHTML: "<p>go mod</p>", Order: 1}},
			CreatedAt: at, UpdatedAt: at,
		},
		{
			ID: "c0", Title: "Intro", Slug: "intro", Description: "Start here", Category: "General",
			Difficulty: models.DifficultyBeginner, Lessons: []models.Lesson{},
			CreatedAt: at.Add(-time.Hour), UpdatedAt: at.Add(-time.Hour),
		},
	}
}

func TestCourseCacheMiss(t *testing.T) {
	cache, _ := newCache(t, time.Minute)

	courses, ok, err := cache.GetCourses(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, courses)
}

func TestCourseCacheRoundTrip(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()
	want := catalog()

	require.NoError(t, cache.SetCourses(ctx, want))
	assert.True(t, mr.Exists(catalogKey))
	assert.Equal(t, time.Minute, mr.TTL(catalogKey))

	got, ok, err := cache.GetCourses(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCourseCacheEmptyCatalogIsAHit(t *testing.T) {
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetCourses(ctx, []models.Course{}))

	got, ok, err := cache.GetCourses(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCourseCacheExpires(t *testing.T) {
	cache, mr := newCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.SetCourses(ctx, catalog()))
	mr.FastForward(31 * time.Second)

	_, ok, err := cache.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCourseCacheInvalidate(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetCourses(ctx, catalog()))
	require.NoError(t, cache.InvalidateCourses(ctx))
	assert.False(t, mr.Exists(catalogKey))

	_, ok, err := cache.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// invalidating an absent key is not an error
	require.NoError(t, cache.InvalidateCourses(ctx))
}

func TestCourseCacheCorruptValue(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(catalogKey, "{not json"))

	_, ok, err := cache.GetCourses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
	assert.False(t, ok)
}

func TestCourseCacheServerDown(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()
	mr.Close()

	_, ok, err := cache.GetCourses(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get catalog")
	assert.False(t, ok)

	err = cache.SetCourses(ctx, catalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set catalog")

	err = cache.InvalidateCourses(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalidate catalog")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr(), Password: "s3cret"})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr(), Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
