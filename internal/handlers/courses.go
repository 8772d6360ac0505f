package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zehnify/api/internal/models"
	"zehnify/api/internal/service"
)

type lessonPayload struct {
	Title       string `json:"title"`
	ContentHTML string `json:"contentHtml,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Order       int    `json:"order"`
}

type courseRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Price        *float64         `json:"price"`
	Category     *string          `json:"category"`
	Difficulty   *string          `json:"difficulty"`
	ThumbnailURL *string          `json:"thumbnailUrl"`
	Lessons      *[]lessonPayload `json:"lessons"`
}

type courseResponse struct {
	ID           string          `json:"_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Price        float64         `json:"price"`
	Category     string          `json:"category"`
	Difficulty   string          `json:"difficulty"`
	ThumbnailURL *string         `json:"thumbnailUrl"`
	Lessons      []lessonPayload `json:"lessons"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toCourseResponse(course models.Course) courseResponse {
	lessons := make([]lessonPayload, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		lessons = append(lessons, lessonPayload(lesson))
	}
	return courseResponse{
		ID:           course.ID,
		Title:        course.Title,
		Slug:         course.Slug,
		Description:  course.Description,
		Price:        course.Price,
		Category:     course.Category,
		Difficulty:   string(course.Difficulty),
		ThumbnailURL: course.ThumbnailURL,
		Lessons:      lessons,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}

func toLessons(payload []lessonPayload) []models.Lesson {
	lessons := make([]models.Lesson, 0, len(payload))
	for _, lesson := range payload {
		lessons = append(lessons, models.Lesson(lesson))
	}
	return lessons
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (h HandlerSet) ListCourses(c *gin.Context) {
	courses, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	data := make([]courseResponse, 0, len(courses))
	for _, course := range courses {
		data = append(data, toCourseResponse(course))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

func (h HandlerSet) GetCourse(c *gin.Context) {
	course, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCourseResponse(course))
}

func (h HandlerSet) CreateCourse(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	input := service.CreateCourseInput{
		Title:        deref(req.Title),
		Description:  deref(req.Description),
		Price:        req.Price,
		Category:     deref(req.Category),
		Difficulty:   models.Difficulty(deref(req.Difficulty)),
		ThumbnailURL: req.ThumbnailURL,
	}
	if req.Lessons != nil {
		input.Lessons = toLessons(*req.Lessons)
	}

	course, err := h.catalog.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCourseResponse(course))
}

func (h HandlerSet) UpdateCourse(c *gin.Context) {
	var req courseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	input := service.UpdateCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		ThumbnailURL: req.ThumbnailURL,
	}
	if req.Difficulty != nil {
		difficulty := models.Difficulty(*req.Difficulty)
		input.Difficulty = &difficulty
	}
	if req.Lessons != nil {
		lessons := toLessons(*req.Lessons)
		input.Lessons = &lessons
	}

	course, err := h.catalog.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toCourseResponse(course),
	})
}

func (h HandlerSet) DeleteCourse(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Course deleted",
	})
}

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 64 << 10

func (h HandlerSet) UploadThumbnail(c *gin.Context) {
	limit := h.cfg.Storage.MaxThumbnailBytes + multipartOverhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "thumbnail is too large"})
			return
		}
		badRequest(c, "file is required")
		return
	}
	defer file.Close()

	course, err := h.catalog.SetThumbnail(c.Request.Context(), c.Param("id"), service.ThumbnailInput{
		File:        file,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toCourseResponse(course),
	})
}
