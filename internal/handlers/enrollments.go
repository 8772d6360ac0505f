package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zehnify/api/internal/middleware"
	"zehnify/api/internal/models"
	"zehnify/api/internal/service"
)

type enrollRequest struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
}

// enrollmentResponse carries the populated course under courseId.
type enrollmentResponse struct {
	ID         string          `json:"_id"`
	UserID     string          `json:"userId"`
	Course     *courseResponse `json:"courseId"`
	EnrolledAt time.Time       `json:"enrolledAt"`
	Progress   float64         `json:"progress"`
}

func toEnrollmentResponse(enrollment models.Enrollment) enrollmentResponse {
	resp := enrollmentResponse{
		ID:         enrollment.ID,
		UserID:     enrollment.UserID,
		EnrolledAt: enrollment.EnrolledAt,
		Progress:   enrollment.Progress,
	}
	if enrollment.Course != nil {
		course := toCourseResponse(*enrollment.Course)
		resp.Course = &course
	}
	return resp
}

func (h HandlerSet) Enroll(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthenticated)
		return
	}

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), actor, req.UserID, req.CourseID)
	h.metrics.Enrollment(outcome(err))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Enrolled successfully",
		"data":    toEnrollmentResponse(enrollment),
	})
}

func (h HandlerSet) ListEnrollments(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthenticated)
		return
	}

	enrollments, err := h.enrollments.ListForUser(c.Request.Context(), actor, c.Param("userId"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	data := make([]enrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		data = append(data, toEnrollmentResponse(enrollment))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
