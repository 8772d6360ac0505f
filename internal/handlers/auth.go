package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"zehnify/api/internal/middleware"
	"zehnify/api/internal/models"
	"zehnify/api/internal/service"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	h.metrics.AuthAttempt("register", outcome(err))
	if err != nil {
		h.writeError(c, err)
		return
	}

	sendAuthResponse(c, http.StatusCreated, result)
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	h.metrics.AuthAttempt("login", outcome(err))
	if err != nil {
		h.writeError(c, err)
		return
	}

	sendAuthResponse(c, http.StatusOK, result)
}

func sendAuthResponse(c *gin.Context, status int, result service.AuthResult) {
	c.JSON(status, authResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.writeError(c, service.ErrUnauthenticated)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    toUserResponse(user),
	})
}
