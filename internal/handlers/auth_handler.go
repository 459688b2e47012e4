package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/service"
)

type AuthHandler struct {
	auth      *service.AuthService
	maxUpload int64
}

func NewAuthHandler(auth *service.AuthService, maxUpload int64) *AuthHandler {
	return &AuthHandler{auth: auth, maxUpload: maxUpload}
}

// Register handles user registration with an optional "profilePic" file
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	profilePic, err := formFile(c, "profilePic", h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req, profilePic)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetMe returns the current user
func (h *AuthHandler) GetMe(c *gin.Context) {
	if user, ok := middleware.CurrentUser(c); ok {
		c.JSON(http.StatusOK, user)
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, errs.Unauthorized("Not authorized"))
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
