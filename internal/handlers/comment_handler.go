package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/service"
)

type CommentHandler struct {
	comments *service.CommentService
}

func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	videoID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), videoID, userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment added", "comment": comment})
}

func (h *CommentHandler) GetComments(c *gin.Context) {
	videoID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	comments, err := h.comments.ListByVideo(c.Request.Context(), videoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) EditComment(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	videoID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.comments.Edit(c.Request.Context(), videoID, commentID, userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated", "comment": comment})
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	videoID, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	commentID, err := paramID(c, "commentId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.comments.Delete(c.Request.Context(), videoID, commentID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
