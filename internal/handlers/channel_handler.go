package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/service"
)

type ChannelHandler struct {
	channels  *service.ChannelService
	maxUpload int64
}

func NewChannelHandler(channels *service.ChannelService, maxUpload int64) *ChannelHandler {
	return &ChannelHandler{channels: channels, maxUpload: maxUpload}
}

// CreateChannel creates the caller's channel, with an optional "banner" file
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req models.ChannelRequest
	if err := c.ShouldBind(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	banner, err := formFile(c, "banner", h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}

	ch, err := h.channels.Create(c.Request.Context(), userID, req, banner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ch)
}

// GetChannel returns a channel and its videos
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.channels.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.ChannelRequest
	if err := c.ShouldBind(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	banner, err := formFile(c, "banner", h.maxUpload)
	if err != nil {
		respondError(c, err)
		return
	}

	ch, err := h.channels.Update(c.Request.Context(), id, userID, req, banner)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.channels.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel, its videos, banner, and comments deleted successfully"})
}

// ToggleSubscription subscribes or unsubscribes the caller
func (h *ChannelHandler) ToggleSubscription(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, err := paramID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ch, err := h.channels.ToggleSubscription(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}
