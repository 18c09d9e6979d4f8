package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/model"
	"github.com/Gopher0727/Concord/internal/service"
)

type ChannelHandler struct {
	membership service.IMembershipService
}

func NewChannelHandler(membership service.IMembershipService) *ChannelHandler {
	return &ChannelHandler{membership: membership}
}

type createChannelRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

// CreateChannel creates a channel in the server (any member)
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	channel, err := h.membership.CreateChannel(
		c.Request.Context(),
		profileID,
		c.Param("id"),
		req.Name,
		model.ChannelType(req.Type),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}
