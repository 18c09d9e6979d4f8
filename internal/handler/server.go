package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/service"
)

type ServerHandler struct {
	membership service.IMembershipService
}

func NewServerHandler(membership service.IMembershipService) *ServerHandler {
	return &ServerHandler{membership: membership}
}

type upsertServerRequest struct {
	Name     string `json:"name" binding:"required"`
	ImageURL string `json:"image_url" binding:"required"`
}

// CreateServer handles server creation
func (h *ServerHandler) CreateServer(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	var req upsertServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	server, err := h.membership.CreateServer(c.Request.Context(), profileID, req.Name, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, server)
}

// UpdateServer handles renaming and re-imaging a server (owner only)
func (h *ServerHandler) UpdateServer(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	var req upsertServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	server, err := h.membership.UpdateServer(c.Request.Context(), profileID, c.Param("id"), req.Name, req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// DeleteServer handles server deletion (owner only)
func (h *ServerHandler) DeleteServer(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	if err := h.membership.DeleteServer(c.Request.Context(), profileID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "server deleted"})
}

// RotateInviteCode replaces the server's invite code (owner only)
func (h *ServerHandler) RotateInviteCode(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	server, err := h.membership.RotateInviteCode(c.Request.Context(), profileID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// JoinServer handles joining via invite code
func (h *ServerHandler) JoinServer(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	server, err := h.membership.JoinByInviteCode(c.Request.Context(), profileID, req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// LeaveServer removes the caller's own membership (non-owner only)
func (h *ServerHandler) LeaveServer(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	if err := h.membership.LeaveServer(c.Request.Context(), profileID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left server"})
}

// GetServer returns the server aggregate with ordered members and channels
func (h *ServerHandler) GetServer(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	server, err := h.membership.GetServer(c.Request.Context(), profileID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// ListServers returns all servers the caller belongs to
func (h *ServerHandler) ListServers(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	servers, err := h.membership.ListUserServers(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, servers)
}
