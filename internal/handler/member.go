package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/model"
	"github.com/Gopher0727/Concord/internal/service"
)

type MemberHandler struct {
	membership service.IMembershipService
}

func NewMemberHandler(membership service.IMembershipService) *MemberHandler {
	return &MemberHandler{membership: membership}
}

// KickMember removes a member from the server (owner only, never self)
func (h *MemberHandler) KickMember(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	server, err := h.membership.KickMember(c.Request.Context(), profileID, c.Param("id"), c.Param("memberId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// ChangeMemberRole sets a member's role (owner only, never self)
func (h *MemberHandler) ChangeMemberRole(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	server, err := h.membership.ChangeMemberRole(
		c.Request.Context(),
		profileID,
		c.Param("id"),
		c.Param("memberId"),
		model.MemberRole(req.Role),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}
