package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/service"
)

type SearchHandler struct {
	search service.ISearchService
}

func NewSearchHandler(search service.ISearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// ServerIndex returns the flattened channel/member snapshot for the search
// dialog (any member)
func (h *SearchHandler) ServerIndex(c *gin.Context) {
	profileID, ok := actingProfileID(c)
	if !ok {
		return
	}

	index, err := h.search.BuildServerIndex(c.Request.Context(), profileID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, index)
}
