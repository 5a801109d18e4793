package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reelcheck/internal/services"
)

// handleListWorkflows returns cached workflow keys, most recently updated
// first.
func (s *Server) handleListWorkflows(c *gin.Context) {
	keys, err := s.store.Keys(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing workflows failed"})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"workflows": keys})
}

// handleDeleteWorkflow drops one cached workflow so its next run starts
// from scratch.
func (s *Server) handleDeleteWorkflow(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key query parameter is required"})
		return
	}
	if err := s.store.Delete(c.Request.Context(), key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deleting workflow failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": key})
}

func errorDetail(err error) services.Detail {
	if err == nil {
		return services.Detail{Code: "transient", Message: "verification aborted"}
	}
	return services.Details(err)
}
