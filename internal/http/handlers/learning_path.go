package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/agilecoach-backend/internal/http/response"
	"github.com/yungbote/agilecoach-backend/internal/services"
)

type LearningPathHandler struct {
	paths services.LearningPathService
}

func NewLearningPathHandler(paths services.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{paths: paths}
}

// GET /api/learning-paths
func (h *LearningPathHandler) ListPaths(c *gin.Context) {
	rows, err := h.paths.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/learning-paths/:id
func (h *LearningPathHandler) GetPath(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.paths.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, p)
}
