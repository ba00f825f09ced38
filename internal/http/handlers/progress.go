package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agilecoach-backend/internal/http/response"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{log: log.With("handler", "ProgressHandler"), progress: progress}
}

// POST /api/scenarios/:id/start
func (h *ProgressHandler) StartScenario(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.progress.Start(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, p)
}

// POST /api/scenarios/:id/decision
// body: { "stepId": 1, "decisionId": 2, "points": 20 }
func (h *ProgressHandler) SubmitDecision(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StepID     *int `json:"stepId"`
		DecisionID *int `json:"decisionId"`
		Points     *int `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.progress.RecordDecision(c.Request.Context(), id, services.DecisionInput{
		StepID:     req.StepID,
		DecisionID: req.DecisionID,
		Points:     req.Points,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out.Progress)
}

// POST /api/scenarios/:id/complete
func (h *ProgressHandler) CompleteScenario(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.progress.Complete(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, p)
}

// GET /api/user/progress
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	rows, err := h.progress.List(c.Request.Context())
	if err != nil {
		h.log.Error("ListProgress failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/user/progress/:scenarioId
// Responds with null when the scenario was never started.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	id, ok := pathID(c, "scenarioId")
	if !ok {
		return
	}
	p, err := h.progress.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if p == nil {
		response.RespondOK(c, nil)
		return
	}
	response.RespondOK(c, p)
}
