package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agilecoach-backend/internal/http/response"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/services"
)

type ScenarioHandler struct {
	log       *logger.Logger
	scenarios services.ScenarioService
}

func NewScenarioHandler(log *logger.Logger, scenarios services.ScenarioService) *ScenarioHandler {
	return &ScenarioHandler{log: log.With("handler", "ScenarioHandler"), scenarios: scenarios}
}

// GET /api/scenarios?framework=
func (h *ScenarioHandler) ListScenarios(c *gin.Context) {
	rows, err := h.scenarios.List(c.Request.Context(), c.Query("framework"))
	if err != nil {
		h.log.Error("ListScenarios failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/scenarios/:id
func (h *ScenarioHandler) GetScenario(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sc, err := h.scenarios.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sc)
}

// POST /api/scenarios/generate
// body: { "framework": "scrum", "difficulty": "beginner", "topic": "..." }
func (h *ScenarioHandler) GenerateScenario(c *gin.Context) {
	var req struct {
		Framework  string `json:"framework"`
		Difficulty string `json:"difficulty"`
		Topic      string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sc, err := h.scenarios.Generate(c.Request.Context(), services.GenerateScenarioInput{
		Framework:  req.Framework,
		Difficulty: req.Difficulty,
		Topic:      req.Topic,
	})
	if err != nil {
		h.log.Warn("GenerateScenario failed", "framework", req.Framework, "difficulty", req.Difficulty, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, sc)
}

// POST /api/scenarios/:id/steps/next
// body: { "stepId": 1, "decisionId": 2 }
func (h *ScenarioHandler) NextStep(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		StepID     *int `json:"stepId"`
		DecisionID *int `json:"decisionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.StepID == nil || req.DecisionID == nil {
		response.RespondError(c, http.StatusBadRequest, "validation", errors.New("stepId and decisionId are required"))
		return
	}
	step, err := h.scenarios.NextStep(c.Request.Context(), id, services.NextStepInput{
		StepID:     *req.StepID,
		DecisionID: *req.DecisionID,
	})
	if err != nil {
		h.log.Warn("NextStep failed", "scenario_id", id, "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, step)
}
