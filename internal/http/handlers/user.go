package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/agilecoach-backend/internal/http/response"
	"github.com/yungbote/agilecoach-backend/internal/services"
)

const maxInsightLimit = 200

type UserHandler struct {
	users    services.UserService
	insights services.InsightService
}

func NewUserHandler(users services.UserService, insights services.InsightService) *UserHandler {
	return &UserHandler{users: users, insights: insights}
}

// GET /api/user/current
func (h *UserHandler) GetCurrent(c *gin.Context) {
	u, err := h.users.Current(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, u)
}

// GET /api/user/insights?limit=
func (h *UserHandler) ListInsights(c *gin.Context) {
	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = min(n, maxInsightLimit)
	}
	rows, err := h.insights.List(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, rows)
}
