package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/http/response"
	"github.com/yungbote/agilecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
	"github.com/yungbote/agilecoach-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/user/stream
// Every connection of a user joins the same user channel.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("no user identity"))
		return
	}
	client := h.hub.NewSSEClient(userID)
	defer h.hub.CloseClient(client)

	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Info("SSE stream open", "user_id", userID, "client_id", client.ID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.log.Debug("SSE stream closed", "user_id", userID, "client_id", client.ID)
}
