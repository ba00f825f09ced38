package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/http/response"
	"github.com/yungbote/agilecoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

const (
	headerUserID = "X-User-Id"
	// queryUserID covers EventSource, which cannot send custom headers.
	queryUserID = "userId"
)

type IdentityMiddleware struct {
	log        *logger.Logger
	demoUserID uuid.UUID
}

// NewIdentityMiddleware resolves the caller from X-User-Id, or the userId
// query parameter when the header is absent. Requests carrying neither
// act as demoUserID; uuid.Nil disables that fallback.
func NewIdentityMiddleware(log *logger.Logger, demoUserID uuid.UUID) *IdentityMiddleware {
	if log == nil {
		log = logger.Nop()
	}
	return &IdentityMiddleware{log: log.With("component", "IdentityMiddleware"), demoUserID: demoUserID}
}

func (im *IdentityMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{}
		raw := strings.TrimSpace(c.GetHeader(headerUserID))
		if raw == "" {
			raw = strings.TrimSpace(c.Query(queryUserID))
		}
		switch {
		case raw != "":
			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				im.log.Debug("Rejected caller identity", "path", c.Request.URL.Path)
				response.RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be a UUID"))
				c.Abort()
				return
			}
			rd.UserID = id
		case im.demoUserID != uuid.Nil:
			rd.UserID = im.demoUserID
			rd.DemoFallback = true
		default:
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing X-User-Id header"))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
