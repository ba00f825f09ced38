package services

import (
	"context"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/ctxutil"
)

func callerID(ctx context.Context, op string) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, domainagg.Validation(op, "request has no user identity")
	}
	return id, nil
}
