package services

import (
	"context"

	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

type UserService interface {
	// Current returns the profile of the caller identified in ctx.
	Current(ctx context.Context) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	if log == nil {
		log = logger.Nop()
	}
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) Current(ctx context.Context) (*types.User, error) {
	const op = "Users.Current"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		us.log.Warn("Load user failed", "user_id", userID, "error", err)
		return nil, err
	}
	if u == nil {
		return nil, domainagg.NotFound(op, "user not found")
	}
	return u, nil
}
