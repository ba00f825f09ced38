package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/agilecoach-backend/internal/data/repos"
	types "github.com/yungbote/agilecoach-backend/internal/domain"
	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/dbctx"
)

type LearningPathService interface {
	List(ctx context.Context) ([]*types.LearningPath, error)
	Get(ctx context.Context, id uuid.UUID) (*types.LearningPath, error)
}

type learningPathService struct {
	paths repos.LearningPathRepo
}

func NewLearningPathService(paths repos.LearningPathRepo) LearningPathService {
	return &learningPathService{paths: paths}
}

func (s *learningPathService) List(ctx context.Context) ([]*types.LearningPath, error) {
	rows, err := s.paths.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.LearningPath{}
	}
	return rows, nil
}

func (s *learningPathService) Get(ctx context.Context, id uuid.UUID) (*types.LearningPath, error) {
	lp, err := s.paths.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if lp == nil {
		return nil, domainagg.NotFound("LearningPaths.Get", "learning path not found")
	}
	return lp, nil
}
