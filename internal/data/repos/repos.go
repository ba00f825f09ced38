package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/agilecoach-backend/internal/data/repos/learning"
	"github.com/yungbote/agilecoach-backend/internal/data/repos/user"
	"github.com/yungbote/agilecoach-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ScenarioRepo = learning.ScenarioRepo
type ProgressRepo = learning.ProgressRepo
type InsightRepo = learning.InsightRepo
type LearningPathRepo = learning.LearningPathRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewScenarioRepo(db *gorm.DB, baseLog *logger.Logger) ScenarioRepo {
	return learning.NewScenarioRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return learning.NewProgressRepo(db, baseLog)
}
func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return learning.NewInsightRepo(db, baseLog)
}
func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return learning.NewLearningPathRepo(db, baseLog)
}
