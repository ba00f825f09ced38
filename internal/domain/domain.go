package domain

import (
	"github.com/yungbote/agilecoach-backend/internal/domain/learning"
	"github.com/yungbote/agilecoach-backend/internal/domain/user"
)

type User = user.User

type Scenario = learning.Scenario
type ScenarioContent = learning.ScenarioContent
type ScenarioSummary = learning.ScenarioSummary
type Step = learning.Step
type Character = learning.Character
type DecisionOption = learning.DecisionOption

type Progress = learning.Progress
type DecisionRecord = learning.DecisionRecord

type Insight = learning.Insight
type LearningPath = learning.LearningPath

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&Scenario{},
		&Progress{},
		&Insight{},
		&LearningPath{},
	}
}
