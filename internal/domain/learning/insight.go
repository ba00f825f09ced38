package learning

import (
	"time"

	"github.com/google/uuid"
)

const (
	InsightTypeInsight        = "insight"
	InsightTypeStrength       = "strength"
	InsightTypeImprovement    = "improvement"
	InsightTypeRecommendation = "recommendation"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Insight is an append-only coaching note.
type Insight struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_insight_user_created,priority:1" json:"userId"`
	ScenarioID  *uuid.UUID `gorm:"type:uuid" json:"scenarioId"`
	Type        string     `gorm:"column:type;not null" json:"type"`
	Priority    string     `gorm:"column:priority;not null;default:medium" json:"priority"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;not null" json:"description"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_insight_user_created,priority:2" json:"createdAt"`
}

func (Insight) TableName() string { return "ai_insight" }

func ValidInsightType(t string) bool {
	switch t {
	case InsightTypeInsight, InsightTypeStrength, InsightTypeImprovement, InsightTypeRecommendation:
		return true
	}
	return false
}

// NormalizePriority maps unknown values to medium.
func NormalizePriority(p string) string {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	}
	return PriorityMedium
}
