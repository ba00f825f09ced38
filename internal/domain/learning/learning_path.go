package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearningPath groups scenarios into an ordered curriculum track.
type LearningPath struct {
	ID          uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string                         `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Name        string                         `gorm:"column:name;not null" json:"name"`
	Description string                         `gorm:"column:description;not null" json:"description"`
	Framework   string                         `gorm:"column:framework;not null" json:"framework"`
	ScenarioIDs datatypes.JSONSlice[uuid.UUID] `gorm:"column:scenario_ids;not null" json:"scenarios"`
	Order       int                            `gorm:"column:sort_order;not null;index" json:"order"`
	CreatedAt   time.Time                      `gorm:"not null" json:"createdAt"`
}

func (LearningPath) TableName() string { return "learning_path" }
