package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a learner profile. The counters are maintained by scenario
// completion and are never written directly by handlers.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"column:username;uniqueIndex;not null" json:"username"`
	FirstName string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName  string    `gorm:"column:last_name;not null" json:"lastName"`
	Email     string    `gorm:"column:email;not null" json:"email"`

	CurrentStreak      int `gorm:"column:current_streak;not null;default:0" json:"currentStreak"`
	CompletedScenarios int `gorm:"column:completed_scenarios;not null;default:0" json:"completedScenarios"`
	SuccessRate        int `gorm:"column:success_rate;not null;default:0" json:"successRate"`
	AIInsights         int `gorm:"column:ai_insights;not null;default:0" json:"aiInsights"`
	// minutes
	TimeInvested int `gorm:"column:time_invested;not null;default:0" json:"timeInvested"`

	LastCompletedAt *time.Time `gorm:"column:last_completed_at" json:"lastCompletedAt,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user" }

// DisplayName joins first and last name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
