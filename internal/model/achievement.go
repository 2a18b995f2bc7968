package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Achievement progress kinds.
const (
	AchievementCount   = "count"  // progress += 1 per qualifying activity
	AchievementAmount  = "amount" // progress += points awarded
	AchievementStreak  = "streak" // progress += 1 per qualifying day, reset on gap
	AchievementSpecial = "special"
)

// Achievement is a static rule: when a user's progress counter for
// RequirementKey crosses Threshold, RewardPoints are granted as a bonus
// transaction. Non-repeatable achievements complete once; repeatable ones
// reset progress after each award.
type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"size:50;index" json:"category"`
	Type        string    `gorm:"size:20;not null;default:count" json:"type"`

	RequirementKey string `gorm:"size:50;index;not null" json:"requirement_key"`
	Threshold      int64  `gorm:"not null" json:"threshold"`
	Timeframe      string `gorm:"size:20" json:"timeframe,omitempty"` // "", "daily", "weekly"

	RewardPoints     int64   `gorm:"not null;default:0" json:"reward_points"`
	RewardMultiplier float64 `gorm:"default:1" json:"reward_multiplier"`
	BadgeURL         *string `gorm:"type:text" json:"badge_url,omitempty"`

	IsRepeatable bool      `gorm:"default:false" json:"is_repeatable"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserAchievement tracks one user's progress against one achievement.
// IsCompleted is a one-way transition.
type UserAchievement struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID  uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	Achievement    Achievement `gorm:"foreignKey:AchievementID" json:"achievement"`
	Progress       int64       `gorm:"not null;default:0" json:"progress"`
	IsCompleted    bool        `gorm:"default:false" json:"is_completed"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	TimesAwarded   int         `gorm:"not null;default:0" json:"times_awarded"`
	LastActivityAt time.Time   `json:"last_activity_at"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ua *UserAchievement) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	return nil
}
