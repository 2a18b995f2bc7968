package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Leaderboard categories.
const (
	CategoryPoints  = "points"
	CategoryGaming  = "gaming"
	CategoryRaffles = "raffles"
)

// Leaderboard periods.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAllTime = "all_time"
)

// Rank change directions.
const (
	ChangeUp   = "up"
	ChangeDown = "down"
	ChangeSame = "same"
	ChangeNew  = "new"
)

// LeaderboardEntry is one user's standing in one (category, period) bucket.
// Value accumulates for time-bounded periods and is overwritten for all_time.
// Rank is rewritten by the periodic full recompute; PreviousRank is kept so
// Change can be derived.
type LeaderboardEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_lb_entry,priority:1;not null" json:"user_id"`
	Category     string    `gorm:"size:20;uniqueIndex:idx_lb_entry,priority:2;index:idx_lb_rank,priority:1;not null" json:"category"`
	Period       string    `gorm:"size:20;uniqueIndex:idx_lb_entry,priority:3;index:idx_lb_rank,priority:2;not null" json:"period"`
	PeriodStart  time.Time `gorm:"uniqueIndex:idx_lb_entry,priority:4;not null" json:"period_start"`
	PeriodEnd    time.Time `gorm:"not null" json:"period_end"`
	Value        int64     `gorm:"not null;default:0" json:"value"`
	Rank         int       `gorm:"index:idx_lb_rank,priority:3" json:"rank"`
	PreviousRank int       `json:"previous_rank"`
	Change       string    `gorm:"size:10;default:new" json:"change"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *LeaderboardEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
