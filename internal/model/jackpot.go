package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsJackpot is the shared pooled reward. Exactly one active row exists;
// every qualifying activity grows CurrentAmount and a low-probability draw
// pays it out to the acting user.
type PointsJackpot struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CurrentAmount int64     `gorm:"not null;default:1000" json:"current_amount"`
	BaseAmount    int64     `gorm:"not null;default:1000" json:"base_amount"`
	HourlyGrowth  int64     `gorm:"not null;default:50" json:"hourly_growth"`

	// Win conditions.
	WinProbability  float64 `gorm:"not null;default:0.001" json:"win_probability"`
	MinBalanceToWin int64   `gorm:"not null;default:100" json:"min_balance_to_win"`
	CooldownHours   int     `gorm:"not null;default:24" json:"cooldown_hours"`
	MaxDailyWins    int     `gorm:"not null;default:3" json:"max_daily_wins"`

	// Daily stats, reset at local midnight.
	DailyWins    int       `gorm:"not null;default:0" json:"daily_wins"`
	DailyResetAt time.Time `json:"daily_reset_at"`

	LastIncrementAt time.Time  `json:"last_increment_at"`
	TotalWinners    int64      `gorm:"not null;default:0" json:"total_winners"`
	TotalAmountWon  int64      `gorm:"not null;default:0" json:"total_amount_won"`
	LastWinnerID    *uuid.UUID `gorm:"type:uuid" json:"last_winner_id,omitempty"`
	LastWinDate     *time.Time `json:"last_win_date,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (j *PointsJackpot) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
