package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TxEarned      = "earned"
	TxSpent       = "spent"
	TxBonus       = "bonus"
	TxPenalty     = "penalty"
	TxJackpot     = "jackpot"
	TxAdminAward  = "admin_award"
	TxAdminDeduct = "admin_deduct"
	TxAchievement = "achievement"
)

// Tier labels, ordered lowest to highest.
const (
	TierBronze   = "bronze"
	TierSilver   = "silver"
	TierGold     = "gold"
	TierPlatinum = "platinum"
	TierDiamond  = "diamond"
)

// tierThresholds maps each tier to the minimum lifetime earnings required for
// it (inclusive lower bound).
var tierThresholds = []struct {
	Tier string
	Min  int64
}{
	{TierDiamond, 50000},
	{TierPlatinum, 15000},
	{TierGold, 5000},
	{TierSilver, 1000},
	{TierBronze, 0},
}

// TierForEarned derives the tier label and the 0-100 progress toward the next
// tier from lifetime earnings. The table is scanned highest to lowest; a total
// exactly at a threshold belongs to that tier. Progress is a linear
// interpolation between the current and next threshold, 100 at the top tier.
func TierForEarned(totalEarned int64) (string, float64) {
	for i, t := range tierThresholds {
		if totalEarned >= t.Min {
			if i == 0 {
				return t.Tier, 100
			}
			next := tierThresholds[i-1].Min
			progress := float64(totalEarned-t.Min) / float64(next-t.Min) * 100
			return t.Tier, progress
		}
	}
	return TierBronze, 0
}

// PointsBalance is the per-user points aggregate. Created lazily on first
// award or lookup, never deleted. Tier and TierProgress are derived from
// TotalEarned and rewritten on every mutation.
type PointsBalance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Balance      int64     `gorm:"not null;default:0" json:"balance"`
	TotalEarned  int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent   int64     `gorm:"not null;default:0" json:"total_spent"`
	Tier         string    `gorm:"size:20;not null;default:bronze" json:"tier"`
	TierProgress float64   `gorm:"not null;default:0" json:"tier_progress"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *PointsBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// PointsTransaction is an append-only ledger entry. Amount is signed;
// BalanceAfter equals BalanceBefore plus Amount at creation time. Reversal
// creates a compensating transaction and stamps ReversedAt/ReversedBy here.
type PointsTransaction struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index:idx_tx_user_date,priority:1;not null" json:"user_id"`
	Type          string         `gorm:"size:20;not null" json:"type"`
	Activity      string         `gorm:"size:50;index" json:"activity"`
	Amount        int64          `gorm:"not null" json:"amount"`
	BalanceBefore int64          `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64          `gorm:"not null" json:"balance_after"`
	BaseAmount    int64          `json:"base_amount"`
	Multiplier    float64        `gorm:"default:1" json:"multiplier"`
	Metadata      json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsReversible  bool           `gorm:"default:false" json:"is_reversible"`
	ReversedAt    *time.Time     `json:"reversed_at,omitempty"`
	ReversedBy    *uuid.UUID     `gorm:"type:uuid" json:"reversed_by,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index:idx_tx_user_date,priority:2" json:"created_at"`
}

func (t *PointsTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
