package dto

import (
	"github.com/google/uuid"
	"naffles.com/pointsbackend/internal/model"
)

// AwardInput is the body of POST /points/award. The credited user is the
// authenticated caller.
type AwardInput struct {
	Activity string    `json:"activity" binding:"required"`
	Meta     AwardMeta `json:"meta"`
}

// AwardMeta carries the optional award modifiers. AdditionalMultiplier
// defaults to 1.0 when zero.
type AwardMeta struct {
	TokenContract        string         `json:"token_contract,omitempty"`
	ChainID              string         `json:"chain_id,omitempty"`
	AdditionalMultiplier float64        `json:"additional_multiplier,omitempty"`
	Extra                map[string]any `json:"extra,omitempty"`
}

type DeductInput struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

// AwardResult is returned by award-like operations.
type AwardResult struct {
	PointsAwarded int64     `json:"points_awarded"`
	NewBalance    int64     `json:"new_balance"`
	Multiplier    float64   `json:"multiplier"`
	Tier          string    `json:"tier"`
	TierProgress  float64   `json:"tier_progress"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

type DeductResult struct {
	PointsDeducted int64     `json:"points_deducted"`
	NewBalance     int64     `json:"new_balance"`
	TransactionID  uuid.UUID `json:"transaction_id"`
}

// PointsInfo is the per-user summary: aggregate, recent ledger entries and
// achievement progress snapshot.
type PointsInfo struct {
	Balance            *model.PointsBalance      `json:"balance"`
	RecentTransactions []model.PointsTransaction `json:"recent_transactions"`
	Achievements       []model.UserAchievement   `json:"achievements"`
}
