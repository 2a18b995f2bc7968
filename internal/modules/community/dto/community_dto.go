package dto

import (
	"github.com/google/uuid"
	"naffles.com/pointsbackend/internal/model"
)

type CreateCommunityInput struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=2000"`
	PointsName  string `json:"points_name" binding:"max=50"`

	// Requested feature flags. User-created communities always get these
	// forced off; only the platform community may carry them.
	EnableJackpot           bool `json:"enable_jackpot"`
	EnableSystemWideEarning bool `json:"enable_system_wide_earning"`
}

type CommunityAwardInput struct {
	Activity string         `json:"activity" binding:"required"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type CommunityDeductInput struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

type CommunityAwardResult struct {
	PointsAwarded int64     `json:"points_awarded"`
	NewBalance    int64     `json:"new_balance"`
	PointsName    string    `json:"points_name"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

type CommunityBalanceResponse struct {
	Community *model.Community              `json:"community"`
	Balance   *model.CommunityPointsBalance `json:"balance"`
}
