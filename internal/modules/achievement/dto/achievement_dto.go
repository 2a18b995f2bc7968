package dto

type CreateAchievementInput struct {
	Name        string `json:"name" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"max=2000"`
	Category    string `json:"category" binding:"max=50"`
	Type        string `json:"type" binding:"required,oneof=count amount streak special"`

	RequirementKey string `json:"requirement_key" binding:"required,max=50"`
	Threshold      int64  `json:"threshold" binding:"required,gt=0"`
	Timeframe      string `json:"timeframe" binding:"omitempty,oneof=daily weekly"`

	RewardPoints     int64   `json:"reward_points" binding:"gte=0"`
	RewardMultiplier float64 `json:"reward_multiplier" binding:"omitempty,gt=0"`

	IsRepeatable bool `json:"is_repeatable"`
}

type UpdateAchievementInput struct {
	Description      *string  `json:"description,omitempty"`
	Threshold        *int64   `json:"threshold,omitempty" binding:"omitempty,gt=0"`
	RewardPoints     *int64   `json:"reward_points,omitempty" binding:"omitempty,gte=0"`
	RewardMultiplier *float64 `json:"reward_multiplier,omitempty" binding:"omitempty,gt=0"`
	IsRepeatable     *bool    `json:"is_repeatable,omitempty"`
	IsActive         *bool    `json:"is_active,omitempty"`
}
