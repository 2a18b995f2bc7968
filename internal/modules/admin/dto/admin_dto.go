package dto

import "github.com/google/uuid"

type AdminAdjustInput struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Amount int64     `json:"amount" binding:"required,gt=0"`
	Reason string    `json:"reason" binding:"required,max=500"`
}

type ReverseInput struct {
	TransactionID uuid.UUID `json:"transaction_id" binding:"required"`
}

type CreatePartnerTokenInput struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Contract     string  `json:"contract" binding:"required,max=100"`
	ChainID      string  `json:"chain_id" binding:"required,max=20"`
	ActivityType string  `json:"activity_type" binding:"required,oneof=gaming raffles staking all"`
	Multiplier   float64 `json:"multiplier" binding:"required,gt=0"`
}

type UpdatePartnerTokenInput struct {
	Multiplier *float64 `json:"multiplier,omitempty" binding:"omitempty,gt=0"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// BulkCreditRow is one parsed line of a manual-credit CSV upload.
type BulkCreditRow struct {
	Line           int    `json:"line"`
	IdentifierType string `json:"identifier_type"`
	Identifier     string `json:"identifier"`
	Points         int64  `json:"points"`
}

// BulkCreditRowResult reports the outcome of crediting one row. Rows fail
// independently; one bad row never aborts the batch.
type BulkCreditRowResult struct {
	Line       int       `json:"line"`
	Identifier string    `json:"identifier"`
	UserID     uuid.UUID `json:"user_id,omitempty"`
	Points     int64     `json:"points,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

type BulkCreditReport struct {
	TotalRows     int                   `json:"total_rows"`
	Credited      int                   `json:"credited"`
	Failed        int                   `json:"failed"`
	PointsGranted int64                 `json:"points_granted"`
	Rows          []BulkCreditRowResult `json:"rows"`
}
