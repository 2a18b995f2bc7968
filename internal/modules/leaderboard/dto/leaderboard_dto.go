package dto

import (
	"github.com/google/uuid"
)

// Entry is one row of a leaderboard response.
type Entry struct {
	Position     int       `json:"position"` // 1-based
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Value        int64     `json:"value"`
	Rank         int       `json:"rank"`
	PreviousRank int       `json:"previous_rank,omitempty"`
	Change       string    `json:"change"`
	Tier         string    `json:"tier,omitempty"`
}

type Leaderboard struct {
	Category string  `json:"category"`
	Period   string  `json:"period"`
	Entries  []Entry `json:"entries"`
}
