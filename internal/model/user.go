package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `json:"role_id"`
	Role         Role      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"role"`

	// External identifiers used to resolve manual credit rows (CSV upload).
	WalletAddress   *string `gorm:"size:100;index" json:"wallet_address,omitempty"`
	TwitterUsername *string `gorm:"size:50;index" json:"twitter_username,omitempty"`
	DiscordUsername *string `gorm:"size:50;index" json:"discord_username,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PartnerToken holds a per-activity earnings multiplier granted to holders of a
// partner token. The award policy consults it by (contract, chain, activity type).
type PartnerToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Contract     string    `gorm:"size:100;not null;index:idx_partner_lookup,priority:1" json:"contract"`
	ChainID      string    `gorm:"size:20;not null;index:idx_partner_lookup,priority:2" json:"chain_id"`
	ActivityType string    `gorm:"size:50;not null;index:idx_partner_lookup,priority:3" json:"activity_type"` // "gaming", "raffles", "staking", "all"
	Multiplier   float64   `gorm:"not null;default:1" json:"multiplier"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *PartnerToken) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
