package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NafflesSlug identifies the platform-owned community. It is the only
// community allowed to run the jackpot and earn from system-wide activities.
const NafflesSlug = "naffles"

type CommunityFeatures struct {
	EnableJackpot           bool `gorm:"default:false" json:"enable_jackpot"`
	EnableSystemWideEarning bool `gorm:"default:false" json:"enable_system_wide_earning"`
}

// Community is a tenant-scoped points namespace with its own currency name,
// membership and feature flags.
type Community struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string            `gorm:"size:100;not null" json:"name"`
	Slug        string            `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string            `gorm:"type:text" json:"description"`
	CreatorID   uuid.UUID         `gorm:"type:uuid;not null" json:"creator_id"`
	PointsName  string            `gorm:"size:50;not null;default:points" json:"points_name"`
	IsNaffles   bool              `gorm:"default:false" json:"is_naffles"`
	Features    CommunityFeatures `gorm:"embedded;embeddedPrefix:feature_" json:"features"`
	MemberCount int64             `gorm:"not null;default:0" json:"member_count"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CommunityMember struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_community_member;not null" json:"community_id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_community_member;not null" json:"user_id"`
	Role        string    `gorm:"size:20;not null;default:member" json:"role"` // "creator", "admin", "member"
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (m *CommunityMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CommunityPointsBalance mirrors PointsBalance keyed by (user, community).
type CommunityPointsBalance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_community_balance;not null" json:"community_id"`
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_community_balance;not null" json:"user_id"`
	Balance      int64     `gorm:"not null;default:0" json:"balance"`
	TotalEarned  int64     `gorm:"not null;default:0" json:"total_earned"`
	TotalSpent   int64     `gorm:"not null;default:0" json:"total_spent"`
	Tier         string    `gorm:"size:20;not null;default:bronze" json:"tier"`
	TierProgress float64   `gorm:"not null;default:0" json:"tier_progress"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *CommunityPointsBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// CommunityPointsTransaction mirrors PointsTransaction for one community.
type CommunityPointsTransaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID   uuid.UUID       `gorm:"type:uuid;index:idx_ctx_lookup,priority:1;not null" json:"community_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index:idx_ctx_lookup,priority:2;not null" json:"user_id"`
	Type          string          `gorm:"size:20;not null" json:"type"`
	Activity      string          `gorm:"size:50" json:"activity"`
	Amount        int64           `gorm:"not null" json:"amount"`
	BalanceBefore int64           `gorm:"not null" json:"balance_before"`
	BalanceAfter  int64           `gorm:"not null" json:"balance_after"`
	BaseAmount    int64           `json:"base_amount"`
	Multiplier    float64         `gorm:"default:1" json:"multiplier"`
	Metadata      json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsReversible  bool            `gorm:"default:false" json:"is_reversible"`
	ReversedAt    *time.Time      `json:"reversed_at,omitempty"`
	ReversedBy    *uuid.UUID      `gorm:"type:uuid" json:"reversed_by,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index:idx_ctx_lookup,priority:3" json:"created_at"`
}

func (t *CommunityPointsTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
