package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

// Change mirrors the platform ledger change for one community scope.
type Change struct {
	Type         string
	Activity     string
	Amount       int64
	EarnedDelta  int64
	SpentDelta   int64
	BaseAmount   int64
	Multiplier   float64
	Metadata     json.RawMessage
	IsReversible bool
}

type Repository interface {
	Create(ctx context.Context, community *model.Community) error
	Update(ctx context.Context, community *model.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error)
	GetBySlug(ctx context.Context, slug string) (*model.Community, error)
	List(ctx context.Context, limit, offset int) ([]model.Community, error)

	AddMember(ctx context.Context, member *model.CommunityMember) error
	GetMember(ctx context.Context, communityID, userID uuid.UUID) (*model.CommunityMember, error)
	RemoveMember(ctx context.Context, communityID, userID uuid.UUID) error

	// ApplyChange is the community-scoped twin of the platform ledger
	// write: balance row locked, ledger appended, one transaction.
	ApplyChange(ctx context.Context, communityID, userID uuid.UUID, change Change) (*model.CommunityPointsTransaction, *model.CommunityPointsBalance, error)

	GetBalance(ctx context.Context, communityID, userID uuid.UUID) (*model.CommunityPointsBalance, error)
	ListTransactions(ctx context.Context, communityID, userID uuid.UUID, limit, offset int) ([]model.CommunityPointsTransaction, error)
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) Repository {
	return &communityRepository{db: db}
}

func (r *communityRepository) Create(ctx context.Context, community *model.Community) error {
	return r.db.WithContext(ctx).Create(community).Error
}

func (r *communityRepository) Update(ctx context.Context, community *model.Community) error {
	return r.db.WithContext(ctx).Save(community).Error
}

func (r *communityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	var community model.Community
	err := r.db.WithContext(ctx).First(&community, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCommunityNotFound
		}
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) GetBySlug(ctx context.Context, slug string) (*model.Community, error) {
	var community model.Community
	err := r.db.WithContext(ctx).First(&community, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrCommunityNotFound
		}
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) List(ctx context.Context, limit, offset int) ([]model.Community, error) {
	var communities []model.Community
	err := r.db.WithContext(ctx).
		Order("member_count DESC").
		Limit(limit).Offset(offset).
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) AddMember(ctx context.Context, member *model.CommunityMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(member)
		if res.Error != nil {
			return res.Error
		}
		// Already a member; keep the join idempotent.
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&model.Community{}).
			Where("id = ?", member.CommunityID).
			Update("member_count", gorm.Expr("member_count + 1")).Error
	})
}

func (r *communityRepository) GetMember(ctx context.Context, communityID, userID uuid.UUID) (*model.CommunityMember, error) {
	var member model.CommunityMember
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotAMember
		}
		return nil, err
	}
	return &member, nil
}

func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&model.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotAMember
		}
		return tx.Model(&model.Community{}).
			Where("id = ?", communityID).
			Update("member_count", gorm.Expr("member_count - 1")).Error
	})
}

func (r *communityRepository) ApplyChange(ctx context.Context, communityID, userID uuid.UUID, change Change) (*model.CommunityPointsTransaction, *model.CommunityPointsBalance, error) {
	var (
		entry   *model.CommunityPointsTransaction
		balance model.CommunityPointsBalance
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("community_id = ? AND user_id = ?", communityID, userID).
			First(&balance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			balance = model.CommunityPointsBalance{
				CommunityID: communityID,
				UserID:      userID,
				Tier:        model.TierBronze,
			}
			if err := tx.Create(&balance).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if balance.Balance+change.Amount < 0 {
			return apperror.ErrInsufficientBalance
		}

		before := balance.Balance
		balance.Balance += change.Amount
		balance.TotalEarned += change.EarnedDelta
		balance.TotalSpent += change.SpentDelta
		balance.Tier, balance.TierProgress = model.TierForEarned(balance.TotalEarned)

		if err := tx.Save(&balance).Error; err != nil {
			return err
		}

		entry = &model.CommunityPointsTransaction{
			CommunityID:   communityID,
			UserID:        userID,
			Type:          change.Type,
			Activity:      change.Activity,
			Amount:        change.Amount,
			BalanceBefore: before,
			BalanceAfter:  before + change.Amount,
			BaseAmount:    change.BaseAmount,
			Multiplier:    change.Multiplier,
			Metadata:      change.Metadata,
			IsReversible:  change.IsReversible,
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return entry, &balance, nil
}

func (r *communityRepository) GetBalance(ctx context.Context, communityID, userID uuid.UUID) (*model.CommunityPointsBalance, error) {
	var balance model.CommunityPointsBalance
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *communityRepository) ListTransactions(ctx context.Context, communityID, userID uuid.UUID, limit, offset int) ([]model.CommunityPointsTransaction, error) {
	var entries []model.CommunityPointsTransaction
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}
