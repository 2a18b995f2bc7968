package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

// Change describes one balance mutation. Amount is the signed delta applied
// to the spendable balance; EarnedDelta/SpentDelta adjust the lifetime
// counters (a reversal of an earn carries a negative EarnedDelta).
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
	// GetOrCreateBalance lazily initializes the per-user aggregate.
	GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error)

	// ApplyChange runs the balance update and the ledger append in one
	// database transaction, locking the balance row so concurrent changes
	// for the same user serialize instead of losing updates.
	ApplyChange(ctx context.Context, userID uuid.UUID, change Change) (*model.PointsTransaction, *model.PointsBalance, error)

	// Reverse writes a compensating transaction for txID and stamps the
	// original as reversed, all in one database transaction.
	Reverse(ctx context.Context, txID, adminID uuid.UUID) (*model.PointsTransaction, error)

	GetTransaction(ctx context.Context, txID uuid.UUID) (*model.PointsTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsTransaction, error)

	// GetPartnerMultiplier returns the active multiplier for a partner token
	// and activity type, or 1.0 when none applies.
	GetPartnerMultiplier(ctx context.Context, contract, chainID, activityType string) (float64, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) Repository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error) {
	var balance model.PointsBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	balance = model.PointsBalance{UserID: userID, Tier: model.TierBronze}
	// OnConflict DoNothing keeps initialization idempotent under races.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&balance).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *pointsRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error) {
	var balance model.PointsBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *pointsRepository) ApplyChange(ctx context.Context, userID uuid.UUID, change Change) (*model.PointsTransaction, *model.PointsBalance, error) {
	var (
		entry   *model.PointsTransaction
		balance model.PointsBalance
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&balance).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			balance = model.PointsBalance{UserID: userID, Tier: model.TierBronze}
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

		entry = &model.PointsTransaction{
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

func (r *pointsRepository) Reverse(ctx context.Context, txID, adminID uuid.UUID) (*model.PointsTransaction, error) {
	var comp *model.PointsTransaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orig model.PointsTransaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&orig, "id = ?", txID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		} else if err != nil {
			return err
		}

		var balance model.PointsBalance
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", orig.UserID).First(&balance).Error; err != nil {
			return err
		}

		comp, err = applyReversal(&orig, &balance, adminID, time.Now())
		if err != nil {
			return err
		}

		if err := tx.Save(&balance).Error; err != nil {
			return err
		}
		if err := tx.Create(comp).Error; err != nil {
			return err
		}
		return tx.Save(&orig).Error
	})
	if err != nil {
		return nil, err
	}

	return comp, nil
}

// applyReversal validates that orig can be reversed, mutates balance and
// orig in place and returns the compensating entry. Nothing is touched on a
// validation failure. Reversing an earn decrements TotalEarned; the lifetime
// counters are intended monotonic, not enforced.
func applyReversal(orig *model.PointsTransaction, balance *model.PointsBalance, adminID uuid.UUID, now time.Time) (*model.PointsTransaction, error) {
	if !orig.IsReversible {
		return nil, apperror.ErrNotReversible
	}
	if orig.ReversedAt != nil {
		return nil, apperror.ErrAlreadyReversed
	}
	if balance.Balance-orig.Amount < 0 {
		return nil, apperror.ErrInsufficientBalance
	}

	before := balance.Balance
	balance.Balance -= orig.Amount
	if orig.Amount > 0 {
		balance.TotalEarned -= orig.Amount
	} else {
		balance.TotalSpent -= -orig.Amount
	}
	balance.Tier, balance.TierProgress = model.TierForEarned(balance.TotalEarned)

	compType := model.TxAdminDeduct
	if orig.Amount < 0 {
		compType = model.TxAdminAward
	}

	meta, _ := json.Marshal(map[string]string{"reversal_of": orig.ID.String()})
	comp := &model.PointsTransaction{
		UserID:        orig.UserID,
		Type:          compType,
		Activity:      orig.Activity,
		Amount:        -orig.Amount,
		BalanceBefore: before,
		BalanceAfter:  before - orig.Amount,
		BaseAmount:    orig.BaseAmount,
		Multiplier:    orig.Multiplier,
		Metadata:      meta,
	}

	orig.ReversedAt = &now
	orig.ReversedBy = &adminID
	return comp, nil
}

func (r *pointsRepository) GetTransaction(ctx context.Context, txID uuid.UUID) (*model.PointsTransaction, error) {
	var entry model.PointsTransaction
	err := r.db.WithContext(ctx).First(&entry, "id = ?", txID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *pointsRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsTransaction, error) {
	var entries []model.PointsTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *pointsRepository) GetPartnerMultiplier(ctx context.Context, contract, chainID, activityType string) (float64, error) {
	if contract == "" {
		return 1.0, nil
	}

	var token model.PartnerToken
	err := r.db.WithContext(ctx).
		Where("contract = ? AND chain_id = ? AND activity_type IN ? AND is_active = ?",
			contract, chainID, []string{activityType, "all"}, true).
		Order("multiplier DESC").
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1.0, nil
		}
		return 1.0, fmt.Errorf("partner token lookup: %w", err)
	}
	return token.Multiplier, nil
}
