package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

type Repository interface {
	GetActive(ctx context.Context) (*model.PointsJackpot, error)

	// Grow atomically adds delta to the pot and advances LastIncrementAt.
	// It returns the post-increment amount.
	Grow(ctx context.Context, id uuid.UUID, delta int64, lastIncrementAt time.Time) (int64, error)

	// RecordWin resets the pot to its base amount and updates the winner
	// bookkeeping in one transaction. It returns the amount that was won,
	// or 0 when the daily cap was reached or the pot deactivated between
	// the caller's eligibility check and the row lock.
	RecordWin(ctx context.Context, id, winnerID uuid.UUID) (int64, error)

	ResetDailyStats(ctx context.Context, id uuid.UUID) error
}

type jackpotRepository struct {
	db *gorm.DB
}

func NewJackpotRepository(db *gorm.DB) Repository {
	return &jackpotRepository{db: db}
}

func (r *jackpotRepository) GetActive(ctx context.Context) (*model.PointsJackpot, error) {
	var jackpot model.PointsJackpot
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&jackpot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &jackpot, nil
}

func (r *jackpotRepository) Grow(ctx context.Context, id uuid.UUID, delta int64, lastIncrementAt time.Time) (int64, error) {
	var jackpot model.PointsJackpot
	err := r.db.WithContext(ctx).Model(&jackpot).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "current_amount"}}}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_amount":    gorm.Expr("current_amount + ?", delta),
			"last_increment_at": lastIncrementAt,
		}).Error
	if err != nil {
		return 0, err
	}
	return jackpot.CurrentAmount, nil
}

func (r *jackpotRepository) RecordWin(ctx context.Context, id, winnerID uuid.UUID) (int64, error) {
	var won int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jackpot model.PointsJackpot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&jackpot, "id = ?", id).Error; err != nil {
			return err
		}

		// Eligibility was checked before the draw; the cap and active
		// flag are re-checked under the row lock so concurrent wins
		// cannot exceed MaxDailyWins.
		if !jackpot.IsActive || jackpot.DailyWins >= jackpot.MaxDailyWins {
			return nil
		}

		won = jackpot.CurrentAmount
		now := time.Now()

		jackpot.CurrentAmount = jackpot.BaseAmount
		jackpot.DailyWins++
		jackpot.TotalWinners++
		jackpot.TotalAmountWon += won
		jackpot.LastWinnerID = &winnerID
		jackpot.LastWinDate = &now

		return tx.Save(&jackpot).Error
	})
	if err != nil {
		return 0, err
	}

	return won, nil
}

func (r *jackpotRepository) ResetDailyStats(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PointsJackpot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"daily_wins":     0,
			"daily_reset_at": time.Now(),
		}).Error
}
