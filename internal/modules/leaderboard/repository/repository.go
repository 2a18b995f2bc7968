package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"naffles.com/pointsbackend/internal/model"
)

type Repository interface {
	// UpsertIncrement adds delta to the entry's value, creating it at delta
	// if absent. Used for the time-bounded periods.
	UpsertIncrement(ctx context.Context, entry *model.LeaderboardEntry, delta int64) error

	// UpsertOverwrite sets the entry's value outright. Used for all_time,
	// whose value mirrors the balance aggregate rather than accumulating.
	UpsertOverwrite(ctx context.Context, entry *model.LeaderboardEntry, value int64) error

	// ListForRecalc returns all entries of one board sorted by value
	// descending, ready for a full rank rewrite.
	ListForRecalc(ctx context.Context, category, period string, periodStart time.Time) ([]model.LeaderboardEntry, error)

	SaveRanks(ctx context.Context, entries []model.LeaderboardEntry) error

	GetTop(ctx context.Context, category, period string, periodStart time.Time, limit int) ([]model.LeaderboardEntry, error)
	GetUserEntry(ctx context.Context, userID uuid.UUID, category, period string, periodStart time.Time) (*model.LeaderboardEntry, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) Repository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) UpsertIncrement(ctx context.Context, entry *model.LeaderboardEntry, delta int64) error {
	entry.Value = delta
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "category"}, {Name: "period"}, {Name: "period_start"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      gorm.Expr("leaderboard_entries.value + ?", delta),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(entry).Error
}

func (r *leaderboardRepository) UpsertOverwrite(ctx context.Context, entry *model.LeaderboardEntry, value int64) error {
	entry.Value = value
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "category"}, {Name: "period"}, {Name: "period_start"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(entry).Error
}

func (r *leaderboardRepository) ListForRecalc(ctx context.Context, category, period string, periodStart time.Time) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("category = ? AND period = ? AND period_start = ?", category, period, periodStart).
		Order("value DESC").
		Find(&entries).Error
	return entries, err
}

func (r *leaderboardRepository) SaveRanks(ctx context.Context, entries []model.LeaderboardEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			e := &entries[i]
			err := tx.Model(&model.LeaderboardEntry{}).
				Where("id = ?", e.ID).
				Updates(map[string]interface{}{
					"rank":          e.Rank,
					"previous_rank": e.PreviousRank,
					"change":        e.Change,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *leaderboardRepository) GetTop(ctx context.Context, category, period string, periodStart time.Time, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("category = ? AND period = ? AND period_start = ?", category, period, periodStart).
		Order("value DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *leaderboardRepository) GetUserEntry(ctx context.Context, userID uuid.UUID, category, period string, periodStart time.Time) (*model.LeaderboardEntry, error) {
	var entry model.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ? AND period = ? AND period_start = ?", userID, category, period, periodStart).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
