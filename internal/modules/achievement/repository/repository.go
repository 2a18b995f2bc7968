package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

type Repository interface {
	Create(ctx context.Context, achievement *model.Achievement) error
	Update(ctx context.Context, achievement *model.Achievement) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Achievement, error)
	ListActive(ctx context.Context) ([]model.Achievement, error)
	ListActiveByRequirement(ctx context.Context, requirementKeys []string) ([]model.Achievement, error)

	GetOrCreateProgress(ctx context.Context, userID, achievementID uuid.UUID) (*model.UserAchievement, error)
	SaveProgress(ctx context.Context, progress *model.UserAchievement) error
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) Repository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, achievement *model.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepository) Update(ctx context.Context, achievement *model.Achievement) error {
	return r.db.WithContext(ctx).Save(achievement).Error
}

func (r *achievementRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	var achievement model.Achievement
	err := r.db.WithContext(ctx).First(&achievement, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) ListActive(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("category, name").
		Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) ListActiveByRequirement(ctx context.Context, requirementKeys []string) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND requirement_key IN ?", true, requirementKeys).
		Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) GetOrCreateProgress(ctx context.Context, userID, achievementID uuid.UUID) (*model.UserAchievement, error) {
	progress := model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *achievementRepository) SaveProgress(ctx context.Context, progress *model.UserAchievement) error {
	return r.db.WithContext(ctx).Save(progress).Error
}

func (r *achievementRepository) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var progress []model.UserAchievement
	err := r.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Find(&progress).Error
	return progress, err
}
