package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

type PartnerTokenRepository interface {
	Create(ctx context.Context, token *model.PartnerToken) error
	Update(ctx context.Context, token *model.PartnerToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.PartnerToken, error)
	List(ctx context.Context) ([]model.PartnerToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type partnerTokenRepository struct {
	db *gorm.DB
}

func NewPartnerTokenRepository(db *gorm.DB) PartnerTokenRepository {
	return &partnerTokenRepository{db: db}
}

func (r *partnerTokenRepository) Create(ctx context.Context, token *model.PartnerToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *partnerTokenRepository) Update(ctx context.Context, token *model.PartnerToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}

func (r *partnerTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PartnerToken, error) {
	var token model.PartnerToken
	err := r.db.WithContext(ctx).First(&token, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *partnerTokenRepository) List(ctx context.Context) ([]model.PartnerToken, error) {
	var tokens []model.PartnerToken
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tokens).Error
	return tokens, err
}

func (r *partnerTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PartnerToken{}, "id = ?", id).Error
}
