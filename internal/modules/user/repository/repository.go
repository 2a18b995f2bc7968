package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

// Identifier types accepted by the manual credit CSV.
const (
	IdentifierWallet  = "wallet_address"
	IdentifierTwitter = "twitter_username"
	IdentifierDiscord = "discord_username"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIdentifier resolves a user from an external identifier of the
	// given type (wallet_address, twitter_username, discord_username).
	FindByIdentifier(ctx context.Context, idType, value string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.ErrUserNotFound
	}

	var user model.User
	err = r.db.WithContext(ctx).Preload("Role").First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Role").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIdentifier(ctx context.Context, idType, value string) (*model.User, error) {
	var column string
	switch idType {
	case IdentifierWallet:
		column = "wallet_address"
	case IdentifierTwitter:
		column = "twitter_username"
	case IdentifierDiscord:
		column = "discord_username"
	default:
		return nil, apperror.ErrInvalidInput
	}

	var user model.User
	err := r.db.WithContext(ctx).First(&user, column+" = ?", value).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}
