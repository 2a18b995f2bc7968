package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/internal/modules/community/dto"
	communityRepo "naffles.com/pointsbackend/internal/modules/community/repository"
	pointsService "naffles.com/pointsbackend/internal/modules/points/service"
	searchService "naffles.com/pointsbackend/internal/modules/search/service"
	"naffles.com/pointsbackend/pkg/apperror"
)

type Service interface {
	Create(ctx context.Context, creatorID uuid.UUID, input dto.CreateCommunityInput) (*model.Community, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Community, error)
	List(ctx context.Context, limit, offset int) ([]model.Community, error)
	Search(ctx context.Context, query string, limit int) ([]model.Community, error)

	Join(ctx context.Context, communityID, userID uuid.UUID) error
	Leave(ctx context.Context, communityID, userID uuid.UUID) error

	// Award and Deduct are the community-scoped ledger operations. Both
	// require membership; the same activity policy table applies.
	Award(ctx context.Context, communityID, userID uuid.UUID, activity string, extra map[string]any) (*dto.CommunityAwardResult, error)
	Deduct(ctx context.Context, communityID, userID uuid.UUID, amount int64, reason string) (*dto.CommunityAwardResult, error)

	GetBalance(ctx context.Context, communityID, userID uuid.UUID) (*dto.CommunityBalanceResponse, error)
	ListTransactions(ctx context.Context, communityID, userID uuid.UUID, limit, offset int) ([]model.CommunityPointsTransaction, error)
}

type communityService struct {
	repo      communityRepo.Repository
	search    searchService.CommunitySearchService
	sanitizer *bluemonday.Policy
}

func NewCommunityService(repo communityRepo.Repository, search searchService.CommunitySearchService) Service {
	return &communityService{
		repo:      repo,
		search:    search,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ApplyFeaturePolicy enforces the platform rule on feature flags: only the
// Naffles community runs the jackpot and earns from system-wide activities.
// Whatever a creator requests for their own community is forced off.
func ApplyFeaturePolicy(community *model.Community) {
	if community.Slug == model.NafflesSlug {
		community.IsNaffles = true
		community.Features.EnableJackpot = true
		community.Features.EnableSystemWideEarning = true
		return
	}
	community.IsNaffles = false
	community.Features.EnableJackpot = false
	community.Features.EnableSystemWideEarning = false
}

func (s *communityService) Create(ctx context.Context, creatorID uuid.UUID, input dto.CreateCommunityInput) (*model.Community, error) {
	pointsName := input.PointsName
	if pointsName == "" {
		pointsName = "points"
	}

	community := &model.Community{
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: s.sanitizer.Sanitize(input.Description),
		CreatorID:   creatorID,
		PointsName:  pointsName,
		Features: model.CommunityFeatures{
			EnableJackpot:           input.EnableJackpot,
			EnableSystemWideEarning: input.EnableSystemWideEarning,
		},
	}
	ApplyFeaturePolicy(community)

	if _, err := s.repo.GetBySlug(ctx, community.Slug); err == nil {
		return nil, apperror.New(0, "a community with this name already exists", apperror.ErrBadRequest)
	}

	if err := s.repo.Create(ctx, community); err != nil {
		return nil, err
	}

	// Creator joins their own community.
	member := &model.CommunityMember{
		CommunityID: community.ID,
		UserID:      creatorID,
		Role:        "creator",
	}
	if err := s.repo.AddMember(ctx, member); err != nil {
		log.Printf("failed to add creator as member of %s: %v", community.Slug, err)
	}

	if err := s.search.IndexCommunity(community); err != nil {
		log.Printf("failed to index community %s: %v", community.Slug, err)
	}

	return community, nil
}

func (s *communityService) Get(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *communityService) List(ctx context.Context, limit, offset int) ([]model.Community, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *communityService) Search(ctx context.Context, query string, limit int) ([]model.Community, error) {
	ids, err := s.search.Search(query, limit)
	if err != nil {
		return nil, err
	}

	communities := make([]model.Community, 0, len(ids))
	for _, id := range ids {
		communityID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		community, err := s.repo.GetByID(ctx, communityID)
		if err != nil {
			continue
		}
		communities = append(communities, *community)
	}
	return communities, nil
}

func (s *communityService) Join(ctx context.Context, communityID, userID uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, communityID); err != nil {
		return err
	}
	return s.repo.AddMember(ctx, &model.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Role:        "member",
	})
}

func (s *communityService) Leave(ctx context.Context, communityID, userID uuid.UUID) error {
	return s.repo.RemoveMember(ctx, communityID, userID)
}

func (s *communityService) Award(ctx context.Context, communityID, userID uuid.UUID, activity string, extra map[string]any) (*dto.CommunityAwardResult, error) {
	community, err := s.repo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	base, ok := pointsService.BasePointsFor(activity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownActivity, activity)
	}

	// System-wide activities only earn in communities flagged for it; a
	// user-created community earns only from its own scoped activities.
	if !community.Features.EnableSystemWideEarning && pointsService.ActivityTypeOf(activity) != "general" {
		return nil, apperror.New(0, "this community does not earn from platform activities", apperror.ErrForbidden)
	}

	// Community ledgers credit the base amount as-is; partner token
	// multipliers apply to platform points only.
	finalPoints := base

	var metadata json.RawMessage
	if extra != nil {
		metadata, _ = json.Marshal(extra)
	}

	entry, balance, err := s.repo.ApplyChange(ctx, communityID, userID, communityRepo.Change{
		Type:         model.TxEarned,
		Activity:     activity,
		Amount:       finalPoints,
		EarnedDelta:  finalPoints,
		BaseAmount:   base,
		Multiplier:   1,
		Metadata:     metadata,
		IsReversible: true,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CommunityAwardResult{
		PointsAwarded: finalPoints,
		NewBalance:    balance.Balance,
		PointsName:    community.PointsName,
		TransactionID: entry.ID,
	}, nil
}

func (s *communityService) Deduct(ctx context.Context, communityID, userID uuid.UUID, amount int64, reason string) (*dto.CommunityAwardResult, error) {
	community, err := s.repo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMember(ctx, communityID, userID); err != nil {
		return nil, err
	}

	metadata, _ := json.Marshal(map[string]string{"reason": reason})
	entry, balance, err := s.repo.ApplyChange(ctx, communityID, userID, communityRepo.Change{
		Type:         model.TxSpent,
		Activity:     reason,
		Amount:       -amount,
		SpentDelta:   amount,
		Multiplier:   1,
		Metadata:     metadata,
		IsReversible: true,
	})
	if err != nil {
		return nil, err
	}

	return &dto.CommunityAwardResult{
		PointsAwarded: -amount,
		NewBalance:    balance.Balance,
		PointsName:    community.PointsName,
		TransactionID: entry.ID,
	}, nil
}

func (s *communityService) GetBalance(ctx context.Context, communityID, userID uuid.UUID) (*dto.CommunityBalanceResponse, error) {
	community, err := s.repo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	balance, err := s.repo.GetBalance(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			balance = &model.CommunityPointsBalance{
				CommunityID: communityID,
				UserID:      userID,
				Tier:        model.TierBronze,
			}
		} else {
			return nil, err
		}
	}

	return &dto.CommunityBalanceResponse{
		Community: community,
		Balance:   balance,
	}, nil
}

func (s *communityService) ListTransactions(ctx context.Context, communityID, userID uuid.UUID, limit, offset int) ([]model.CommunityPointsTransaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, communityID, userID, limit, offset)
}
