package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naffles.com/pointsbackend/internal/model"
	communityRepo "naffles.com/pointsbackend/internal/modules/community/repository"
	searchService "naffles.com/pointsbackend/internal/modules/search/service"
	"naffles.com/pointsbackend/pkg/apperror"
)

func TestApplyFeaturePolicy_UserCommunity(t *testing.T) {
	community := &model.Community{
		Slug: "cool-cats",
		Features: model.CommunityFeatures{
			EnableJackpot:           true,
			EnableSystemWideEarning: true,
		},
	}

	ApplyFeaturePolicy(community)

	// Requested flags are forced off for everyone but the platform
	// community.
	assert.False(t, community.IsNaffles)
	assert.False(t, community.Features.EnableJackpot)
	assert.False(t, community.Features.EnableSystemWideEarning)
}

func TestApplyFeaturePolicy_PlatformCommunity(t *testing.T) {
	community := &model.Community{Slug: model.NafflesSlug}

	ApplyFeaturePolicy(community)

	assert.True(t, community.IsNaffles)
	assert.True(t, community.Features.EnableJackpot)
	assert.True(t, community.Features.EnableSystemWideEarning)
}

// fakeCommunityRepo holds one community, its members and balances in memory.
type fakeCommunityRepo struct {
	community *model.Community
	members   map[uuid.UUID]*model.CommunityMember
	balances  map[uuid.UUID]*model.CommunityPointsBalance
	txs       []model.CommunityPointsTransaction
}

func newFakeCommunityRepo(community *model.Community) *fakeCommunityRepo {
	return &fakeCommunityRepo{
		community: community,
		members:   make(map[uuid.UUID]*model.CommunityMember),
		balances:  make(map[uuid.UUID]*model.CommunityPointsBalance),
	}
}

func (f *fakeCommunityRepo) Create(ctx context.Context, community *model.Community) error {
	f.community = community
	return nil
}

func (f *fakeCommunityRepo) Update(ctx context.Context, community *model.Community) error {
	f.community = community
	return nil
}

func (f *fakeCommunityRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Community, error) {
	if f.community == nil || f.community.ID != id {
		return nil, apperror.ErrCommunityNotFound
	}
	return f.community, nil
}

func (f *fakeCommunityRepo) GetBySlug(ctx context.Context, slug string) (*model.Community, error) {
	if f.community == nil || f.community.Slug != slug {
		return nil, apperror.ErrNotFound
	}
	return f.community, nil
}

func (f *fakeCommunityRepo) List(ctx context.Context, limit, offset int) ([]model.Community, error) {
	if f.community == nil {
		return nil, nil
	}
	return []model.Community{*f.community}, nil
}

func (f *fakeCommunityRepo) AddMember(ctx context.Context, member *model.CommunityMember) error {
	f.members[member.UserID] = member
	return nil
}

func (f *fakeCommunityRepo) GetMember(ctx context.Context, communityID, userID uuid.UUID) (*model.CommunityMember, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, apperror.ErrNotAMember
}

func (f *fakeCommunityRepo) RemoveMember(ctx context.Context, communityID, userID uuid.UUID) error {
	delete(f.members, userID)
	return nil
}

func (f *fakeCommunityRepo) ApplyChange(ctx context.Context, communityID, userID uuid.UUID, change communityRepo.Change) (*model.CommunityPointsTransaction, *model.CommunityPointsBalance, error) {
	balance, ok := f.balances[userID]
	if !ok {
		balance = &model.CommunityPointsBalance{CommunityID: communityID, UserID: userID, Tier: model.TierBronze}
		f.balances[userID] = balance
	}

	if balance.Balance+change.Amount < 0 {
		return nil, nil, apperror.ErrInsufficientBalance
	}

	before := balance.Balance
	balance.Balance += change.Amount
	balance.TotalEarned += change.EarnedDelta
	balance.TotalSpent += change.SpentDelta
	balance.Tier, balance.TierProgress = model.TierForEarned(balance.TotalEarned)

	tx := model.CommunityPointsTransaction{
		ID:            uuid.New(),
		CommunityID:   communityID,
		UserID:        userID,
		Type:          change.Type,
		Activity:      change.Activity,
		Amount:        change.Amount,
		BalanceBefore: before,
		BalanceAfter:  balance.Balance,
		BaseAmount:    change.BaseAmount,
		Multiplier:    change.Multiplier,
		IsReversible:  change.IsReversible,
	}
	f.txs = append(f.txs, tx)
	return &tx, balance, nil
}

func (f *fakeCommunityRepo) GetBalance(ctx context.Context, communityID, userID uuid.UUID) (*model.CommunityPointsBalance, error) {
	if b, ok := f.balances[userID]; ok {
		return b, nil
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeCommunityRepo) ListTransactions(ctx context.Context, communityID, userID uuid.UUID, limit, offset int) ([]model.CommunityPointsTransaction, error) {
	return f.txs, nil
}

func newTestCommunityService(repo communityRepo.Repository) Service {
	return NewCommunityService(repo, searchService.NewCommunitySearchService(nil))
}

func TestAward_CreditsBaseAmountUnmodified(t *testing.T) {
	userID := uuid.New()
	community := &model.Community{
		ID:   uuid.New(),
		Slug: model.NafflesSlug,
		Features: model.CommunityFeatures{
			EnableSystemWideEarning: true,
		},
	}
	repo := newFakeCommunityRepo(community)
	repo.members[userID] = &model.CommunityMember{CommunityID: community.ID, UserID: userID, Role: "member"}

	svc := newTestCommunityService(repo)

	result, err := svc.Award(context.Background(), community.ID, userID, "gaming_blackjack", nil)
	require.NoError(t, err)

	// No multiplier on community ledgers: the base amount lands as-is.
	assert.Equal(t, int64(5), result.PointsAwarded)
	require.Len(t, repo.txs, 1)
	assert.Equal(t, int64(5), repo.txs[0].Amount)
	assert.Equal(t, float64(1), repo.txs[0].Multiplier)
}

func TestAward_SystemWideEarningGate(t *testing.T) {
	userID := uuid.New()
	community := &model.Community{ID: uuid.New(), Slug: "cool-cats"}
	repo := newFakeCommunityRepo(community)
	repo.members[userID] = &model.CommunityMember{CommunityID: community.ID, UserID: userID, Role: "member"}

	svc := newTestCommunityService(repo)

	// Platform activities never earn in a user-created community.
	_, err := svc.Award(context.Background(), community.ID, userID, "gaming_blackjack", nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Empty(t, repo.txs)

	// Community-scoped activities still do.
	result, err := svc.Award(context.Background(), community.ID, userID, "community_join", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(15), result.PointsAwarded)
}

func TestAward_RequiresMembership(t *testing.T) {
	community := &model.Community{ID: uuid.New(), Slug: "cool-cats"}
	repo := newFakeCommunityRepo(community)

	svc := newTestCommunityService(repo)

	_, err := svc.Award(context.Background(), community.ID, uuid.New(), "community_join", nil)
	assert.ErrorIs(t, err, apperror.ErrNotAMember)
}
