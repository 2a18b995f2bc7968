package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/pkg/apperror"
)

func reversibleEarn(userID uuid.UUID, amount int64) *model.PointsTransaction {
	return &model.PointsTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         model.TxEarned,
		Activity:     "gaming_blackjack",
		Amount:       amount,
		BaseAmount:   amount,
		Multiplier:   1,
		IsReversible: true,
	}
}

func TestApplyReversal_CompensatesEarn(t *testing.T) {
	userID := uuid.New()
	adminID := uuid.New()
	now := time.Now()

	orig := reversibleEarn(userID, 500)
	balance := &model.PointsBalance{UserID: userID, Balance: 1200, TotalEarned: 1500}
	balance.Tier, balance.TierProgress = model.TierForEarned(balance.TotalEarned)

	comp, err := applyReversal(orig, balance, adminID, now)
	require.NoError(t, err)

	assert.Equal(t, model.TxAdminDeduct, comp.Type)
	assert.Equal(t, int64(-500), comp.Amount)
	assert.Equal(t, int64(1200), comp.BalanceBefore)
	assert.Equal(t, int64(700), comp.BalanceAfter)
	assert.Equal(t, comp.BalanceBefore+comp.Amount, comp.BalanceAfter)

	assert.Equal(t, int64(700), balance.Balance)
	assert.Equal(t, int64(1000), balance.TotalEarned)
	assert.Equal(t, model.TierSilver, balance.Tier)

	require.NotNil(t, orig.ReversedAt)
	assert.Equal(t, now, *orig.ReversedAt)
	require.NotNil(t, orig.ReversedBy)
	assert.Equal(t, adminID, *orig.ReversedBy)
}

func TestApplyReversal_TwiceFails(t *testing.T) {
	userID := uuid.New()
	orig := reversibleEarn(userID, 100)
	balance := &model.PointsBalance{UserID: userID, Balance: 500, TotalEarned: 500}

	_, err := applyReversal(orig, balance, uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = applyReversal(orig, balance, uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperror.ErrAlreadyReversed)
	assert.Equal(t, int64(400), balance.Balance, "second attempt must not touch the balance")
}

func TestApplyReversal_NotReversible(t *testing.T) {
	userID := uuid.New()
	orig := reversibleEarn(userID, 100)
	orig.IsReversible = false
	balance := &model.PointsBalance{UserID: userID, Balance: 500, TotalEarned: 500}

	_, err := applyReversal(orig, balance, uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperror.ErrNotReversible)
	assert.Equal(t, int64(500), balance.Balance)
	assert.Nil(t, orig.ReversedAt)
}

func TestApplyReversal_InsufficientBalanceLeavesStateUntouched(t *testing.T) {
	userID := uuid.New()
	orig := reversibleEarn(userID, 500)
	balance := &model.PointsBalance{UserID: userID, Balance: 100, TotalEarned: 500}

	_, err := applyReversal(orig, balance, uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)
	assert.Equal(t, int64(100), balance.Balance)
	assert.Equal(t, int64(500), balance.TotalEarned)
	assert.Nil(t, orig.ReversedAt)
}

func TestApplyReversal_CanDemoteTier(t *testing.T) {
	userID := uuid.New()
	orig := reversibleEarn(userID, 500)
	balance := &model.PointsBalance{UserID: userID, Balance: 1200, TotalEarned: 1200}
	balance.Tier, balance.TierProgress = model.TierForEarned(balance.TotalEarned)
	require.Equal(t, model.TierSilver, balance.Tier)

	_, err := applyReversal(orig, balance, uuid.New(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(700), balance.TotalEarned)
	assert.Equal(t, model.TierBronze, balance.Tier)
}

func TestApplyReversal_SpendReversalCreditsBack(t *testing.T) {
	userID := uuid.New()
	orig := &model.PointsTransaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         model.TxSpent,
		Activity:     "raffle entry",
		Amount:       -200,
		Multiplier:   1,
		IsReversible: true,
	}
	balance := &model.PointsBalance{UserID: userID, Balance: 300, TotalEarned: 1000, TotalSpent: 200}
	balance.Tier, balance.TierProgress = model.TierForEarned(balance.TotalEarned)

	comp, err := applyReversal(orig, balance, uuid.New(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, model.TxAdminAward, comp.Type)
	assert.Equal(t, int64(200), comp.Amount)
	assert.Equal(t, int64(500), balance.Balance)
	assert.Equal(t, int64(0), balance.TotalSpent)
	assert.Equal(t, int64(1000), balance.TotalEarned, "reversing a spend must not touch TotalEarned")
}
