package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naffles.com/pointsbackend/internal/model"
	pointsRepo "naffles.com/pointsbackend/internal/modules/points/repository"
	"naffles.com/pointsbackend/pkg/apperror"
)

func activeJackpot() *model.PointsJackpot {
	return &model.PointsJackpot{
		ID:              uuid.New(),
		CurrentAmount:   2500,
		BaseAmount:      1000,
		HourlyGrowth:    50,
		WinProbability:  0.001,
		MinBalanceToWin: 100,
		CooldownHours:   24,
		MaxDailyWins:    3,
		LastIncrementAt: time.Now(),
		IsActive:        true,
	}
}

func TestEligible_Gates(t *testing.T) {
	now := time.Now()
	userID := uuid.New()

	j := activeJackpot()
	assert.True(t, Eligible(j, 100, userID, now))

	// Balance below the minimum.
	assert.False(t, Eligible(j, 99, userID, now))

	// Inactive pot.
	j = activeJackpot()
	j.IsActive = false
	assert.False(t, Eligible(j, 500, userID, now))

	// Daily cap reached.
	j = activeJackpot()
	j.DailyWins = 3
	assert.False(t, Eligible(j, 500, userID, now))

	// Winner inside their cooldown window.
	j = activeJackpot()
	winDate := now.Add(-12 * time.Hour)
	j.LastWinnerID = &userID
	j.LastWinDate = &winDate
	assert.False(t, Eligible(j, 500, userID, now))

	// Cooldown expired.
	winDate = now.Add(-25 * time.Hour)
	j.LastWinDate = &winDate
	assert.True(t, Eligible(j, 500, userID, now))

	// Cooldown only binds the previous winner.
	winDate = now.Add(-1 * time.Hour)
	j.LastWinDate = &winDate
	assert.True(t, Eligible(j, 500, uuid.New(), now))
}

func TestTimeGrowth(t *testing.T) {
	now := time.Now()
	j := activeJackpot()

	j.LastIncrementAt = now.Add(-30 * time.Minute)
	assert.Equal(t, int64(0), timeGrowth(j, now))

	j.LastIncrementAt = now.Add(-1 * time.Hour)
	assert.Equal(t, int64(50), timeGrowth(j, now))

	// Partial hours are dropped.
	j.LastIncrementAt = now.Add(-150 * time.Minute)
	assert.Equal(t, int64(100), timeGrowth(j, now))

	j.HourlyGrowth = 0
	assert.Equal(t, int64(0), timeGrowth(j, now))
}

// fakeJackpotRepo backs the win-path tests in memory.
type fakeJackpotRepo struct {
	jackpot *model.PointsJackpot
}

func (f *fakeJackpotRepo) GetActive(ctx context.Context) (*model.PointsJackpot, error) {
	if f.jackpot == nil {
		return nil, apperror.ErrNotFound
	}
	return f.jackpot, nil
}

func (f *fakeJackpotRepo) Grow(ctx context.Context, id uuid.UUID, delta int64, lastIncrementAt time.Time) (int64, error) {
	f.jackpot.CurrentAmount += delta
	f.jackpot.LastIncrementAt = lastIncrementAt
	return f.jackpot.CurrentAmount, nil
}

func (f *fakeJackpotRepo) RecordWin(ctx context.Context, id, winnerID uuid.UUID) (int64, error) {
	if !f.jackpot.IsActive || f.jackpot.DailyWins >= f.jackpot.MaxDailyWins {
		return 0, nil
	}

	won := f.jackpot.CurrentAmount
	f.jackpot.CurrentAmount = f.jackpot.BaseAmount
	f.jackpot.DailyWins++
	f.jackpot.TotalWinners++
	f.jackpot.TotalAmountWon += won
	f.jackpot.LastWinnerID = &winnerID
	now := time.Now()
	f.jackpot.LastWinDate = &now
	return won, nil
}

func (f *fakeJackpotRepo) ResetDailyStats(ctx context.Context, id uuid.UUID) error {
	f.jackpot.DailyWins = 0
	f.jackpot.DailyResetAt = time.Now()
	return nil
}

// fakePointsRepo provides just enough of the points surface for CheckWin.
type fakePointsRepo struct {
	balance *model.PointsBalance
	changes []pointsRepo.Change
}

func (f *fakePointsRepo) GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error) {
	return f.balance, nil
}

func (f *fakePointsRepo) GetBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error) {
	if f.balance == nil {
		return nil, apperror.ErrNotFound
	}
	return f.balance, nil
}

func (f *fakePointsRepo) ApplyChange(ctx context.Context, userID uuid.UUID, change pointsRepo.Change) (*model.PointsTransaction, *model.PointsBalance, error) {
	f.changes = append(f.changes, change)
	f.balance.Balance += change.Amount
	f.balance.TotalEarned += change.EarnedDelta
	return &model.PointsTransaction{ID: uuid.New(), UserID: userID}, f.balance, nil
}

func (f *fakePointsRepo) Reverse(ctx context.Context, txID, adminID uuid.UUID) (*model.PointsTransaction, error) {
	return nil, apperror.ErrNotFound
}

func (f *fakePointsRepo) GetTransaction(ctx context.Context, txID uuid.UUID) (*model.PointsTransaction, error) {
	return nil, apperror.ErrNotFound
}

func (f *fakePointsRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsTransaction, error) {
	return nil, nil
}

func (f *fakePointsRepo) GetPartnerMultiplier(ctx context.Context, contract, chainID, activityType string) (float64, error) {
	return 1.0, nil
}

func TestCheckWin_CreditsAndResets(t *testing.T) {
	repo := &fakeJackpotRepo{jackpot: activeJackpot()}
	points := &fakePointsRepo{balance: &model.PointsBalance{UserID: uuid.New(), Balance: 500}}

	svc := &jackpotService{
		repo:   repo,
		points: points,
		draw:   func() float64 { return 0 }, // always below the win probability
	}

	result, err := svc.CheckWin(context.Background(), points.balance.UserID)
	require.NoError(t, err)
	require.True(t, result.Won)

	assert.Equal(t, int64(2500), result.Amount)
	assert.Equal(t, int64(1000), repo.jackpot.CurrentAmount, "pot resets to base")
	assert.Equal(t, 1, repo.jackpot.DailyWins)

	require.Len(t, points.changes, 1)
	assert.Equal(t, model.TxJackpot, points.changes[0].Type)
	assert.Equal(t, int64(2500), points.changes[0].Amount)
	assert.Equal(t, int64(2500), points.changes[0].EarnedDelta, "wins count as earned")
}

func TestCheckWin_LosingDraw(t *testing.T) {
	repo := &fakeJackpotRepo{jackpot: activeJackpot()}
	points := &fakePointsRepo{balance: &model.PointsBalance{UserID: uuid.New(), Balance: 500}}

	svc := &jackpotService{
		repo:   repo,
		points: points,
		draw:   func() float64 { return 0.5 },
	}

	result, err := svc.CheckWin(context.Background(), points.balance.UserID)
	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Empty(t, points.changes)
	assert.Equal(t, int64(2500), repo.jackpot.CurrentAmount)
}

func TestCheckWin_IneligibleSkipsDraw(t *testing.T) {
	repo := &fakeJackpotRepo{jackpot: activeJackpot()}
	points := &fakePointsRepo{balance: &model.PointsBalance{UserID: uuid.New(), Balance: 50}}

	drawn := false
	svc := &jackpotService{
		repo:   repo,
		points: points,
		draw:   func() float64 { drawn = true; return 0 },
	}

	result, err := svc.CheckWin(context.Background(), points.balance.UserID)
	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.False(t, drawn, "ineligible users never reach the draw")
}

func TestCheckWin_CapTakenBetweenDrawAndLock(t *testing.T) {
	repo := &fakeJackpotRepo{jackpot: activeJackpot()}
	points := &fakePointsRepo{balance: &model.PointsBalance{UserID: uuid.New(), Balance: 500}}

	svc := &jackpotService{
		repo:   repo,
		points: points,
		// Winning draw, but the last daily slot goes to someone else
		// before the locked write.
		draw: func() float64 { repo.jackpot.DailyWins = repo.jackpot.MaxDailyWins; return 0 },
	}

	result, err := svc.CheckWin(context.Background(), points.balance.UserID)
	require.NoError(t, err)
	assert.False(t, result.Won)
	assert.Empty(t, points.changes, "no credit without a recorded win")
	assert.Equal(t, int64(2500), repo.jackpot.CurrentAmount, "pot untouched")
}

func TestIncrement_NonQualifyingActivity(t *testing.T) {
	repo := &fakeJackpotRepo{jackpot: activeJackpot()}
	svc := &jackpotService{repo: repo, draw: func() float64 { return 1 }}

	require.NoError(t, svc.Increment(context.Background(), "daily_login"))
	assert.Equal(t, int64(2500), repo.jackpot.CurrentAmount)

	require.NoError(t, svc.Increment(context.Background(), "gaming_blackjack"))
	assert.Equal(t, int64(2502), repo.jackpot.CurrentAmount)
}
