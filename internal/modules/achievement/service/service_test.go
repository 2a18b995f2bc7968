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

func TestProgressStep(t *testing.T) {
	now := time.Now()

	count := &model.Achievement{Type: model.AchievementCount}
	assert.Equal(t, int64(1), ProgressStep(count, &model.UserAchievement{}, 50, now))

	amount := &model.Achievement{Type: model.AchievementAmount}
	assert.Equal(t, int64(50), ProgressStep(amount, &model.UserAchievement{}, 50, now))

	special := &model.Achievement{Type: model.AchievementSpecial}
	assert.Equal(t, int64(0), ProgressStep(special, &model.UserAchievement{}, 50, now))
}

func TestProgressStep_StreakOncePerDay(t *testing.T) {
	now := time.Now()
	streak := &model.Achievement{Type: model.AchievementStreak}

	// First ever activity counts.
	assert.Equal(t, int64(1), ProgressStep(streak, &model.UserAchievement{}, 10, now))

	// A second activity the same day does not.
	progress := &model.UserAchievement{LastActivityAt: now.Add(-1 * time.Hour)}
	assert.Equal(t, int64(0), ProgressStep(streak, progress, 10, now))

	// The next day counts again.
	progress = &model.UserAchievement{LastActivityAt: now.Add(-24 * time.Hour)}
	assert.Equal(t, int64(1), ProgressStep(streak, progress, 10, now))
}

func TestStreakBroken(t *testing.T) {
	now := time.Now()

	assert.False(t, StreakBroken(&model.UserAchievement{}, now))
	assert.False(t, StreakBroken(&model.UserAchievement{LastActivityAt: now.Add(-24 * time.Hour)}, now))
	assert.True(t, StreakBroken(&model.UserAchievement{LastActivityAt: now.Add(-49 * time.Hour)}, now))
}

// fakeAchievementRepo keeps achievements and progress in memory.
type fakeAchievementRepo struct {
	achievements []model.Achievement
	progress     map[uuid.UUID]*model.UserAchievement // keyed by achievement ID
}

func newFakeAchievementRepo(achievements ...model.Achievement) *fakeAchievementRepo {
	return &fakeAchievementRepo{
		achievements: achievements,
		progress:     make(map[uuid.UUID]*model.UserAchievement),
	}
}

func (f *fakeAchievementRepo) Create(ctx context.Context, achievement *model.Achievement) error {
	f.achievements = append(f.achievements, *achievement)
	return nil
}

func (f *fakeAchievementRepo) Update(ctx context.Context, achievement *model.Achievement) error {
	return nil
}

func (f *fakeAchievementRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	for i := range f.achievements {
		if f.achievements[i].ID == id {
			return &f.achievements[i], nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeAchievementRepo) ListActive(ctx context.Context) ([]model.Achievement, error) {
	return f.achievements, nil
}

func (f *fakeAchievementRepo) ListActiveByRequirement(ctx context.Context, requirementKeys []string) ([]model.Achievement, error) {
	var out []model.Achievement
	for _, a := range f.achievements {
		for _, key := range requirementKeys {
			if a.RequirementKey == key {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeAchievementRepo) GetOrCreateProgress(ctx context.Context, userID, achievementID uuid.UUID) (*model.UserAchievement, error) {
	if p, ok := f.progress[achievementID]; ok {
		return p, nil
	}
	p := &model.UserAchievement{ID: uuid.New(), UserID: userID, AchievementID: achievementID}
	f.progress[achievementID] = p
	return p, nil
}

func (f *fakeAchievementRepo) SaveProgress(ctx context.Context, progress *model.UserAchievement) error {
	f.progress[progress.AchievementID] = progress
	return nil
}

func (f *fakeAchievementRepo) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var out []model.UserAchievement
	for _, p := range f.progress {
		out = append(out, *p)
	}
	return out, nil
}

// recordingPointsRepo captures bonus credits.
type recordingPointsRepo struct {
	changes []pointsRepo.Change
}

func (f *recordingPointsRepo) GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error) {
	return &model.PointsBalance{UserID: userID}, nil
}

func (f *recordingPointsRepo) GetBalance(ctx context.Context, userID uuid.UUID) (*model.PointsBalance, error) {
	return &model.PointsBalance{UserID: userID}, nil
}

func (f *recordingPointsRepo) ApplyChange(ctx context.Context, userID uuid.UUID, change pointsRepo.Change) (*model.PointsTransaction, *model.PointsBalance, error) {
	f.changes = append(f.changes, change)
	return &model.PointsTransaction{ID: uuid.New()}, &model.PointsBalance{UserID: userID}, nil
}

func (f *recordingPointsRepo) Reverse(ctx context.Context, txID, adminID uuid.UUID) (*model.PointsTransaction, error) {
	return nil, apperror.ErrNotFound
}

func (f *recordingPointsRepo) GetTransaction(ctx context.Context, txID uuid.UUID) (*model.PointsTransaction, error) {
	return nil, apperror.ErrNotFound
}

func (f *recordingPointsRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsTransaction, error) {
	return nil, nil
}

func (f *recordingPointsRepo) GetPartnerMultiplier(ctx context.Context, contract, chainID, activityType string) (float64, error) {
	return 1.0, nil
}

func TestTrackActivity_CompletesOnce(t *testing.T) {
	achievement := model.Achievement{
		ID:             uuid.New(),
		Name:           "Play 3 Games",
		Type:           model.AchievementCount,
		RequirementKey: "games_played",
		Threshold:      3,
		RewardPoints:   100,
		IsActive:       true,
	}
	repo := newFakeAchievementRepo(achievement)
	points := &recordingPointsRepo{}
	svc := NewAchievementService(repo, points, nil)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackActivity(context.Background(), userID, "gaming_blackjack", 5))
	}

	progress := repo.progress[achievement.ID]
	require.NotNil(t, progress)
	assert.True(t, progress.IsCompleted)
	assert.Equal(t, 1, progress.TimesAwarded)

	require.Len(t, points.changes, 1)
	assert.Equal(t, model.TxBonus, points.changes[0].Type)
	assert.Equal(t, int64(100), points.changes[0].Amount)

	// Further games never re-award a completed non-repeatable achievement.
	require.NoError(t, svc.TrackActivity(context.Background(), userID, "gaming_blackjack", 5))
	assert.Len(t, points.changes, 1)
	assert.Equal(t, 1, progress.TimesAwarded)
}

func TestTrackActivity_RepeatableResets(t *testing.T) {
	achievement := model.Achievement{
		ID:             uuid.New(),
		Name:           "Every 2 Games",
		Type:           model.AchievementCount,
		RequirementKey: "games_played",
		Threshold:      2,
		RewardPoints:   10,
		IsRepeatable:   true,
		IsActive:       true,
	}
	repo := newFakeAchievementRepo(achievement)
	points := &recordingPointsRepo{}
	svc := NewAchievementService(repo, points, nil)

	userID := uuid.New()
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.TrackActivity(context.Background(), userID, "gaming_coinflip", 3))
	}

	progress := repo.progress[achievement.ID]
	require.NotNil(t, progress)
	assert.Equal(t, 2, progress.TimesAwarded)
	assert.Equal(t, int64(0), progress.Progress, "repeatable progress resets after each award")
	assert.Len(t, points.changes, 2)
}

func TestTrackActivity_AmountFedByPoints(t *testing.T) {
	achievement := model.Achievement{
		ID:             uuid.New(),
		Name:           "Earn 100",
		Type:           model.AchievementAmount,
		RequirementKey: "points_earned",
		Threshold:      100,
		RewardPoints:   50,
		IsActive:       true,
	}
	repo := newFakeAchievementRepo(achievement)
	points := &recordingPointsRepo{}
	svc := NewAchievementService(repo, points, nil)

	userID := uuid.New()

	// Any activity feeds points_earned with the awarded amount.
	require.NoError(t, svc.TrackActivity(context.Background(), userID, "token_staking", 100))

	progress := repo.progress[achievement.ID]
	require.NotNil(t, progress)
	assert.True(t, progress.IsCompleted)
}
