package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"naffles.com/pointsbackend/internal/model"
	achievementRepo "naffles.com/pointsbackend/internal/modules/achievement/repository"
	pointsRepo "naffles.com/pointsbackend/internal/modules/points/repository"
	"naffles.com/pointsbackend/pkg/storage"
)

// requirementKeys maps an activity to the progress counters it feeds. Every
// award additionally feeds "points_earned".
var requirementKeys = map[string][]string{
	"gaming_blackjack":           {"games_played"},
	"gaming_coinflip":            {"games_played"},
	"gaming_rock_paper_scissors": {"games_played"},
	"raffle_ticket_purchase":     {"tickets_purchased"},
	"raffle_create":              {"raffles_created"},
	"daily_login":                {"login_days"},
	"token_staking":              {"tokens_staked"},
	"referral_signup":            {"referrals"},
	"community_join":             {"communities_joined"},
}

const requirementPointsEarned = "points_earned"

// streakResetGap is how long a streak survives without qualifying activity.
const streakResetGap = 48 * time.Hour

type Service interface {
	// TrackActivity advances every active achievement fed by the activity.
	// Crossing a threshold for the first time completes the achievement
	// (one-way) and credits its reward points as a bonus transaction;
	// repeatable achievements reset progress after each award.
	TrackActivity(ctx context.Context, userID uuid.UUID, activity string, awardedPoints int64) error

	List(ctx context.Context) ([]model.Achievement, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Achievement, error)
	ListUserProgress(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)

	Create(ctx context.Context, achievement *model.Achievement) error
	Update(ctx context.Context, achievement *model.Achievement) error
	UploadBadge(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*model.Achievement, error)
}

type achievementService struct {
	repo         achievementRepo.Repository
	points       pointsRepo.Repository
	imageStorage storage.ImageStorage
}

func NewAchievementService(repo achievementRepo.Repository, points pointsRepo.Repository, imageStorage storage.ImageStorage) Service {
	return &achievementService{
		repo:         repo,
		points:       points,
		imageStorage: imageStorage,
	}
}

func (s *achievementService) TrackActivity(ctx context.Context, userID uuid.UUID, activity string, awardedPoints int64) error {
	keys := append([]string{requirementPointsEarned}, requirementKeys[activity]...)

	achievements, err := s.repo.ListActiveByRequirement(ctx, keys)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range achievements {
		if err := s.advance(ctx, userID, &achievements[i], awardedPoints, now); err != nil {
			log.Printf("achievement %q progress for user %s failed: %v", achievements[i].Name, userID, err)
		}
	}
	return nil
}

func (s *achievementService) advance(ctx context.Context, userID uuid.UUID, achievement *model.Achievement, awardedPoints int64, now time.Time) error {
	progress, err := s.repo.GetOrCreateProgress(ctx, userID, achievement.ID)
	if err != nil {
		return err
	}

	// Completed non-repeatable achievements never re-award.
	if progress.IsCompleted && !achievement.IsRepeatable {
		return nil
	}

	step := ProgressStep(achievement, progress, awardedPoints, now)
	if step == 0 {
		return nil
	}

	if achievement.Type == model.AchievementStreak && StreakBroken(progress, now) {
		progress.Progress = 0
	}

	progress.Progress += step
	progress.LastActivityAt = now

	if progress.Progress >= achievement.Threshold {
		if !progress.IsCompleted {
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}
		progress.TimesAwarded++
		if achievement.IsRepeatable {
			progress.Progress = 0
		}

		if err := s.awardCompletion(ctx, userID, achievement); err != nil {
			return err
		}
		log.Printf("🏅 Achievement %q completed by user %s", achievement.Name, userID)
	}

	return s.repo.SaveProgress(ctx, progress)
}

func (s *achievementService) awardCompletion(ctx context.Context, userID uuid.UUID, achievement *model.Achievement) error {
	if achievement.RewardPoints <= 0 {
		return nil
	}

	meta, _ := json.Marshal(map[string]string{"achievement_id": achievement.ID.String()})
	_, _, err := s.points.ApplyChange(ctx, userID, pointsRepo.Change{
		Type:        model.TxBonus,
		Activity:    "achievement_completed",
		Amount:      achievement.RewardPoints,
		EarnedDelta: achievement.RewardPoints,
		Multiplier:  1,
		Metadata:    meta,
	})
	return err
}

// ProgressStep returns how far one qualifying activity advances a progress
// counter for the given achievement type.
func ProgressStep(achievement *model.Achievement, progress *model.UserAchievement, awardedPoints int64, now time.Time) int64 {
	switch achievement.Type {
	case model.AchievementAmount:
		return awardedPoints
	case model.AchievementStreak:
		// At most one streak step per day.
		if sameDay(progress.LastActivityAt, now) {
			return 0
		}
		return 1
	case model.AchievementCount:
		return 1
	default:
		// Special achievements are granted manually, not by activity.
		return 0
	}
}

// StreakBroken reports whether the gap since the last qualifying activity
// resets a streak counter.
func StreakBroken(progress *model.UserAchievement, now time.Time) bool {
	if progress.LastActivityAt.IsZero() {
		return false
	}
	return now.Sub(progress.LastActivityAt) > streakResetGap
}

func sameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *achievementService) List(ctx context.Context) ([]model.Achievement, error) {
	return s.repo.ListActive(ctx)
}

func (s *achievementService) Get(ctx context.Context, id uuid.UUID) (*model.Achievement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *achievementService) ListUserProgress(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	return s.repo.ListUserAchievements(ctx, userID)
}

func (s *achievementService) Create(ctx context.Context, achievement *model.Achievement) error {
	return s.repo.Create(ctx, achievement)
}

func (s *achievementService) Update(ctx context.Context, achievement *model.Achievement) error {
	return s.repo.Update(ctx, achievement)
}

func (s *achievementService) UploadBadge(ctx context.Context, id uuid.UUID, r io.Reader, fileName string) (*model.Achievement, error) {
	achievement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, r, "badges", fileName)
	if err != nil {
		return nil, fmt.Errorf("badge upload: %w", err)
	}

	if achievement.BadgeURL != nil && *achievement.BadgeURL != "" {
		if err := s.imageStorage.DeleteImage(ctx, *achievement.BadgeURL); err != nil {
			log.Printf("failed to delete previous badge for %s: %v", achievement.Name, err)
		}
	}

	achievement.BadgeURL = &url
	if err := s.repo.Update(ctx, achievement); err != nil {
		return nil, err
	}
	return achievement, nil
}
