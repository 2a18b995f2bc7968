package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"naffles.com/pointsbackend/internal/model"
	achievementService "naffles.com/pointsbackend/internal/modules/achievement/service"
	jackpotService "naffles.com/pointsbackend/internal/modules/jackpot/service"
	leaderboardService "naffles.com/pointsbackend/internal/modules/leaderboard/service"
	"naffles.com/pointsbackend/internal/modules/points/dto"
	"naffles.com/pointsbackend/internal/modules/points/repository"
	"naffles.com/pointsbackend/pkg/apperror"
)

type Service interface {
	// Award credits points for a named activity. The balance update and the
	// ledger append commit atomically; the jackpot, achievement and
	// leaderboard side effects run afterwards and never fail the award.
	Award(ctx context.Context, userID uuid.UUID, activity string, meta dto.AwardMeta) (*dto.AwardResult, error)

	// Deduct is the mirror operation; it fails with ErrInsufficientBalance
	// when the amount exceeds the spendable balance, leaving state unchanged.
	Deduct(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*dto.DeductResult, error)

	// AdminAward and AdminDeduct are the operator-initiated variants; they
	// bypass the activity policy table and record the acting admin.
	AdminAward(ctx context.Context, userID, adminID uuid.UUID, amount int64, reason string) (*dto.AwardResult, error)
	AdminDeduct(ctx context.Context, userID, adminID uuid.UUID, amount int64, reason string) (*dto.DeductResult, error)

	// Reverse compensates a reversible transaction; reversing twice fails
	// with ErrAlreadyReversed.
	Reverse(ctx context.Context, txID, adminID uuid.UUID) (*model.PointsTransaction, error)

	GetUserPointsInfo(ctx context.Context, userID uuid.UUID) (*dto.PointsInfo, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsTransaction, error)
}

type pointsService struct {
	repo         repository.Repository
	jackpot      jackpotService.Service
	achievements achievementService.Service
	leaderboard  leaderboardService.Service
	redisClient  *redis.Client
}

func NewPointsService(
	repo repository.Repository,
	jackpot jackpotService.Service,
	achievements achievementService.Service,
	leaderboard leaderboardService.Service,
	redisClient *redis.Client,
) Service {
	return &pointsService{
		repo:         repo,
		jackpot:      jackpot,
		achievements: achievements,
		leaderboard:  leaderboard,
		redisClient:  redisClient,
	}
}

func (s *pointsService) Award(ctx context.Context, userID uuid.UUID, activity string, meta dto.AwardMeta) (*dto.AwardResult, error) {
	base, ok := BasePointsFor(activity)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownActivity, activity)
	}

	if activity == ActivityDailyLogin {
		if err := s.claimDailyLogin(ctx, userID); err != nil {
			return nil, err
		}
	}

	multiplier, err := s.repo.GetPartnerMultiplier(ctx, meta.TokenContract, meta.ChainID, ActivityTypeOf(activity))
	if err != nil {
		log.Printf("partner multiplier lookup failed, using 1.0: %v", err)
		multiplier = 1.0
	}
	if meta.AdditionalMultiplier > 0 {
		multiplier *= meta.AdditionalMultiplier
	}

	finalPoints := int64(math.Floor(float64(base) * multiplier))

	var metadata json.RawMessage
	if meta.Extra != nil {
		metadata, _ = json.Marshal(meta.Extra)
	}

	entry, balance, err := s.repo.ApplyChange(ctx, userID, repository.Change{
		Type:         model.TxEarned,
		Activity:     activity,
		Amount:       finalPoints,
		EarnedDelta:  finalPoints,
		BaseAmount:   base,
		Multiplier:   multiplier,
		Metadata:     metadata,
		IsReversible: true,
	})
	if err != nil {
		if activity == ActivityDailyLogin {
			s.releaseDailyLogin(ctx, userID)
		}
		return nil, err
	}

	s.fireSideEffects(ctx, userID, activity, finalPoints, balance.TotalEarned)

	return &dto.AwardResult{
		PointsAwarded: finalPoints,
		NewBalance:    balance.Balance,
		Multiplier:    multiplier,
		Tier:          balance.Tier,
		TierProgress:  balance.TierProgress,
		TransactionID: entry.ID,
	}, nil
}

// fireSideEffects runs the post-commit updates. Each is independently
// fallible: a failure is logged and the award stays successful. This is the
// documented fire-and-forget contract, not an accident.
func (s *pointsService) fireSideEffects(ctx context.Context, userID uuid.UUID, activity string, points, totalEarned int64) {
	if s.jackpot != nil {
		if err := s.jackpot.Increment(ctx, activity); err != nil {
			log.Printf("jackpot increment after award failed: %v", err)
		}
		if _, err := s.jackpot.CheckWin(ctx, userID); err != nil {
			log.Printf("jackpot win check after award failed: %v", err)
		}
	}

	if s.achievements != nil {
		if err := s.achievements.TrackActivity(ctx, userID, activity, points); err != nil {
			log.Printf("achievement tracking after award failed: %v", err)
		}
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.RecordActivity(ctx, userID, model.CategoryPoints, points); err != nil {
			log.Printf("leaderboard update after award failed: %v", err)
		}
		if err := s.leaderboard.SyncAllTime(ctx, userID, model.CategoryPoints, totalEarned); err != nil {
			log.Printf("leaderboard all_time sync after award failed: %v", err)
		}
		if category := CategoryForActivity(activity); category != "" {
			if err := s.leaderboard.RecordActivity(ctx, userID, category, points); err != nil {
				log.Printf("leaderboard %s update after award failed: %v", category, err)
			}
		}
	}
}

// dailyLoginKey scopes a user's claim to one local calendar day.
func dailyLoginKey(userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("points:daily_login:%s:%s", userID, now.Format("2006-01-02"))
}

// claimDailyLogin enforces one daily_login award per local day via a redis
// key expiring at the next midnight. Without redis the award is allowed.
func (s *pointsService) claimDailyLogin(ctx context.Context, userID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	ok, err := s.redisClient.SetNX(ctx, dailyLoginKey(userID, now), "1", time.Until(midnight)).Result()
	if err != nil {
		log.Printf("daily login dedup check failed, allowing claim: %v", err)
		return nil
	}
	if !ok {
		return apperror.New(0, "daily login already claimed", apperror.ErrBadRequest)
	}
	return nil
}

// releaseDailyLogin frees the day's claim after a failed award so the user
// can retry instead of losing the day.
func (s *pointsService) releaseDailyLogin(ctx context.Context, userID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, dailyLoginKey(userID, time.Now())).Err(); err != nil {
		log.Printf("daily login claim release failed: %v", err)
	}
}

func (s *pointsService) Deduct(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*dto.DeductResult, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidInput
	}

	metadata, _ := json.Marshal(map[string]string{"reason": reason})
	entry, balance, err := s.repo.ApplyChange(ctx, userID, repository.Change{
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

	return &dto.DeductResult{
		PointsDeducted: amount,
		NewBalance:     balance.Balance,
		TransactionID:  entry.ID,
	}, nil
}

func (s *pointsService) AdminAward(ctx context.Context, userID, adminID uuid.UUID, amount int64, reason string) (*dto.AwardResult, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidInput
	}

	metadata, _ := json.Marshal(map[string]string{"admin_id": adminID.String(), "reason": reason})
	entry, balance, err := s.repo.ApplyChange(ctx, userID, repository.Change{
		Type:         model.TxAdminAward,
		Activity:     "manual_credit",
		Amount:       amount,
		EarnedDelta:  amount,
		BaseAmount:   amount,
		Multiplier:   1,
		Metadata:     metadata,
		IsReversible: true,
	})
	if err != nil {
		return nil, err
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.RecordActivity(ctx, userID, model.CategoryPoints, amount); err != nil {
			log.Printf("leaderboard update after admin award failed: %v", err)
		}
		if err := s.leaderboard.SyncAllTime(ctx, userID, model.CategoryPoints, balance.TotalEarned); err != nil {
			log.Printf("leaderboard all_time sync after admin award failed: %v", err)
		}
	}

	return &dto.AwardResult{
		PointsAwarded: amount,
		NewBalance:    balance.Balance,
		Multiplier:    1,
		Tier:          balance.Tier,
		TierProgress:  balance.TierProgress,
		TransactionID: entry.ID,
	}, nil
}

func (s *pointsService) AdminDeduct(ctx context.Context, userID, adminID uuid.UUID, amount int64, reason string) (*dto.DeductResult, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidInput
	}

	metadata, _ := json.Marshal(map[string]string{"admin_id": adminID.String(), "reason": reason})
	entry, balance, err := s.repo.ApplyChange(ctx, userID, repository.Change{
		Type:         model.TxAdminDeduct,
		Activity:     "manual_debit",
		Amount:       -amount,
		SpentDelta:   amount,
		Multiplier:   1,
		Metadata:     metadata,
		IsReversible: true,
	})
	if err != nil {
		return nil, err
	}

	return &dto.DeductResult{
		PointsDeducted: amount,
		NewBalance:     balance.Balance,
		TransactionID:  entry.ID,
	}, nil
}

func (s *pointsService) Reverse(ctx context.Context, txID, adminID uuid.UUID) (*model.PointsTransaction, error) {
	reversed, err := s.repo.Reverse(ctx, txID, adminID)
	if err != nil {
		return nil, err
	}

	// Reversing an earn shrinks TotalEarned, so the all_time board is
	// re-pinned rather than decremented.
	if s.leaderboard != nil {
		if balance, err := s.repo.GetOrCreateBalance(ctx, reversed.UserID); err == nil {
			if err := s.leaderboard.SyncAllTime(ctx, reversed.UserID, model.CategoryPoints, balance.TotalEarned); err != nil {
				log.Printf("leaderboard all_time sync after reversal failed: %v", err)
			}
		}
	}

	return reversed, nil
}

func (s *pointsService) GetUserPointsInfo(ctx context.Context, userID uuid.UUID) (*dto.PointsInfo, error) {
	balance, err := s.repo.GetOrCreateBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListTransactions(ctx, userID, 20, 0)
	if err != nil {
		return nil, err
	}

	info := &dto.PointsInfo{
		Balance:            balance,
		RecentTransactions: transactions,
	}

	if s.achievements != nil {
		if progress, err := s.achievements.ListUserProgress(ctx, userID); err == nil {
			info.Achievements = progress
		} else {
			log.Printf("achievement snapshot for user %s failed: %v", userID, err)
		}
	}

	return info, nil
}

func (s *pointsService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsTransaction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
