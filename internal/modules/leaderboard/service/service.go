package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/internal/modules/leaderboard/dto"
	leaderboardRepo "naffles.com/pointsbackend/internal/modules/leaderboard/repository"
	userRepo "naffles.com/pointsbackend/internal/modules/user/repository"
)

const cacheTTL = 30 * time.Second

// periods every activity delta fans out to.
var activityPeriods = []string{model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly, model.PeriodAllTime}

type Service interface {
	// RecordActivity accumulates the delta into the user's entry for every
	// period of the category's boards.
	RecordActivity(ctx context.Context, userID uuid.UUID, category string, delta int64) error

	// SyncAllTime pins the category's all_time entry to the given lifetime
	// value. The points board calls this after every balance change so
	// reversals and admin debits are reflected, not just increments.
	SyncAllTime(ctx context.Context, userID uuid.UUID, category string, value int64) error

	// RecalculateRanks rewrites every rank of one board from a full
	// sort-by-value pass, preserving the previous rank for the change flag.
	RecalculateRanks(ctx context.Context, category, period string) error

	GetLeaderboard(ctx context.Context, category, period string, limit int) (*dto.Leaderboard, error)
	GetUserStanding(ctx context.Context, userID uuid.UUID, category, period string) (*model.LeaderboardEntry, error)
}

type leaderboardService struct {
	repo        leaderboardRepo.Repository
	users       userRepo.UserRepository
	redisClient *redis.Client
}

func NewLeaderboardService(repo leaderboardRepo.Repository, users userRepo.UserRepository, redisClient *redis.Client) Service {
	return &leaderboardService{
		repo:        repo,
		users:       users,
		redisClient: redisClient,
	}
}

func (s *leaderboardService) RecordActivity(ctx context.Context, userID uuid.UUID, category string, delta int64) error {
	now := time.Now()

	for _, period := range activityPeriods {
		start, end := PeriodBounds(period, now)
		entry := &model.LeaderboardEntry{
			UserID:      userID,
			Category:    category,
			Period:      period,
			PeriodStart: start,
			PeriodEnd:   end,
			Change:      model.ChangeNew,
		}
		if err := s.repo.UpsertIncrement(ctx, entry, delta); err != nil {
			return fmt.Errorf("leaderboard %s/%s upsert: %w", category, period, err)
		}
	}
	return nil
}

func (s *leaderboardService) SyncAllTime(ctx context.Context, userID uuid.UUID, category string, value int64) error {
	start, end := PeriodBounds(model.PeriodAllTime, time.Now())
	entry := &model.LeaderboardEntry{
		UserID:      userID,
		Category:    category,
		Period:      model.PeriodAllTime,
		PeriodStart: start,
		PeriodEnd:   end,
		Change:      model.ChangeNew,
	}
	return s.repo.UpsertOverwrite(ctx, entry, value)
}

func (s *leaderboardService) RecalculateRanks(ctx context.Context, category, period string) error {
	start, _ := PeriodBounds(period, time.Now())

	entries, err := s.repo.ListForRecalc(ctx, category, period, start)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	for i := range entries {
		e := &entries[i]
		newRank := i + 1
		e.PreviousRank = e.Rank
		e.Change = RankChange(e.Rank, newRank)
		e.Rank = newRank
	}

	if err := s.repo.SaveRanks(ctx, entries); err != nil {
		return err
	}

	s.invalidateCache(ctx, category, period)
	return nil
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, category, period string, limit int) (*dto.Leaderboard, error) {
	if cached := s.cachedBoard(ctx, category, period, limit); cached != nil {
		return cached, nil
	}

	start, _ := PeriodBounds(period, time.Now())
	entries, err := s.repo.GetTop(ctx, category, period, start, limit)
	if err != nil {
		return nil, err
	}

	board := &dto.Leaderboard{
		Category: category,
		Period:   period,
		Entries:  make([]dto.Entry, 0, len(entries)),
	}
	for i, e := range entries {
		row := dto.Entry{
			Position:     i + 1,
			UserID:       e.UserID,
			Value:        e.Value,
			Rank:         e.Rank,
			PreviousRank: e.PreviousRank,
			Change:       e.Change,
		}
		if user, err := s.users.FindByID(ctx, e.UserID.String()); err == nil {
			row.Username = user.Username
		}
		board.Entries = append(board.Entries, row)
	}

	s.cacheBoard(ctx, category, period, limit, board)
	return board, nil
}

func (s *leaderboardService) GetUserStanding(ctx context.Context, userID uuid.UUID, category, period string) (*model.LeaderboardEntry, error) {
	start, _ := PeriodBounds(period, time.Now())
	return s.repo.GetUserEntry(ctx, userID, category, period, start)
}

func cacheKey(category, period string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%s:%d", category, period, limit)
}

func (s *leaderboardService) cachedBoard(ctx context.Context, category, period string, limit int) *dto.Leaderboard {
	if s.redisClient == nil {
		return nil
	}

	raw, err := s.redisClient.Get(ctx, cacheKey(category, period, limit)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("leaderboard cache read: %v", err)
		}
		return nil
	}

	var board dto.Leaderboard
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		return nil
	}
	return &board
}

func (s *leaderboardService) cacheBoard(ctx context.Context, category, period string, limit int, board *dto.Leaderboard) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(board)
	if err != nil {
		return
	}
	s.redisClient.SetEx(ctx, cacheKey(category, period, limit), payload, cacheTTL)
}

func (s *leaderboardService) invalidateCache(ctx context.Context, category, period string) {
	if s.redisClient == nil {
		return
	}

	iter := s.redisClient.Scan(ctx, 0, fmt.Sprintf("leaderboard:%s:%s:*", category, period), 50).Iterator()
	for iter.Next(ctx) {
		s.redisClient.Del(ctx, iter.Val())
	}
}
