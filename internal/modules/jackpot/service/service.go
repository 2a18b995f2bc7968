package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"naffles.com/pointsbackend/internal/model"
	jackpotRepo "naffles.com/pointsbackend/internal/modules/jackpot/repository"
	pointsRepo "naffles.com/pointsbackend/internal/modules/points/repository"
)

const (
	// JackpotChannel carries the live pot amount for websocket subscribers.
	JackpotChannel = "jackpot:updates"

	lockKey = "lock:jackpot"
	lockTTL = 5 * time.Second
)

// increments maps a qualifying activity to the amount it grows the pot by.
// Activities missing from the map do not feed the jackpot.
var increments = map[string]int64{
	"gaming_blackjack":           2,
	"gaming_coinflip":            2,
	"gaming_rock_paper_scissors": 2,
	"raffle_ticket_purchase":     5,
	"raffle_create":              10,
	"token_staking":              20,
}

type WinResult struct {
	Won    bool  `json:"won"`
	Amount int64 `json:"amount,omitempty"`
}

type Service interface {
	Get(ctx context.Context) (*model.PointsJackpot, error)

	// Increment grows the pot for a qualifying activity, folding in the
	// time-based growth accrued since the last check.
	Increment(ctx context.Context, activity string) error

	// CheckWin runs the probabilistic draw for a user who just performed a
	// qualifying activity. On a win the whole pot is credited to the user
	// as a jackpot transaction and the pot resets to its base amount.
	CheckWin(ctx context.Context, userID uuid.UUID) (*WinResult, error)

	// ApplyTimeGrowth and ResetDailyStats are scheduler entry points.
	ApplyTimeGrowth(ctx context.Context) error
	ResetDailyStats(ctx context.Context) error
}

type jackpotService struct {
	repo        jackpotRepo.Repository
	points      pointsRepo.Repository
	redisClient *redis.Client
	draw        func() float64
}

func NewJackpotService(repo jackpotRepo.Repository, points pointsRepo.Repository, redisClient *redis.Client) Service {
	return &jackpotService{
		repo:        repo,
		points:      points,
		redisClient: redisClient,
		draw:        rand.Float64,
	}
}

func (s *jackpotService) Get(ctx context.Context) (*model.PointsJackpot, error) {
	return s.repo.GetActive(ctx)
}

func (s *jackpotService) Increment(ctx context.Context, activity string) error {
	delta, qualifies := increments[activity]
	if !qualifies {
		return nil
	}

	unlock := s.acquireLock(ctx)
	defer unlock()

	jackpot, err := s.repo.GetActive(ctx)
	if err != nil {
		return err
	}
	if !jackpot.IsActive {
		return nil
	}

	delta += timeGrowth(jackpot, time.Now())

	newAmount, err := s.repo.Grow(ctx, jackpot.ID, delta, time.Now())
	if err != nil {
		return err
	}

	s.publishAmount(ctx, newAmount)
	return nil
}

func (s *jackpotService) CheckWin(ctx context.Context, userID uuid.UUID) (*WinResult, error) {
	jackpot, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	var userBalance int64
	if balance, err := s.points.GetBalance(ctx, userID); err == nil {
		userBalance = balance.Balance
	}

	if !Eligible(jackpot, userBalance, userID, time.Now()) {
		return &WinResult{Won: false}, nil
	}

	if s.draw() >= jackpot.WinProbability {
		return &WinResult{Won: false}, nil
	}

	unlock := s.acquireLock(ctx)
	defer unlock()

	won, err := s.repo.RecordWin(ctx, jackpot.ID, userID)
	if err != nil {
		return nil, err
	}
	if won == 0 {
		// Another win took the last daily slot between the draw and
		// the row lock.
		return &WinResult{Won: false}, nil
	}

	meta, _ := json.Marshal(map[string]string{"jackpot_id": jackpot.ID.String()})
	_, _, err = s.points.ApplyChange(ctx, userID, pointsRepo.Change{
		Type:        model.TxJackpot,
		Activity:    "jackpot_win",
		Amount:      won,
		EarnedDelta: won,
		Multiplier:  1,
		Metadata:    meta,
	})
	if err != nil {
		// The pot already reset; the credit failing here leaves an
		// auditable gap in the ledger, so make it loud.
		log.Printf("❌ Jackpot win of %d for user %s could not be credited: %v", won, userID, err)
		return nil, err
	}

	log.Printf("🎰 Jackpot won: user=%s amount=%d", userID, won)
	s.publishAmount(ctx, jackpot.BaseAmount)

	return &WinResult{Won: true, Amount: won}, nil
}

func (s *jackpotService) ApplyTimeGrowth(ctx context.Context) error {
	unlock := s.acquireLock(ctx)
	defer unlock()

	jackpot, err := s.repo.GetActive(ctx)
	if err != nil {
		return err
	}

	delta := timeGrowth(jackpot, time.Now())
	if delta == 0 {
		return nil
	}

	newAmount, err := s.repo.Grow(ctx, jackpot.ID, delta, time.Now())
	if err != nil {
		return err
	}

	s.publishAmount(ctx, newAmount)
	return nil
}

func (s *jackpotService) ResetDailyStats(ctx context.Context) error {
	jackpot, err := s.repo.GetActive(ctx)
	if err != nil {
		return err
	}
	return s.repo.ResetDailyStats(ctx, jackpot.ID)
}

// Eligible applies the win gates that precede the random draw: pot active,
// minimum balance held, daily win cap not reached, and a cooldown window for
// the previous winner.
func Eligible(j *model.PointsJackpot, userBalance int64, userID uuid.UUID, now time.Time) bool {
	if !j.IsActive {
		return false
	}
	if userBalance < j.MinBalanceToWin {
		return false
	}
	if j.DailyWins >= j.MaxDailyWins {
		return false
	}
	if j.LastWinnerID != nil && *j.LastWinnerID == userID && j.LastWinDate != nil {
		cooldown := time.Duration(j.CooldownHours) * time.Hour
		if now.Sub(*j.LastWinDate) < cooldown {
			return false
		}
	}
	return true
}

// timeGrowth returns the accrued hourly growth: HourlyGrowth for every full
// hour elapsed since the last increment.
func timeGrowth(j *model.PointsJackpot, now time.Time) int64 {
	if j.LastIncrementAt.IsZero() || j.HourlyGrowth == 0 {
		return 0
	}
	hours := int64(now.Sub(j.LastIncrementAt).Hours())
	if hours <= 0 {
		return 0
	}
	return hours * j.HourlyGrowth
}

// acquireLock serializes jackpot mutations across instances. Without redis
// the row lock in the repository still protects a single instance.
func (s *jackpotService) acquireLock(ctx context.Context) func() {
	if s.redisClient == nil {
		return func() {}
	}

	for i := 0; i < 10; i++ {
		ok, err := s.redisClient.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil {
			log.Printf("jackpot lock error: %v", err)
			return func() {}
		}
		if ok {
			return func() { s.redisClient.Del(ctx, lockKey) }
		}
		time.Sleep(50 * time.Millisecond)
	}

	log.Printf("jackpot lock not acquired, proceeding with row lock only")
	return func() {}
}

func (s *jackpotService) publishAmount(ctx context.Context, amount int64) {
	if s.redisClient == nil {
		return
	}
	payload := fmt.Sprintf(`{"current_amount":%d}`, amount)
	s.redisClient.Publish(ctx, JackpotChannel, payload)
}
