package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"naffles.com/pointsbackend/internal/config"
	"naffles.com/pointsbackend/internal/model"
	jackpotService "naffles.com/pointsbackend/internal/modules/jackpot/service"
	leaderboardService "naffles.com/pointsbackend/internal/modules/leaderboard/service"
)

var rankedBoards = []struct {
	Category string
	Period   string
}{
	{model.CategoryPoints, model.PeriodDaily},
	{model.CategoryPoints, model.PeriodWeekly},
	{model.CategoryPoints, model.PeriodMonthly},
	{model.CategoryPoints, model.PeriodAllTime},
	{model.CategoryGaming, model.PeriodDaily},
	{model.CategoryGaming, model.PeriodWeekly},
	{model.CategoryGaming, model.PeriodMonthly},
	{model.CategoryGaming, model.PeriodAllTime},
	{model.CategoryRaffles, model.PeriodDaily},
	{model.CategoryRaffles, model.PeriodWeekly},
	{model.CategoryRaffles, model.PeriodMonthly},
	{model.CategoryRaffles, model.PeriodAllTime},
}

// Start launches the background jobs: periodic leaderboard rank recomputes,
// hourly jackpot growth and the daily jackpot stats reset. Returns the
// scheduler so the caller can shut it down.
func Start(cfg *config.Config, leaderboard leaderboardService.Service, jackpot jackpotService.Service) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.LeaderboardRecalcEvery),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			for _, board := range rankedBoards {
				if err := leaderboard.RecalculateRanks(ctx, board.Category, board.Period); err != nil {
					log.Printf("[Scheduler] Failed to recalculate %s/%s ranks: %v", board.Category, board.Period, err)
				}
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.JackpotGrowthEvery),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := jackpot.ApplyTimeGrowth(ctx); err != nil {
				log.Printf("[Scheduler] Failed to apply jackpot growth: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	// Midnight: reset the jackpot daily win counter.
	_, err = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := jackpot.ResetDailyStats(ctx); err != nil {
				log.Printf("[Scheduler] Failed to reset jackpot daily stats: %v", err)
			} else {
				log.Println("✅ Jackpot daily stats reset")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Println("⏰ Background scheduler started")
	return sched, nil
}
