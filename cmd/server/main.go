package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"naffles.com/pointsbackend/internal/bootstrap"
	"naffles.com/pointsbackend/internal/config"
	"naffles.com/pointsbackend/internal/scheduler"
	"naffles.com/pointsbackend/internal/server"
	"naffles.com/pointsbackend/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := bootstrap.SeedJackpot(db); err != nil {
		log.Fatalf("failed to seed jackpot: %v", err)
	}
	if err := bootstrap.SeedAchievements(db); err != nil {
		log.Fatalf("failed to seed achievements: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}
	if err := bootstrap.SeedNafflesCommunity(db); err != nil {
		// The platform community needs the admin user as creator; outside of
		// development it is expected to be provisioned manually.
		log.Printf("skipping platform community seed: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opt)
	} else {
		log.Println("REDIS_URL not set, running without redis (no caching, locks or live updates)")
	}

	srv := server.NewServer(db, redisClient)

	sched, err := scheduler.Start(cfg, srv.Leaderboard, srv.Jackpot)
	if err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
	}()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
