package bootstrap

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"naffles.com/pointsbackend/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.PartnerToken{},
		&model.PointsBalance{},
		&model.PointsTransaction{},
		&model.PointsJackpot{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.LeaderboardEntry{},
		&model.Community{},
		&model.CommunityMember{},
		&model.CommunityPointsBalance{},
		&model.CommunityPointsTransaction{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{Name: "admin", Description: "Platform administrator"},
		{Name: "user", Description: "Regular user"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole model.Role
	if err := db.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@naffles.com").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Username:     "admin",
		Email:        "admin@naffles.com",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@naffles.com")
	log.Println("   Password: admin123")

	return nil
}

// SeedJackpot creates the singleton pot row with its default parameters.
func SeedJackpot(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.PointsJackpot{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	jackpot := model.PointsJackpot{
		CurrentAmount:   1000,
		BaseAmount:      1000,
		HourlyGrowth:    50,
		WinProbability:  0.001,
		MinBalanceToWin: 100,
		CooldownHours:   24,
		MaxDailyWins:    3,
		DailyResetAt:    now,
		LastIncrementAt: now,
		IsActive:        true,
	}
	if err := db.Create(&jackpot).Error; err != nil {
		return err
	}

	log.Println("✅ Jackpot seeded with base amount 1000")
	return nil
}

// SeedNafflesCommunity creates the platform community. It is the only
// community with the jackpot and system-wide earning enabled.
func SeedNafflesCommunity(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Community{}).
		Where("slug = ?", model.NafflesSlug).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var admin model.User
	if err := db.Where("email = ?", "admin@naffles.com").First(&admin).Error; err != nil {
		return err
	}

	community := model.Community{
		Name:        "Naffles",
		Slug:        model.NafflesSlug,
		Description: "The official Naffles community.",
		CreatorID:   admin.ID,
		PointsName:  "points",
		IsNaffles:   true,
		Features: model.CommunityFeatures{
			EnableJackpot:           true,
			EnableSystemWideEarning: true,
		},
	}
	if err := db.Create(&community).Error; err != nil {
		return err
	}

	member := model.CommunityMember{
		CommunityID: community.ID,
		UserID:      admin.ID,
		Role:        "creator",
	}
	if err := db.Create(&member).Error; err != nil {
		return err
	}
	if err := db.Model(&community).Update("member_count", 1).Error; err != nil {
		return err
	}

	log.Println("✅ Naffles community seeded")
	return nil
}

// SeedAchievements installs the starter achievement set. Existing rows are
// left untouched so operators can tune thresholds in place.
func SeedAchievements(db *gorm.DB) error {
	starters := []model.Achievement{
		{
			Name:           "First Steps",
			Description:    "Earn your first 100 points",
			Category:       "points",
			Type:           model.AchievementAmount,
			RequirementKey: "points_earned",
			Threshold:      100,
			RewardPoints:   50,
		},
		{
			Name:           "High Roller",
			Description:    "Play 100 games",
			Category:       "gaming",
			Type:           model.AchievementCount,
			RequirementKey: "games_played",
			Threshold:      100,
			RewardPoints:   500,
		},
		{
			Name:           "Ticket Collector",
			Description:    "Buy 50 raffle tickets",
			Category:       "raffles",
			Type:           model.AchievementCount,
			RequirementKey: "tickets_purchased",
			Threshold:      50,
			RewardPoints:   250,
		},
		{
			Name:           "Dedicated",
			Description:    "Log in 7 days in a row",
			Category:       "engagement",
			Type:           model.AchievementStreak,
			RequirementKey: "login_days",
			Threshold:      7,
			RewardPoints:   100,
			IsRepeatable:   true,
		},
	}

	for _, achievement := range starters {
		achievement.RewardMultiplier = 1
		achievement.IsActive = true

		var count int64
		if err := db.Model(&model.Achievement{}).
			Where("name = ?", achievement.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		if err := db.Create(&achievement).Error; err != nil {
			return err
		}
	}

	return nil
}
