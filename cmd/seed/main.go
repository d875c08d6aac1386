package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/config"
	"github.com/yonasbekele/serenity-backend/pkg/db"
	"github.com/yonasbekele/serenity-backend/pkg/db/models"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
	"github.com/yonasbekele/serenity-backend/pkg/security"
)

// Seeds the loyalty tiers and, optionally, a demo member for local
// development. Tier seeding is idempotent; rerunning leaves existing rows
// untouched.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	demoEmail := flag.String("demo-email", "", "create a demo member with this email")
	demoPassword := flag.String("demo-password", "", "password for the demo member")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := seedTiers(ctx, dbClient.DB()); err != nil {
		logg.Error(ctx, "failed to seed tiers", err)
		os.Exit(1)
	}
	logg.Info(ctx, "loyalty tiers seeded")

	if *demoEmail != "" {
		if *demoPassword == "" {
			logg.Error(ctx, "demo member requires a password", errors.New("missing -demo-password"))
			os.Exit(1)
		}
		if err := seedDemoMember(ctx, dbClient.DB(), cfg.Password, *demoEmail, *demoPassword); err != nil {
			logg.Error(ctx, "failed to seed demo member", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "email", *demoEmail), "demo member seeded")
	}
}

func seedTiers(ctx context.Context, gdb *gorm.DB) error {
	tiers := []models.Tier{
		{Name: "Lakeside", MinPoints: 0, Perks: "welcome drink"},
		{Name: "Silver", MinPoints: 500, Perks: "late checkout, 5% dining discount"},
		{Name: "Gold", MinPoints: 2000, Perks: "room upgrades, 10% dining discount"},
		{Name: "Platinum", MinPoints: 5000, Perks: "suite upgrades, free airport pickup"},
	}
	for i := range tiers {
		var existing models.Tier
		err := gdb.WithContext(ctx).Where("name = ?", tiers[i].Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := gdb.WithContext(ctx).Create(&tiers[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedDemoMember(ctx context.Context, gdb *gorm.DB, passwordCfg config.PasswordConfig, email, password string) error {
	var existing models.User
	err := gdb.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := security.HashPassword(password, passwordCfg)
	if err != nil {
		return err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Demo",
		LastName:     "Member",
		Points:       0,
		TotalSpent:   decimal.Zero,
		IsActive:     true,
	}
	return gdb.WithContext(ctx).Create(&user).Error
}
