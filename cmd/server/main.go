package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/config"
	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/server"
	"peerlearn.app/server/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if _, err := log.Init(!cfg.IsDevelopment()); err != nil {
		panic(err)
	}
	defer log.Sync()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.L().Fatal("migration failed", zap.Error(err))
	}

	if cfg.IsDevelopment() {
		if err := seedDemoAccount(db); err != nil {
			log.L().Fatal("failed to seed demo account", zap.Error(err))
		}
	}

	redisClient := newRedisClient(cfg.RedisURL)

	srv := server.NewServer(cfg, db, redisClient)

	log.L().Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.L().Fatal("server exited with error", zap.Error(err))
	}
}

func newRedisClient(redisURL string) *redis.Client {
	opts := &redis.Options{Addr: "localhost:6379"}
	if redisURL != "" {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			log.L().Fatal("invalid REDIS_URL", zap.Error(err))
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.L().Warn("redis unreachable at startup", zap.Error(err))
	}

	return client
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Account{},
		&model.EmailToken{},
		&model.Profile{},
		&model.StudyRoom{},
		&model.Note{},
		&model.Connection{},
		&model.Notification{},
	)
}

func seedDemoAccount(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Account{}).
		Where("email = ?", "demo@peerlearn.app").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.L().Info("demo account already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := model.Account{
		Email:         "demo@peerlearn.app",
		PasswordHash:  string(hashedPasswordBytes),
		FullName:      "Demo Student",
		EmailVerified: true,
	}
	if err := db.Create(&account).Error; err != nil {
		return err
	}

	year := 2
	profile := model.Profile{
		AccountID:   account.ID,
		Email:       account.Email,
		FullName:    account.FullName,
		College:     stringPtr("Demo College"),
		University:  stringPtr("Demo University"),
		Course:      stringPtr("Computer Science"),
		YearOfStudy: &year,
	}
	if err := db.Create(&profile).Error; err != nil {
		return err
	}

	log.L().Info("demo account seeded",
		zap.String("email", "demo@peerlearn.app"),
		zap.String("password", "demo1234"))

	return nil
}

func stringPtr(s string) *string {
	return &s
}
