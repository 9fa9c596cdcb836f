package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"sqlmentor/config"
	"sqlmentor/database"
	"sqlmentor/internal/controller"
	"sqlmentor/internal/gateway"
	"sqlmentor/internal/logger"
	"sqlmentor/internal/model"
	"sqlmentor/internal/notifier"
	"sqlmentor/internal/service"
)

func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			gateway.New,
			notifier.New,
			NewGinEngine,
		),

		// Services Layer
		fx.Provide(
			service.NewGraderService,
			service.NewScoringService,
			service.NewStreakService,
			service.NewAchievementService,
			service.NewCoachService,
			service.NewSessionService,
			service.NewChallengeService,
			service.NewStatsService,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewPracticeController,
			controller.NewChallengeController,
			controller.NewStatsController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartChallengeScheduler),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	practiceCtrl *controller.PracticeController,
	challengeCtrl *controller.ChallengeController,
	statsCtrl *controller.StatsController,
) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		practice := apiV1.Group("/practice")
		practice.POST("/issue", practiceCtrl.IssueQuestion)
		practice.POST("/submit", practiceCtrl.SubmitAnswer)
		practice.POST("/skip", practiceCtrl.SkipQuestion)

		challenge := apiV1.Group("/challenge")
		challenge.GET("", challengeCtrl.GetActiveChallenge)
		challenge.POST("/submit", challengeCtrl.SubmitChallengeAnswer)

		stats := apiV1.Group("/stats")
		stats.GET("/scores/:user_id", statsCtrl.GetScores)
		stats.GET("/top10", statsCtrl.GetTopTotals)
		stats.GET("/weekly-heroes", statsCtrl.GetWeeklyHeroes)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("SQL mentor API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// StartChallengeScheduler drives the daily challenge lifecycle off a
// one-minute ticker. Both ticks are idempotent, so the scheduler only has to
// decide which side of the window the reference-timezone clock is on; a
// restart mid-window resumes where the open row says it should.
func StartChallengeScheduler(lc fx.Lifecycle, cfg *config.Config, challenges service.ChallengeService) error {
	openHour, openMinute, err := parseClock(cfg.Challenge.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid CHALLENGE_OPEN_TIME %q: %w", cfg.Challenge.OpenTime, err)
	}
	loc := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	tick := func() {
		now := time.Now().In(loc)
		opensAt := time.Date(now.Year(), now.Month(), now.Day(), openHour, openMinute, 0, 0, loc)
		closesAt := opensAt.Add(cfg.Challenge.Duration)

		var err error
		if !now.Before(opensAt) && now.Before(closesAt) {
			err = challenges.OpenTick(ctx)
		} else {
			err = challenges.CloseTick(ctx)
		}
		if err != nil {
			log.Error().Err(err).Msg("Challenge scheduler tick failed")
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				tick()
				for {
					select {
					case <-ticker.C:
						tick()
					case <-ctx.Done():
						return
					}
				}
			}()
			log.Info().Str("openTime", cfg.Challenge.OpenTime).
				Dur("duration", cfg.Challenge.Duration).Msg("Challenge scheduler started")
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
	return nil
}

func parseClock(value string) (hour, minute int, err error) {
	if _, err = fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, err
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock out of range")
	}
	return hour, minute, nil
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Question{},
		&model.Submission{},
		&model.Streak{},
		&model.Challenge{},
		&model.ChallengeSubmission{},
		&model.LeaderboardEntry{},
		&model.DailyPoints{},
		&model.WeeklyPoints{},
		&model.Achievement{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
