package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"personabot/internal/catalog"
	"personabot/internal/config"
	"personabot/internal/db"
	apihttp "personabot/internal/http"
	"personabot/internal/llm"
	"personabot/internal/repository"
	"personabot/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	bank, err := catalog.LoadQuestionBank(cfg.QuestionsPath)
	if err != nil {
		logger.Fatal("load question bank", zap.Error(err))
	}
	profiles, err := catalog.LoadProfileCatalog(cfg.ProfilesPath)
	if err != nil {
		logger.Fatal("load profile catalog", zap.Error(err))
	}
	logger.Info("assessment data loaded",
		zap.Int("questions", bank.TotalCount()),
		zap.String("questions_path", cfg.QuestionsPath),
		zap.String("profiles_path", cfg.ProfilesPath),
	)

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	sessionRepo := repository.NewPgSessionRepository(pool)
	resultRepo := repository.NewPgResultRepository(pool)
	prayerRepo := repository.NewPgPrayerRepository(pool)

	startWindow := time.Duration(cfg.StartRateWindowMinutes) * time.Minute
	var limiter service.StartRateLimiter = service.NewStartRateLimiter(startWindow, cfg.StartRateMax)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limiter", zap.Error(err))
		} else {
			limiter = service.NewRedisStartRateLimiter(redisClient, startWindow, cfg.StartRateMax)
		}
		cancel()
	}

	var llmClient llm.Client = llm.NewDisabledClient("LLM_API_KEY not configured")
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger.Sugar())
	} else {
		logger.Warn("llm api key not configured, prayer extraction disabled")
	}

	location, err := time.LoadLocation(cfg.PrayerTimezone)
	if err != nil {
		logger.Fatal("parse prayer timezone", zap.Error(err))
	}

	assessmentSvc := service.NewAssessmentService(logger, sessionRepo, bank, limiter)
	resultsSvc := service.NewResultsService(logger, bank, profiles)
	prayerSvc := service.NewPrayerService(logger, llmClient, prayerRepo, location)
	engagementSvc := service.NewEngagementService(logger, llmClient)
	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.MentorKey, time.Duration(cfg.MentorTokenTTLHours)*time.Hour)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, mentor routes unavailable")
	}

	assessmentHandler := apihttp.NewAssessmentHandler(logger, assessmentSvc, resultsSvc, resultRepo)
	prayerHandler := apihttp.NewPrayerHandler(logger, prayerSvc, engagementSvc)
	authHandler := apihttp.NewAuthHandler(logger, jwtSvc)
	router := apihttp.NewRouter(logger, assessmentHandler, prayerHandler, authHandler, jwtSvc)

	go sweepAbandonedSessions(ctx, logger, sessionRepo,
		time.Duration(cfg.SessionExpiryHours)*time.Hour,
		time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// sweepAbandonedSessions periodically removes non-completed sessions older
// than the expiry. The state machine never expires sessions itself; that
// policy belongs to this surrounding scheduler.
func sweepAbandonedSessions(ctx context.Context, logger *zap.Logger, sessions repository.SessionRepository, expiry, interval time.Duration) {
	if expiry <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-expiry)
			removed, err := sessions.DeleteAbandoned(ctx, cutoff)
			if err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("abandoned sessions removed", zap.Int64("count", removed))
			}
		}
	}
}
