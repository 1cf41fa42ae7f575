package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/hirematch/internal/config"
	"github.com/fadilmartias/hirematch/internal/domain/fiber/handler"
	applogger "github.com/fadilmartias/hirematch/internal/logger"
	"github.com/fadilmartias/hirematch/internal/middleware"
	"github.com/fadilmartias/hirematch/internal/model"
	"github.com/fadilmartias/hirematch/internal/repository"
	"github.com/fadilmartias/hirematch/internal/service"
	"github.com/fadilmartias/hirematch/internal/usecase"
	"github.com/fadilmartias/hirematch/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zlog, err := applogger.New(appConfig.Env)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	util.SetDebugResponses(!appConfig.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConfig := config.LoadDBConfig()
	db := ConnectDB(dbConfig.DSN(), appConfig, zlog)
	system := db
	if dbConfig.HasServiceRole() {
		system = ConnectDB(dbConfig.ServiceDSN(), appConfig, zlog)
	}
	if err := repository.AutoMigrate(system); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
	if err := repository.NewQuestionRepository(system).EnsureQuestions(ctx, model.DefaultQuestions); err != nil {
		zlog.Fatal("could not seed questions", zap.Error(err))
	}
	store := repository.NewStore(db)
	systemStore := repository.NewStore(system)

	client, embedder := buildAIClients(ctx, config.LoadAIConfig(), zlog)

	pipeline := config.LoadPipelineConfig()
	retrier := service.NewRetrier(pipeline.MaxAttempts, pipeline.RetryBaseDelay, pipeline.RetryMaxDelay, zlog)
	// background tasks outlive the signal context; shutdown drains them with Wait
	runner := usecase.NewRunner(context.Background(), pipeline, zlog)

	resumeParser := service.NewResumeParser(client, retrier, zlog)
	analyzer := service.NewPersonalityAnalyzer(client, retrier, zlog)
	scorer := service.NewMatchScorer(client, retrier, zlog)

	personalityUC := usecase.NewPersonalityUsecase(store, systemStore, analyzer, runner, zlog)
	resumeUC := usecase.NewResumeUsecase(store, resumeParser, zlog)
	matchUC := usecase.NewMatchUsecase(store, systemStore, scorer, zlog)
	matchQueue := usecase.NewMatchQueue(runner, matchUC, zlog)
	jobUC := usecase.NewJobUsecase(store, matchQueue, embedder, zlog)

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{Code: code, Message: message}, err)
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.Identity())
	app.Use(middleware.RateLimiter(50, time.Minute))

	api := app.Group("/api")
	handler.NewPersonalityHandler(personalityUC).RegisterRoutes(api)
	handler.NewResumeHandler(resumeUC, zlog).RegisterRoutes(api)
	handler.NewMatchHandler(matchUC, matchQueue).RegisterRoutes(api)
	handler.NewJobHandler(jobUC).RegisterRoutes(api)

	go monitorGoroutines(ctx, zlog)

	go func() {
		zlog.Info("server running", zap.String("port", appConfig.Port), zap.String("execution_mode", pipeline.ExecutionMode))
		if err := app.Listen(appConfig.Port); err != nil {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	if deferred, ok := runner.(*usecase.DeferredRunner); ok {
		if err := deferred.Wait(shutdownCtx); err != nil {
			zlog.Warn("background tasks still running at exit", zap.Error(err))
		}
	}
}

// buildAIClients picks the extraction backend. A missing key leaves the
// client nil; the AI endpoints then fail with a configuration error while the
// rest of the API keeps serving.
func buildAIClients(ctx context.Context, aiConfig *config.AIConfig, zlog *zap.Logger) (service.StructuredClient, service.Embedder) {
	var (
		client   service.StructuredClient
		embedder service.Embedder
	)

	gemini, err := service.NewGeminiService(ctx, config.LoadGeminiConfig(), zlog)
	if err != nil {
		zlog.Warn("gemini is not configured", zap.Error(err))
	} else {
		embedder = gemini
	}

	switch aiConfig.Provider {
	case config.ProviderOpenRouter:
		openRouter, err := service.NewOpenRouterService(config.LoadOpenRouterConfig(), zlog)
		if err != nil {
			zlog.Warn("openrouter is not configured", zap.Error(err))
			break
		}
		client = openRouter
	default:
		if gemini != nil {
			client = gemini
		}
	}
	zlog.Info("ai backend selected", zap.String("provider", aiConfig.Provider), zap.Bool("configured", client != nil))
	return client, embedder
}

func ConnectDB(dsn string, appConfig *config.AppConfig, zlog *zap.Logger) *gorm.DB {
	level := gormLogger.Warn
	if appConfig.IsProduction() {
		level = gormLogger.Error
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		zlog.Fatal("could not connect to database", zap.Error(err))
	}
	pgDB, err := db.DB()
	if err != nil {
		zlog.Fatal("could not get database instance", zap.Error(err))
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		zlog.Warn("could not enable pgvector extension", zap.Error(err))
	}
	return db
}

func monitorGoroutines(ctx context.Context, zlog *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			zlog.Debug("active goroutines", zap.Int("count", runtime.NumGoroutine()))
		}
	}
}
