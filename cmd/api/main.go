package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/config"
	"github.com/noah-isme/lynx-api/internal/database"
	"github.com/noah-isme/lynx-api/internal/document"
	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/handler"
	"github.com/noah-isme/lynx-api/internal/middleware"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/internal/resolver"
	"github.com/noah-isme/lynx-api/internal/router"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/pkg/ai"
	cloud "github.com/noah-isme/lynx-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	loc, err := resolver.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, live updates use redis only")
		} else {
			defer natsConn.Drain()
		}
	}

	var storage service.FileStorage
	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cloudinary disabled, uploads will fail")
	} else {
		storage = uploader
	}

	decoder, err := document.NewDecoder(loc, logger)
	if err != nil {
		log.Fatalf("failed to build assignment decoder: %v", err)
	}

	res := resolver.New(resolver.Options{
		Policy:   cfg.DuplicatePolicy,
		Location: loc,
		Limits: resolver.Limits{
			OnGoing:   cfg.BoardLimitOnGoing,
			Submitted: cfg.BoardLimitSubmitted,
			Graded:    cfg.BoardLimitGraded,
		},
		Logger: logger,
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	chatRepo := repository.NewChatRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	analyzer, relay := buildAIProvider(cfg, logger)

	boardService := service.NewAssignmentBoardService(classRepo, assignmentRepo, submissionRepo, decoder, res, logger)
	liveService := service.NewLiveService(boardService, redisClient, cfg.RealtimeChannel, natsConn, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, classRepo, validate, logger)
	dashboardService := service.NewStudentDashboardService(classRepo, announcementService, boardService, redisClient, cfg.DashboardCacheTTL, loc, logger)
	uploadService := service.NewUploadService(storage, uploadRepo, cfg.SubmissionMaxMB, logger)
	submissionService := service.NewSubmissionService(submissionRepo, boardService, uploadService, liveService, validate, logger)
	gradingService := service.NewGradingService(submissionRepo, classRepo, liveService, validate, logger)
	gradesService := service.NewGradesService(boardService, loc, logger)
	classService := service.NewClassService(classRepo, submissionRepo, announcementService, liveService, validate, logger)
	profileService := service.NewProfileService(userRepo, logger)
	analysisService := service.NewAnalysisService(analyzer, userRepo, redisClient, cfg.AnalysisCacheTTL, cfg.AIRequestTimeout, logger)
	chatService := service.NewChatService(chatRepo, relay, cfg.ChatFileMaxMB, cfg.AIRequestTimeout, logger)

	// Any board change makes the cached dashboards of that student stale.
	liveService.AddListener(func(ctx context.Context, event dto.LiveEvent) {
		dashboardService.Invalidate(ctx, event.StudentID)
	})

	liveCtx, stopLive := context.WithCancel(context.Background())
	defer stopLive()
	liveService.Start(liveCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.SubmissionMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, gradesService, validate, logger),
		AssignmentHandler:       handler.NewAssignmentHandler(boardService, validate, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		ClassHandler:            handler.NewClassHandler(classService, logger),
		AnnouncementHandler:     handler.NewAnnouncementHandler(announcementService, logger),
		GradingHandler:          handler.NewGradingHandler(gradingService, validate, logger),
		UploadHandler:           handler.NewUploadHandler(uploadService, logger),
		ProfileHandler:          handler.NewProfileHandler(profileService, logger),
		AnalysisHandler:         handler.NewAnalysisHandler(analysisService, logger),
		ChatHandler:             handler.NewChatHandler(chatService, validate, logger),
		LiveHandler:             handler.NewLiveHandler(liveService, logger),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildAIProvider returns nil interfaces when the provider cannot be built, which
// degrades analysis and chat instead of refusing to boot.
func buildAIProvider(cfg config.Config, logger zerolog.Logger) (ai.Analyzer, ai.ChatRelay) {
	switch cfg.AIProvider {
	case "openai":
		provider, err := ai.NewOpenAIProvider(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("openai provider disabled")
			return nil, nil
		}
		return provider, provider
	default:
		client, err := ai.NewLynxClient(ai.LynxConfig{
			BaseURL: cfg.LynxAPIURL,
			Timeout: cfg.AIRequestTimeout,
			Logger:  logger,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("lynx ai client disabled")
			return nil, nil
		}
		return client, client
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
