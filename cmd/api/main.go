// @title Quizzmaster API
// @version 1.0
// @description Backend API for the Quizzmaster exam preparation platform.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/internal/adapter"
	"github.com/fariyalkhan17/Quizzmaster/internal/cache"
	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/database"
	"github.com/fariyalkhan17/Quizzmaster/internal/handler"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/middleware"
	"github.com/fariyalkhan17/Quizzmaster/internal/repository"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	_ "github.com/fariyalkhan17/Quizzmaster/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("requestID", c.GetRespHeader(fiber.HeaderXRequestID)),
		}
		if userID, ok := c.Locals(middleware.UserIDKey).(string); ok && userID != "" {
			fields = append(fields, zap.String("userID", userID))
		}
		logger.Get().Info("HTTP Request", fields...)
		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to Oracle database")

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Connected to Redis")

	userRepo := repository.NewUserDatabaseAdapter(db)
	subjectRepo := repository.NewSubjectDatabaseAdapter(db)
	quizRepo := repository.NewQuizDatabaseAdapter(db)
	attemptRepo := repository.NewAttemptDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	authService, err := service.NewAuthService(userRepo, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	treeTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTL.SubjectTree, 10*time.Minute)
	quizMetaTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTL.QuizMeta, time.Minute)
	catalogService := service.NewCatalogService(subjectRepo, cacheAdapter, treeTTL)
	quizService := service.NewQuizService(quizRepo, txManager, cacheAdapter, quizMetaTTL)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, txManager, cfg.Attempt.SubmitGrace)
	userService := service.NewUserService(userRepo, attemptRepo)
	adminService := service.NewAdminService(userRepo, subjectRepo, quizRepo, attemptRepo)

	authHandler := handler.NewAuthHandler(authService, cfg)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	quizHandler := handler.NewQuizHandler(quizService)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	userHandler := handler.NewUserHandler(userService)
	adminHandler := handler.NewAdminHandler(adminService)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    1024 * 1024,
	})

	app.Use(requestid.New())
	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)
	// Always mounted; the handlers answer 503 while OAuth is unconfigured.
	authGroup.Get("/google/login", authHandler.GoogleLogin)
	authGroup.Get("/google/callback", authHandler.GoogleCallback)
	if authService.GoogleEnabled() {
		appLogger.Info("Google OAuth login enabled")
	}

	validate := middleware.NewValidationMiddleware()
	checkID := validate.ValidateIDParam("id")

	// Public catalog browsing. Anonymous access is fine; a valid token still
	// puts the caller's identity into the request log.
	maybeAuth := middleware.OptionalAuth(authService)
	api.Get("/subjects", maybeAuth, catalogHandler.GetSubjectTree)
	api.Get("/subjects/:id", maybeAuth, checkID, catalogHandler.GetSubject)
	api.Get("/chapters/:id/quizzes", maybeAuth, checkID, quizHandler.ListChapterQuizzes)
	api.Get("/quizzes", maybeAuth, quizHandler.ListQuizzes)
	api.Get("/quizzes/:id", maybeAuth, checkID, quizHandler.GetQuiz)

	// Quiz taking.
	api.Post("/quizzes/:id/attempts", middleware.Protected(authService), checkID, attemptHandler.StartAttempt)
	api.Get("/attempts/:id", middleware.Protected(authService), checkID, attemptHandler.GetAttempt)
	api.Post("/attempts/:id/submit", middleware.Protected(authService), checkID, attemptHandler.SubmitAttempt)

	userGroup := api.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me", userHandler.GetProfile)
	userGroup.Put("/me", userHandler.UpdateProfile)
	userGroup.Get("/me/scores", userHandler.GetMyScores)
	userGroup.Get("/me/scores/export", userHandler.ExportMyScoresCSV)
	userGroup.Get("/me/summary", userHandler.GetMySummary)

	adminGroup := api.Group("/admin", middleware.Protected(authService), middleware.AdminOnly())
	adminGroup.Get("/summary", adminHandler.GetSummary)
	adminGroup.Get("/search", adminHandler.Search)
	adminGroup.Get("/users", userHandler.ListUsers)

	adminGroup.Post("/subjects", catalogHandler.CreateSubject)
	adminGroup.Put("/subjects/:id", catalogHandler.UpdateSubject)
	adminGroup.Delete("/subjects/:id", catalogHandler.DeleteSubject)
	adminGroup.Post("/subjects/:id/chapters", catalogHandler.CreateChapter)
	adminGroup.Put("/chapters/:id", catalogHandler.UpdateChapter)
	adminGroup.Delete("/chapters/:id", catalogHandler.DeleteChapter)

	adminGroup.Get("/quizzes", quizHandler.ListAllQuizzes)
	adminGroup.Get("/quizzes/:id", quizHandler.GetQuizAdmin)
	adminGroup.Post("/chapters/:id/quizzes", quizHandler.CreateQuiz)
	adminGroup.Put("/quizzes/:id", quizHandler.UpdateQuiz)
	adminGroup.Delete("/quizzes/:id", quizHandler.DeleteQuiz)
	adminGroup.Post("/quizzes/:id/questions", quizHandler.CreateQuestion)
	adminGroup.Put("/questions/:id", quizHandler.UpdateQuestion)
	adminGroup.Delete("/questions/:id", quizHandler.DeleteQuestion)

	adminGroup.Get("/quizzes/:id/attempts", attemptHandler.ListQuizAttempts)
	adminGroup.Get("/quizzes/:id/attempts/export", attemptHandler.ExportQuizAttemptsCSV)

	// Background sweep that expires overdue attempts server-side, so scores
	// stay correct even when a client never submits.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.Attempt.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				n, err := attemptService.FinalizeOverdue(sweepCtx)
				if err != nil {
					appLogger.Error("Attempt sweep failed", zap.Error(err))
					continue
				}
				if n > 0 {
					appLogger.Info("Expired overdue attempts", zap.Int("count", n))
				}
			}
		}
	}()

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
