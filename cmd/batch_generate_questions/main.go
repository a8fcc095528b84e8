// Tops up underfilled quizzes with LLM-drafted questions. Meant to run from
// cron; drafts stay hidden from quiz takers until an admin reviews them.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fariyalkhan17/Quizzmaster/database"
	"github.com/fariyalkhan17/Quizzmaster/internal/adapter/quizgen"
	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/repository"
	"github.com/fariyalkhan17/Quizzmaster/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.InitDB(cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	generator, err := quizgen.NewOllamaQuestionGenerator(cfg.LLM)
	if err != nil {
		log.Fatal("Failed to create question generator", zap.Error(err))
	}

	quizRepo := repository.NewQuizDatabaseAdapter(db)
	subjectRepo := repository.NewSubjectDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	batchService := service.NewBatchService(quizRepo, subjectRepo, generator, txManager, cfg.Batch)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	if err := batchService.GenerateDraftQuestions(ctx); err != nil {
		log.Fatal("Draft generation run failed", zap.Error(err))
	}
	log.Info("Draft generation run finished", zap.Duration("took", time.Since(start)))
}
