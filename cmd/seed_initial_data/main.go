// Seeds the admin account and the initial subject/chapter catalog. Safe to
// run repeatedly: existing rows are left untouched.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fariyalkhan17/Quizzmaster/cmd/seed_initial_data/internal/seedmodels"
	"github.com/fariyalkhan17/Quizzmaster/database"
	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const seedFilePath = "configs/seed_data/initial_catalog.json"

func main() {
	ctx := context.Background()

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

	userRepo := repository.NewUserDatabaseAdapter(db)
	subjectRepo := repository.NewSubjectDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	if err := seedAdminUser(ctx, log, cfg, userRepo); err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	}

	subjects, err := loadSeedSubjects(seedFilePath)
	if err != nil {
		log.Fatal("Failed to load seed catalog", zap.String("path", seedFilePath), zap.Error(err))
	}

	for _, seed := range subjects {
		seed := seed
		err := txManager.WithTransaction(ctx, func(ctx context.Context) error {
			return seedSubject(ctx, log, subjectRepo, seed)
		})
		if err != nil {
			log.Error("Failed to seed subject", zap.String("subject", seed.Name), zap.Error(err))
		}
	}

	log.Info("Seeding completed")
}

func seedAdminUser(ctx context.Context, log *zap.Logger, cfg *config.Config, userRepo domain.UserRepository) error {
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		return fmt.Errorf("auth.admin_email and auth.admin_password are required for seeding")
	}

	existing, err := userRepo.GetUserByEmail(ctx, cfg.Auth.AdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("Admin user already exists", zap.String("email", cfg.Auth.AdminEmail))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := domain.NewUser(cfg.Auth.AdminEmail, string(hash), cfg.Auth.AdminFullName)
	admin.Role = domain.RoleAdmin
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		return err
	}
	log.Info("Created admin user", zap.String("id", admin.ID), zap.String("email", admin.Email))
	return nil
}

func loadSeedSubjects(path string) ([]seedmodels.SeedSubject, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var subjects []seedmodels.SeedSubject
	if err := json.Unmarshal(raw, &subjects); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed file: %w", err)
	}
	return subjects, nil
}

func seedSubject(ctx context.Context, log *zap.Logger, subjectRepo domain.SubjectRepository, seed seedmodels.SeedSubject) error {
	subject, err := subjectRepo.GetSubjectByName(ctx, seed.Name)
	if err != nil {
		return err
	}
	if subject == nil {
		subject = domain.NewSubject(seed.Name, seed.Description)
		if err := subjectRepo.CreateSubject(ctx, subject); err != nil {
			return fmt.Errorf("failed to create subject %s: %w", seed.Name, err)
		}
		log.Info("Created subject", zap.String("id", subject.ID), zap.String("name", subject.Name))
	} else {
		log.Info("Subject exists", zap.String("id", subject.ID), zap.String("name", subject.Name))
	}

	for _, seedCh := range seed.Chapters {
		chapter, err := subjectRepo.GetChapterByName(ctx, subject.ID, seedCh.Name)
		if err != nil {
			return err
		}
		if chapter != nil {
			log.Info("Chapter exists", zap.String("id", chapter.ID), zap.String("name", chapter.Name))
			continue
		}
		chapter = domain.NewChapter(subject.ID, seedCh.Name, seedCh.Description)
		if err := subjectRepo.CreateChapter(ctx, chapter); err != nil {
			return fmt.Errorf("failed to create chapter %s: %w", seedCh.Name, err)
		}
		log.Info("Created chapter", zap.String("id", chapter.ID), zap.String("name", chapter.Name))
	}
	return nil
}
