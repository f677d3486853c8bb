package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/database"
	"github.com/localnerve/paperdb/internal/importer"
	"github.com/localnerve/paperdb/internal/logging"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/services"
	"github.com/localnerve/paperdb/internal/types"
	"go.uber.org/zap"
)

// seed loads users and bare papers from CSV or XLSX files. Users are
// registered as system operations; papers are bulk imported in one transaction.
func main() {
	configPath := flag.String("config", "", "path to a config file")
	usersFile := flag.String("users", "", "CSV or XLSX file with user_id, email, display_name, roles columns")
	papersFile := flag.String("papers", "", "CSV or XLSX file with an author_id column")
	flag.Parse()

	if *usersFile == "" && *papersFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	engine := services.NewEngine(db, logger, services.WithPolicy(cfg.Workflow))
	ctx := context.Background()

	if *usersFile != "" {
		if err := seedUsers(ctx, engine, *usersFile, logger); err != nil {
			logger.Fatal("user import failed", zap.String("file", *usersFile), zap.Error(err))
		}
	}
	if *papersFile != "" {
		if err := seedPapers(ctx, engine, *papersFile, logger); err != nil {
			logger.Fatal("paper import failed", zap.String("file", *papersFile), zap.Error(err))
		}
	}
}

func readRows(path string) ([][]string, error) {
	format, err := importer.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return importer.ReadRows(f, format)
}

func seedUsers(ctx context.Context, engine *services.Engine, path string, logger *zap.Logger) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}
	users, err := importer.ParseUsers(rows)
	if err != nil {
		return err
	}

	created, skipped := 0, 0
	for _, u := range users {
		_, err := engine.RegisterUser(ctx, models.User{
			UserID:      u.UserID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
		}, u.Roles, "")
		if errors.Is(err, types.ErrConflict) {
			logger.Info("user already registered", zap.Int("row", u.Row), zap.String("email", u.Email))
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", u.Row, err)
		}
		created++
	}

	logger.Info("users imported", zap.Int("created", created), zap.Int("skipped", skipped))
	return nil
}

func seedPapers(ctx context.Context, engine *services.Engine, path string, logger *zap.Logger) error {
	rows, err := readRows(path)
	if err != nil {
		return err
	}
	authorIDs, err := importer.ParseAuthorIDs(rows)
	if err != nil {
		return err
	}

	papers, err := engine.BulkImportPapers(ctx, authorIDs)
	if err != nil {
		return err
	}

	logger.Info("papers imported", zap.Int("count", len(papers)))
	return nil
}
