package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"dropindrop/config"
	"dropindrop/internal/cli"
	"dropindrop/internal/pkg/database"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/token"
	"dropindrop/internal/repository/userrepo"
	"dropindrop/internal/service/userservice"
)

func main() {
	_ = godotenv.Load()

	// Os comandos puros não exigem DATABASE_URL; sem config válida usamos UTC.
	loc := time.UTC
	cfg, cfgErr := config.LoadConfig()
	if cfgErr == nil {
		loc = cfg.Location()
	}

	deps := cli.Deps{
		Location: loc,
		Admins: func(ctx context.Context) (cli.AdminCreator, func(), error) {
			if cfgErr != nil {
				return nil, nil, cfgErr
			}
			db, err := database.NewPostgresDB(cfg.DatabaseURL)
			if err != nil {
				return nil, nil, err
			}
			log := logger.NewLogger(cfg.LogLevel)
			repo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
			svc := userservice.NewService(repo, token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry))
			return svc, func() { _ = db.Close() }, nil
		},
	}

	if err := cli.NewRootCommand(deps).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dropctl:", err)
		os.Exit(1)
	}
}
