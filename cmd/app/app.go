package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tcgarena/tournament-api/internal/api"
	"github.com/tcgarena/tournament-api/internal/config"
	"github.com/tcgarena/tournament-api/internal/db"
	"github.com/tcgarena/tournament-api/internal/jobs"
	"github.com/tcgarena/tournament-api/internal/logger"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	s := api.NewServer(conf, postgresDB)

	sweeper := jobs.NewStatusSweeper(
		s.Lifecycle,
		time.Duration(conf.Sweep.IntervalMinutes)*time.Minute,
		conf.Sweep.Enabled,
	)
	go sweeper.Start(context.Background())
	defer sweeper.Stop()

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}
