package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nctrnlman/api-crypto/config"
	"github.com/nctrnlman/api-crypto/internal/handler"
	"github.com/nctrnlman/api-crypto/internal/repository"
	"github.com/nctrnlman/api-crypto/internal/router"
	"github.com/nctrnlman/api-crypto/internal/service"
	"github.com/nctrnlman/api-crypto/internal/velo"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before serving")
	flag.Parse()

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("Failed to get sql.DB: %v", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			log.Fatalf("Goose: failed to set dialect: %v", err)
		}
		log.Println("Running database migrations...")
		if err := goose.Up(sqlDB, "migrations"); err != nil {
			log.Fatalf("Goose migration failed: %v", err)
		}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	veloClient := velo.NewClient(velo.DefaultConfig(cfg.VeloBaseURL, cfg.VeloAPIKey))

	futuresRepo := repository.NewGormFuturesRepository(db)
	futuresService := service.NewFuturesService(futuresRepo, veloClient, logger, service.Config{
		Coins:      cfg.Coins,
		Exchanges:  cfg.Exchanges,
		Window:     cfg.SnapshotWindow,
		Resolution: cfg.SnapshotResolution,
	})
	futuresHandler := handler.NewFuturesHandler(futuresService, logger)

	routerConfig := &router.Config{
		FuturesHandler: futuresHandler,
	}

	router := router.NewRouter(routerConfig)

	logger.Infof("Server is running on http://localhost:%s", cfg.ServerPort)
	router.Run(fmt.Sprintf(":%s", cfg.ServerPort))
}
