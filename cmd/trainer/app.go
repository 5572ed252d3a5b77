package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/itpass-trainer/internal/config"
	"github.com/aliskhannn/itpass-trainer/internal/delivery/terminal"
	"github.com/aliskhannn/itpass-trainer/internal/importer"
	"github.com/aliskhannn/itpass-trainer/internal/infra/postgres"
	pgrepo "github.com/aliskhannn/itpass-trainer/internal/infra/postgres/repository"
	"github.com/aliskhannn/itpass-trainer/internal/infra/sqlite"
	sqliterepo "github.com/aliskhannn/itpass-trainer/internal/infra/sqlite/repository"
	"github.com/aliskhannn/itpass-trainer/internal/service"
	"github.com/aliskhannn/itpass-trainer/internal/storage"
)

// app wires the services of one process.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	loc    *time.Location
	store  storage.Store

	questions   *service.QuestionStore
	stats       *service.StatisticsService
	engine      *service.QuizEngine
	housekeeper *service.Housekeeper
	loader      *importer.Loader
	terminal    *terminal.Handler
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	questions := service.NewQuestionStore(store, logger)
	recorder := service.NewAnswerRecorder(store, logger)
	stats := service.NewStatisticsService(store, loc, cfg.Stats.WeakLimit, logger)
	selector := service.NewQuestionSelector(questions, store, service.ReviewStrategy(cfg.Quiz.ReviewStrategy))
	engine := service.NewQuizEngine(store, selector, recorder, stats, service.QuizEngineConfig{
		DefaultQuestionCount:  cfg.Quiz.DefaultQuestionCount,
		MockTestQuestionCount: cfg.Quiz.MockTestQuestionCount,
	}, logger)
	housekeeper := service.NewHousekeeper(store, stats, cfg.Housekeeping.Schedule, cfg.Housekeeping.StaleAfter, loc, logger)

	return &app{
		cfg:         cfg,
		logger:      logger,
		loc:         loc,
		store:       store,
		questions:   questions,
		stats:       stats,
		engine:      engine,
		housekeeper: housekeeper,
		loader:      importer.NewLoader(),
		terminal:    terminal.NewHandler(os.Stdin, os.Stdout, engine, stats, logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// openStore connects to the configured backend and applies the schema.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		dsn, err := cfg.DB.DSN()
		if err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return pgrepo.NewStore(pool), nil

	default:
		db, err := sqlite.Open(ctx, cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sqliterepo.NewStore(db), nil
	}
}
