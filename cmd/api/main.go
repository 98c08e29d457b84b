package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/revenue-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/revenue-dashboard-api/infrastructure/migration"
	"github.com/vfg2006/revenue-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/revenue-dashboard-api/internal/api"
	"github.com/vfg2006/revenue-dashboard-api/internal/config"
	"github.com/vfg2006/revenue-dashboard-api/internal/dataset"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Configure(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A base é carregada uma única vez e compartilhada por todas as requisições
	loader := dataset.NewWorkbookLoader(dataset.Options{
		FactSheet:    cfg.Dataset.FactSheet,
		ProductSheet: cfg.Dataset.ProductSheet,
	})
	cache := dataset.NewCache(loader)

	dashboardService := dashboard.NewService(cfg, cache, aggregating.NewEngine())

	stats, err := dashboardService.Warmup()
	if loadErr, ok := dataset.AsLoadError(err); ok {
		logrus.WithError(err).WithFields(logrus.Fields{
			"code":    loadErr.Code,
			"sheet":   loadErr.Sheet,
			"columns": loadErr.Columns,
		}).Fatal("Erro ao carregar a base do dashboard")
	}
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao carregar a base do dashboard")
	}
	log.L.WithFields(log.Fields{
		"dataset_path":           cfg.Dataset.Path,
		"dataset_records":        stats.Records,
		"dataset_quality_issues": stats.HasQualityIssues(),
	}).Info("Base do dashboard carregada")

	var authenticator authenticating.Authenticator
	if cfg.Auth.Enabled {
		if err := migration.Run(cfg.Database); err != nil {
			logrus.WithError(err).Fatal("Erro ao aplicar migrations")
		}

		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		userRepo := repository.NewUserRepository(pgConn)
		authenticator = authenticating.NewService(userRepo, cfg)
	} else {
		logrus.Warn("Autenticação desabilitada: todas as requisições seguem como anônimas")
	}

	server, err := api.New(cfg, dashboardService, authenticator)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
