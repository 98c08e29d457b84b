// Script de preparação do banco: aplica as migrations e cadastra o
// administrador inicial do dashboard.
//
//	ADMIN_EMAIL=admin@empresa.com ADMIN_PASSWORD=segredo123 go run ./infrastructure/migration/script
package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/revenue-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/revenue-dashboard-api/infrastructure/migration"
	"github.com/vfg2006/revenue-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/revenue-dashboard-api/internal/config"
	"github.com/vfg2006/revenue-dashboard-api/internal/domain"
	"github.com/vfg2006/revenue-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/revenue-dashboard-api/pkg/log"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("ERRO ao carregar configuração: %v", err)
	}
	log.Configure(cfg.App.LogLevel)

	if err := migration.Run(cfg.Database); err != nil {
		logrus.Fatalf("ERRO ao aplicar migrations: %v", err)
	}

	email := viper.GetString("ADMIN_EMAIL")
	password := viper.GetString("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logrus.Info("ADMIN_EMAIL/ADMIN_PASSWORD não informados, nenhum administrador cadastrado")
		return
	}

	name := viper.GetString("ADMIN_NAME")
	if name == "" {
		name = "Administrador"
	}

	conn, err := postgres.NewConnection(context.Background(), cfg.Database)
	if err != nil {
		logrus.Fatalf("ERRO ao conectar ao banco de dados: %v", err)
	}
	defer conn.Close()

	service := authenticating.NewService(repository.NewUserRepository(conn), cfg)

	user, err := service.CreateUser(&domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: password,
		RoleID:       domain.RoleAdmin,
	})
	if errors.Is(err, authenticating.ErrUserAlreadyExists) {
		logrus.Infof("Administrador %s já cadastrado", email)
		return
	}
	if err != nil {
		logrus.Fatalf("ERRO ao cadastrar administrador: %v", err)
	}

	logrus.WithField("user_id", user.ID).Infof("Administrador %s cadastrado", user.Email)
}
