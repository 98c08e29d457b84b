package migration

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/revenue-dashboard-api/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Source expõe os scripts embutidos no binário
func Source() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

// Run aplica as migrations pendentes da tabela de usuários.
// Usa uma conexão própria, pois o migrate fecha o banco ao terminar.
func Run(dbConfig config.Database) error {
	db, err := sql.Open(dbConfig.Driver, dbConfig.DSN)
	if err != nil {
		return errors.Wrap(err, "abrir conexão para migrations")
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, "criar driver postgres")
	}

	src, err := Source()
	if err != nil {
		return errors.Wrap(err, "carregar scripts de migration")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "criar instância de migrate")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "executar migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return errors.Wrap(err, "consultar versão do schema")
	}

	logrus.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Migrations aplicadas")

	return nil
}
