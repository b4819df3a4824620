package migration

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// Регистрация драйвера PostgreSQL и файлового источника для migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"stepsync/internal/app/server/config"
)

// Migrator: интерфейс для самой библиотеки migrate.Migrate
type Migrator interface {
	Up() error
	Version() (uint, bool, error)
	Close() (error, error)
}

// MigrationEngine: фабрика для создания мигратора (чтобы не лезть в ФС и БД в тестах)
type MigrationEngine func(sourceURL, databaseURL string) (Migrator, error)

type Migration struct {
	sourceURL   string
	databaseURL string
	engine      MigrationEngine
}

func NewMigration(cfg *config.Config, engine MigrationEngine) *Migration {
	if engine == nil {
		engine = DefaultEngine
	}
	return &Migration{
		sourceURL:   "file://" + cfg.DB.Migrations,
		databaseURL: cfg.DB.DatabaseURI,
		engine:      engine,
	}
}

// DefaultEngine: реальная реализация для продакшена
func DefaultEngine(sourceURL, databaseURL string) (Migrator, error) {
	return migrate.New(sourceURL, databaseURL)
}

// Up применяет все миграции и возвращает текущую версию схемы.
func (mg *Migration) Up() (version uint, err error) {
	m, err := mg.engine(mg.sourceURL, mg.databaseURL)
	if err != nil {
		return 0, err
	}
	defer func() {
		serr, dberr := m.Close()
		if serr != nil {
			err = errors.Join(err, fmt.Errorf("migration source: %w", serr))
		}
		if dberr != nil {
			err = errors.Join(err, fmt.Errorf("migration database: %w", dberr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	return version, nil
}
