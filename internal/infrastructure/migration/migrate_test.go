package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stepsync/internal/app/server/config"
)

// MockMigrator: мок для интерфейса Migrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.DB.DatabaseURI = "postgres://localhost/steps"
	cfg.DB.Migrations = "migrations"
	return cfg
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(2), false, nil)
	mockM.On("Close").Return(nil, nil)

	var gotSource, gotDB string
	engine := func(source, db string) (Migrator, error) {
		gotSource, gotDB = source, db
		return mockM, nil
	}

	version, err := NewMigration(testConfig(), engine).Up()

	assert.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.Equal(t, "file://migrations", gotSource)
	assert.Equal(t, "postgres://localhost/steps", gotDB)
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)
	// ErrNoChange не должна считаться ошибкой в методе Up()
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Version").Return(uint(2), false, nil)
	mockM.On("Close").Return(nil, nil)

	engine := func(source, db string) (Migrator, error) {
		return mockM, nil
	}

	_, err := NewMigration(testConfig(), engine).Up()

	assert.NoError(t, err)
}

func TestMigration_Up_Dirty(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), true, nil)
	mockM.On("Close").Return(nil, nil)

	engine := func(source, db string) (Migrator, error) {
		return mockM, nil
	}

	_, err := NewMigration(testConfig(), engine).Up()

	assert.ErrorContains(t, err, "dirty")
}

func TestMigration_Up_CloseError(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, errors.New("conn closed"))

	engine := func(source, db string) (Migrator, error) {
		return mockM, nil
	}

	_, err := NewMigration(testConfig(), engine).Up()

	assert.ErrorContains(t, err, "conn closed")
}

func TestMigration_Up_EngineError(t *testing.T) {
	// Ошибка на этапе создания мигратора (например, неверный драйвер)
	engine := func(source, db string) (Migrator, error) {
		return nil, errors.New("engine crash")
	}

	_, err := NewMigration(testConfig(), engine).Up()

	assert.Error(t, err)
	assert.Equal(t, "engine crash", err.Error())
}
