package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nri-matrimony/matrimony/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(driver, dsn string, autoMigrate bool) config.Config {
	return config.Config{
		Log: config.LogConfig{Level: "error"},
		Database: config.DatabaseConfig{
			Driver:      driver,
			DSN:         dsn,
			AutoMigrate: autoMigrate,
		},
	}
}

type TestModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255"`
}

func TestWithModels(t *testing.T) {
	t.Run("with multiple models", func(t *testing.T) {
		model1 := TestModel{}
		model2 := &TestModel{}
		option := WithModels(model1, model2)

		assert.Len(t, option.models, 2)
		assert.Equal(t, model2, option.models[1])
	})

	t.Run("with no models", func(t *testing.T) {
		assert.Len(t, WithModels().models, 0)
	})
}

func TestProvideDatabase_SQLite(t *testing.T) {
	t.Run("in-memory connection", func(t *testing.T) {
		db, err := ProvideDatabase(createTestConfig("sqlite", ":memory:", false), nil, nil)

		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		defer sqlDB.Close()
		assert.NoError(t, sqlDB.Ping())
	})

	t.Run("file-based connection", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := ProvideDatabase(createTestConfig("sqlite", dbPath, false), nil, nil)

		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		defer sqlDB.Close()
		assert.NoError(t, sqlDB.Ping())

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("auto-migration with models", func(t *testing.T) {
		db, err := ProvideDatabase(createTestConfig("sqlite", ":memory:", true), WithModels(&TestModel{}), nil)

		require.NoError(t, err)
		assert.True(t, db.Migrator().HasTable(&TestModel{}))
	})

	t.Run("auto-migration disabled", func(t *testing.T) {
		db, err := ProvideDatabase(createTestConfig("sqlite", ":memory:", false), WithModels(&TestModel{}), nil)

		require.NoError(t, err)
		assert.False(t, db.Migrator().HasTable(&TestModel{}))
	})
}

func TestProvideDatabase_UnsupportedDriver(t *testing.T) {
	db, err := ProvideDatabase(createTestConfig("oracle", "dsn", false), nil, nil)

	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database driver: oracle")
}

func TestGormLogLevel(t *testing.T) {
	assert.NotEqual(t, gormLogLevel("debug"), gormLogLevel("info"))
	assert.Equal(t, gormLogLevel("info"), gormLogLevel("warn"))
}
