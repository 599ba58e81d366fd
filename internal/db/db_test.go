package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confstore/confstore/internal/config"
	"github.com/confstore/confstore/internal/db/models"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		engine string
		want   string
	}{
		{config.EngineMySQL, "mysql"},
		{config.EnginePostgres, "postgres"},
		{config.EngineSQLite, "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			d, err := Dialector(&config.DB{GormEngine: tt.engine, Path: "test.db", Host: "localhost", Port: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name())
		})
	}

	_, err := Dialector(&config.DB{GormEngine: "oracle"})
	require.ErrorIs(t, err, config.ErrUnknownGormEngine)
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		DB: config.DB{
			GormEngine:   config.EngineSQLite,
			Path:         ":memory:",
			MaxOpenConns: 1,
		},
	}

	db, err := Open(cfg)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&models.ConfigRecord{}))
	assert.True(t, db.Migrator().HasIndex(&models.ConfigRecord{}, "idx_configs_key_owner"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, sqlDB.Close())
}
