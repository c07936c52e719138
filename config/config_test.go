package config

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"uptask/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")

	require.NoError(t, LoadConfig())
	assert.Equal(t, "4000", AppConfig.ServerPort)
	assert.Equal(t, 180*24*time.Hour, AppConfig.SessionTTL)
	assert.Equal(t, 10*time.Minute, AppConfig.TokenTTL)
	assert.Equal(t, 10, AppConfig.BcryptCost)
	assert.Equal(t, 20, AppConfig.AuthRateLimit)
	assert.False(t, AppConfig.Redis.Enabled)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("SMTP_PORT", "not-a-number")

	require.NoError(t, LoadConfig())
	assert.Equal(t, 15*time.Minute, AppConfig.TokenTTL)
	assert.Equal(t, 12, AppConfig.BcryptCost)
	assert.True(t, AppConfig.Redis.Enabled)
	assert.Equal(t, 587, AppConfig.SMTP.Port)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	assert.Error(t, LoadConfig())

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")
	assert.Error(t, LoadConfig())

	t.Setenv("DB_DRIVER", "mysql")
	assert.Error(t, LoadConfig())
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "host=db password=***** dbname=x", maskPassword("host=db password=hunter2 dbname=x"))
	assert.Equal(t, "host=db password=*****", maskPassword("host=db password=hunter2"))
	assert.Equal(t, "host=db", maskPassword("host=db"))
}

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))
	for _, model := range []interface{}{
		&models.User{}, &models.ConfirmationToken{}, &models.Project{},
		&models.ProjectMember{}, &models.Task{}, &models.StatusChange{}, &models.Note{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("UPTASK_TEST_SET", "value")
	t.Setenv("UPTASK_TEST_DURATION", "bogus")

	assert.Equal(t, "value", getEnv("UPTASK_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", getEnv("UPTASK_TEST_UNSET", "fallback"))
	assert.Equal(t, "", getEnv("UPTASK_TEST_UNSET", ""))
	assert.Equal(t, time.Minute, getEnvAsDuration("UPTASK_TEST_DURATION", time.Minute))
	assert.True(t, getEnvAsBool("UPTASK_TEST_UNSET", true))
}
