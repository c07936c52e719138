package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"uptask/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
}

type Config struct {
	Environment   string `json:"environment"`
	ServerPort    string `json:"server_port"`
	FrontendURL   string `json:"frontend_url"`
	AllowNoOrigin bool   `json:"allow_no_origin"`

	JWTSecret  string        `json:"-"`
	SessionTTL time.Duration `json:"session_ttl"`
	BcryptCost int           `json:"bcrypt_cost"`

	TokenTTL           time.Duration `json:"token_ttl"`
	TokenSweepInterval time.Duration `json:"token_sweep_interval"`

	DBDriver       string `json:"db_driver"`
	DBPath         string `json:"db_path"`
	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	Redis RedisConfig `json:"redis"`
	SMTP  SMTPConfig  `json:"smtp"`

	AuthRateLimit int `json:"auth_rate_limit"`

	SentryDSN string `json:"-"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServerPort:    getEnv("SERVER_PORT", "4000"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowNoOrigin: getEnvAsBool("CORS_ALLOW_NO_ORIGIN", false),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnvAsDuration("SESSION_TTL", 180*24*time.Hour),
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),

		TokenTTL:           getEnvAsDuration("TOKEN_TTL", 10*time.Minute),
		TokenSweepInterval: getEnvAsDuration("TOKEN_SWEEP_INTERVAL", time.Minute),

		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBPath:         getEnv("DB_PATH", "uptask.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "uptask"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnvAsInt("SMTP_PORT", 587),
			Username:  getEnv("SMTP_USER", ""),
			Password:  getEnv("SMTP_PASS", ""),
			FromName:  getEnv("SMTP_FROM_NAME", "UpTask"),
			FromEmail: getEnv("SMTP_FROM_EMAIL", "admin@uptask.com"),
		},

		AuthRateLimit: getEnvAsInt("AUTH_RATE_LIMIT", 20),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// Validate required configurations
	if AppConfig.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if AppConfig.DBDriver == "postgres" && AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.DBDriver != "postgres" && AppConfig.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", AppConfig.DBDriver)
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	logrus.Info("Attempting to connect to database...")

	var dialector gorm.Dialector
	if AppConfig.DBDriver == "sqlite" {
		logrus.Infof("Using sqlite database: %s", AppConfig.DBPath)
		dialector = sqlite.Open(AppConfig.DBPath)
	} else {
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			AppConfig.DBHost,
			AppConfig.DBPort,
			AppConfig.DBUser,
			AppConfig.DBPassword,
			AppConfig.DBName,
			AppConfig.DBSSLMode,
		)
		logrus.Infof("Using connection string: %s", maskPassword(dsn))
		dialector = postgres.Open(dsn)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logrus.Info("Successfully connected to the database")
	logrus.Info("Starting database migration...")
	if err := Migrate(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}

// ConnectRedis returns a client when Redis is enabled and nil otherwise.
func ConnectRedis() *redis.Client {
	if !AppConfig.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     AppConfig.Redis.Address,
		Password: AppConfig.Redis.Password,
		DB:       AppConfig.Redis.DB,
	})
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ConfirmationToken{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.StatusChange{},
		&models.Note{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	logrus.Info("Loaded configuration:")
	logrus.Infof("Environment: %s", AppConfig.Environment)
	logrus.Infof("Server Port: %s", AppConfig.ServerPort)
	if AppConfig.DBDriver == "sqlite" {
		logrus.Infof("Database: sqlite %s", AppConfig.DBPath)
	} else {
		logrus.Infof("Database: %s@%s:%s/%s",
			AppConfig.DBUser,
			AppConfig.DBHost,
			AppConfig.DBPort,
			AppConfig.DBName)
	}
	logrus.Infof("Redis: %t, SMTP: %t, Sentry: %t",
		AppConfig.Redis.Enabled,
		AppConfig.SMTP.Host != "",
		AppConfig.SentryDSN != "")
}
