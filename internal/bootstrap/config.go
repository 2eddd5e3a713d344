package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 保存从环境变量加载的配置
type Config struct {
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	JWTSecret         string
	ServerPort        string
	LogLevel          string
	RateLimitMax      int
	RateLimitWindow   time.Duration
	JWTExpiryHours    int
	AppEnv            string // development / production
	KeyPrefix         string // Redis key 前缀
	AutoSaveSchedule  string // asynq 调度表达式
	PresenceTTL       time.Duration
	ShareBaseURL      string
	CORSAllowedOrigin string
	InstanceID        string // 为空时由 SyncService 随机生成
}

// LoadConfig 从环境变量加载配置，存在 .env 文件时先加载它
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBName:            os.Getenv("DB_NAME"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		AppEnv:            os.Getenv("APP_ENV"),
		KeyPrefix:         os.Getenv("REDIS_KEY_PREFIX"),
		AutoSaveSchedule:  os.Getenv("AUTOSAVE_SCHEDULE"),
		ShareBaseURL:      os.Getenv("SHARE_BASE_URL"),
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		InstanceID:        os.Getenv("INSTANCE_ID"),
		RateLimitMax:      100,
		RateLimitWindow:   1 * time.Second,
		JWTExpiryHours:    24,
		PresenceTTL:       2 * time.Minute,
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = intEnv("RATE_LIMIT_MAX", cfg.RateLimitMax); err != nil {
		return nil, err
	}
	if cfg.JWTExpiryHours, err = intEnv("JWT_EXPIRY_HOURS", cfg.JWTExpiryHours); err != nil {
		return nil, err
	}
	ttlSeconds, err := intEnv("PRESENCE_TTL_SECONDS", int(cfg.PresenceTTL/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.PresenceTTL = time.Duration(ttlSeconds) * time.Second

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "px:"
	}
	if cfg.AutoSaveSchedule == "" {
		cfg.AutoSaveSchedule = "@every 30s"
	}
	if cfg.ShareBaseURL == "" {
		cfg.ShareBaseURL = "http://localhost:" + cfg.ServerPort
	}
	if cfg.CORSAllowedOrigin == "" {
		cfg.CORSAllowedOrigin = "http://localhost:3000"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}
	if cfg.PresenceTTL <= 0 {
		return nil, fmt.Errorf("PRESENCE_TTL_SECONDS must be positive, got %d", ttlSeconds)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// IsProduction 报告是否运行在生产环境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return v, nil
}
