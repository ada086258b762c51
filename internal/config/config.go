package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env             string
	Port            string
	DatabaseURL     string
	ArchiveBaseURL  string        // archive.org 服务地址
	MovieDataDir    string        // 影片文件本地缓存目录
	ProviderTimeout time.Duration // 外部元数据请求超时
	SiteName        string
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "hypertube")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	// 外部服务不做自动重试，只设置有界超时，慢源直接报错
	timeoutSec, _ := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "15"))
	if timeoutSec <= 0 {
		timeoutSec = 15
	}

	return &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "5005"),
		DatabaseURL:     dbURL,
		ArchiveBaseURL:  getEnv("ARCHIVE_BASE_URL", "https://archive.org"),
		MovieDataDir:    getEnv("MOVIE_DATA_DIR", "./data/movie"),
		ProviderTimeout: time.Duration(timeoutSec) * time.Second,
		SiteName:        getEnv("SITE_NAME", "Hypertube"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
