package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/logger"
)

type Config struct {
	Environment    string
	Port           string
	DatabaseURL    string
	CatalogPath    string
	MigrationsDir  string
	AllowedOrigins []string
	Log            logger.Config
}

func Load() *Config {
	return &Config{
		Environment:    getEnv("ENVIRONMENT", "dev"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CatalogPath:    getEnv("CATALOG_PATH", "configs/catalog.yaml"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		Log: logger.Config{
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			LogFile:      getEnv("LOG_FILE", ""),
			LogFileSize:  getEnvInt("LOG_FILE_SIZE", 10),
			LogFileCount: getEnvInt("LOG_FILE_COUNT", 5),
			LogCompress:  getEnv("LOG_COMPRESS", "false") == "true",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
