package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Policy PolicyConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type AuthConfig struct {
	JWTSecret string
}

// PolicyConfig holds the business-configured compensation knobs. The shipped
// defaults mirror the current payroll sheet; the engine never hard-codes them.
type PolicyConfig struct {
	PerformanceBonusAmount string
	GrowthBonusThreshold   string
	MinMonthlyVisits       int
	VisitPenaltyAmount     string
	NetDeductionRate       string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	minVisits, _ := strconv.Atoi(getEnv("MIN_MONTHLY_VISITS", "0"))

	return Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "wikenfarma"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "wikenfarma"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "wikenfarma-dev-secret"),
		},
		Policy: PolicyConfig{
			PerformanceBonusAmount: getEnv("PERFORMANCE_BONUS_AMOUNT", "100.00"),
			GrowthBonusThreshold:   getEnv("GROWTH_BONUS_THRESHOLD", "5"),
			MinMonthlyVisits:       minVisits,
			VisitPenaltyAmount:     getEnv("VISIT_PENALTY_AMOUNT", "0.00"),
			NetDeductionRate:       getEnv("NET_DEDUCTION_RATE", "0"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
