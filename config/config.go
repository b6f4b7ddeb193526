package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Cleem224/cleem-backend-sub001/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config carries every external knob the backend needs. It is built once at
// startup and passed into constructors; nothing reads the environment after
// Load returns.
type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string

	EdamamAppID  string
	EdamamAppKey string

	AWSRegion string
	S3Bucket  string
	// Public base URL (CloudFront) prepended to stored image keys
	CDNBaseURL string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Per-request timeout for every vendor call
	RequestTimeout time.Duration
	// Caller-level retry policy for the recognition stage
	RecognizeRetries    int
	RecognizeRetryDelay time.Duration
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		GeminiAPIKey: mustEnv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey: mustEnv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-3.5-turbo-0125"),

		EdamamAppID:  mustEnv("EDAMAM_APP_ID"),
		EdamamAppKey: mustEnv("EDAMAM_APP_KEY"),

		AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:   os.Getenv("S3_BUCKET"),
		CDNBaseURL: os.Getenv("CLOUDFRONT_URL"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "cleem"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RequestTimeout:      time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		RecognizeRetries:    getEnvInt("RECOGNIZE_RETRIES", 2),
		RecognizeRetryDelay: time.Duration(getEnvInt("RECOGNIZE_RETRY_DELAY_SECONDS", 2)) * time.Second,
	}
}

// InitDB connects to Postgres and migrates the recognition tables.
func InitDB(cfg *Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.FoodRecord{}); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}
