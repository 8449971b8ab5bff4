package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment.
type Config struct {
	OutputDir        string
	LogLevel         string
	AnchorPriceDate  string
	HTTPTimeout      time.Duration
	Parallelism      int
	BrowserFallback  bool
	ChromeDriverPath string
	Port             string

	JWTSecret string

	AWSRegion     string
	AWSBucketName string

	SendGridAPIKey  string
	ReportEmail     string
	ReportFromEmail string
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool) {
	found := godotenv.Load() == nil

	cfg := Config{
		OutputDir:        getEnv("OUTPUT_DIR", "data"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		AnchorPriceDate:  getEnv("ANCHOR_PRICE_DATE", "2025-05-02"),
		HTTPTimeout:      time.Duration(getInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		Parallelism:      getInt("CRAWL_PARALLELISM", 4),
		BrowserFallback:  getBool("BROWSER_FALLBACK", false),
		ChromeDriverPath: os.Getenv("CHROMEDRIVER_PATH"),
		Port:             getEnv("PORT", "8080"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AWSRegion:        os.Getenv("AWS_REGION"),
		AWSBucketName:    os.Getenv("AWS_BUCKET_NAME"),
		SendGridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		ReportEmail:      os.Getenv("REPORT_EMAIL"),
		ReportFromEmail:  getEnv("REPORT_FROM_EMAIL", "crawler@localhost"),
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return cfg, found
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}
