package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the catalog sync pipeline
type Config struct {
	// Source catalog (read side)
	SourceURL            string
	SourceConsumerKey    string
	SourceConsumerSecret string

	// Target catalog (write side)
	TargetURL            string
	TargetConsumerKey    string
	TargetConsumerSecret string

	// Target media store (WP application password, basic auth)
	MediaUser     string
	MediaPassword string

	// Artifact locations
	ExportDir string
	ImageDir  string

	// Paging & pacing
	PageSize        int
	RateLimitPerSec float64
	RequestTimeout  time.Duration

	// Image pipeline
	MediaMaxUploadBytes int64
	ImageMaxEdge        int
	ImageJPEGQuality    int

	// Sitemap
	StorefrontBaseURL string
}

// Load loads configuration from the environment, reading a local .env
// file first when one exists.
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{
		SourceURL:            getEnv("SOURCE_URL", ""),
		SourceConsumerKey:    getEnv("SOURCE_CONSUMER_KEY", ""),
		SourceConsumerSecret: getEnv("SOURCE_CONSUMER_SECRET", ""),

		TargetURL:            getEnv("TARGET_URL", ""),
		TargetConsumerKey:    getEnv("TARGET_CONSUMER_KEY", ""),
		TargetConsumerSecret: getEnv("TARGET_CONSUMER_SECRET", ""),

		MediaUser:     getEnv("MEDIA_USER", ""),
		MediaPassword: getEnv("MEDIA_APP_PASSWORD", ""),

		ExportDir: getEnv("EXPORT_DIR", "export"),
		ImageDir:  getEnv("IMAGE_DIR", "export/images"),

		PageSize:        getEnvAsInt("PAGE_SIZE", 100),
		RateLimitPerSec: getEnvAsFloat("RATE_LIMIT_PER_SEC", 2),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),

		MediaMaxUploadBytes: int64(getEnvAsInt("MEDIA_MAX_UPLOAD_BYTES", 2*1024*1024)),
		ImageMaxEdge:        getEnvAsInt("IMAGE_MAX_EDGE", 1600),
		ImageJPEGQuality:    getEnvAsInt("IMAGE_JPEG_QUALITY", 80),

		StorefrontBaseURL: getEnv("STOREFRONT_BASE_URL", ""),
	}

	return config
}

// RequireSource exits when the source catalog credentials are missing
func (c *Config) RequireSource() {
	if c.SourceURL == "" || c.SourceConsumerKey == "" || c.SourceConsumerSecret == "" {
		log.Fatal("SOURCE_URL, SOURCE_CONSUMER_KEY and SOURCE_CONSUMER_SECRET are required")
	}
}

// RequireTarget exits when the target catalog credentials are missing
func (c *Config) RequireTarget() {
	if c.TargetURL == "" || c.TargetConsumerKey == "" || c.TargetConsumerSecret == "" {
		log.Fatal("TARGET_URL, TARGET_CONSUMER_KEY and TARGET_CONSUMER_SECRET are required")
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
