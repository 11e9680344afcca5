package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CoursesConfig drives catalog pagination and sorting.
type CoursesConfig struct {
	PerPage        int
	InHome         int
	OrderBy        string
	OrderAscending bool
	OrderAllow     []string
	// MaxPerAuthor is the course-limit policy threshold; exceeding it
	// triggers a notification email to NotificationEmail.
	MaxPerAuthor      int
	NotificationEmail string
}

// NormalizeOrder validates a requested sort key against the allow list,
// case-insensitively. Unknown keys reset both the key and the direction to
// the configured defaults, so callers only ever see allow-listed values.
func (c CoursesConfig) NormalizeOrder(orderBy string, ascending bool) (string, bool) {
	for _, allowed := range c.OrderAllow {
		if strings.EqualFold(orderBy, allowed) {
			return allowed, ascending
		}
	}
	return c.OrderBy, c.OrderAscending
}

// ImagesConfig bounds uploaded course covers.
type ImagesConfig struct {
	PublicDir   string
	ThumbWidth  int
	ThumbHeight int
	MaxWidth    int
	MaxHeight   int
}

// PaypalConfig configures the checkout client.
type PaypalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	BrandName    string
}

// EmailConfig configures the SendGrid client.
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type Config struct {
	Environment    string
	Port           string
	DBDSN          string
	MigrationsPath string

	ConnectRetries int
	ConnectBackoff time.Duration

	CacheTTL time.Duration

	JWTSecret string

	Courses CoursesConfig
	Images  ImagesConfig
	Paypal  PaypalConfig
	Email   EmailConfig
}

// Load reads configuration from the environment, after loading .env if one
// is present.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment:    getEnv("ENV", "development"),
		Port:           getEnv("PORT", "3000"),
		DBDSN:          os.Getenv("DB_DSN"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
		ConnectBackoff: time.Duration(getEnvInt("DB_CONNECT_BACKOFF_SECONDS", 2)) * time.Second,

		CacheTTL: time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,

		JWTSecret: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		Courses: CoursesConfig{
			PerPage:           getEnvInt("COURSES_PER_PAGE", 10),
			InHome:            getEnvInt("COURSES_IN_HOME", 3),
			OrderBy:           getEnv("COURSES_ORDER_BY", "Rating"),
			OrderAscending:    getEnvBool("COURSES_ORDER_ASCENDING", false),
			OrderAllow:        getEnvList("COURSES_ORDER_ALLOW", []string{"Id", "Title", "Rating", "CurrentPrice"}),
			MaxPerAuthor:      getEnvInt("COURSES_MAX_PER_AUTHOR", 5),
			NotificationEmail: getEnv("COURSES_NOTIFICATION_EMAIL", ""),
		},
		Images: ImagesConfig{
			PublicDir:   getEnv("IMAGES_PUBLIC_DIR", "public"),
			ThumbWidth:  getEnvInt("IMAGES_THUMB_WIDTH", 300),
			ThumbHeight: getEnvInt("IMAGES_THUMB_HEIGHT", 300),
			MaxWidth:    getEnvInt("IMAGES_MAX_WIDTH", 4000),
			MaxHeight:   getEnvInt("IMAGES_MAX_HEIGHT", 4000),
		},
		Paypal: PaypalConfig{
			BaseURL:      getEnv("PAYPAL_BASE_URL", "https://api.sandbox.paypal.com"),
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			BrandName:    getEnv("PAYPAL_BRAND_NAME", "CourseHub"),
		},
		Email: EmailConfig{
			APIKey:    os.Getenv("SENDGRID_API_KEY"),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@coursehub.local"),
			FromName:  getEnv("SENDGRID_FROM_NAME", "CourseHub"),
		},
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "defaultSecret" {
		log.Println("Warning: using default JWT_SECRET_KEY, set it in your environment")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
