package config

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linesmerrill/motorent-api/models"
)

// Config holds the project config values
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	URL          string `env:"DB_URI" envDefault:"mongodb://127.0.0.1:27017"`
	DatabaseName string `env:"DB_NAME" envDefault:"motorent"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	EmailProvider    string `env:"EMAIL_PROVIDER" envDefault:"console"`
	EmailFrom        string `env:"EMAIL_FROM" envDefault:"no-reply@motorent.local"`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"MotoRent"`
	AdminEmail       string `env:"ADMIN_EMAIL"`
	SendgridAPIKey   string `env:"SENDGRID_API_KEY"`
	ResendAPIKey     string `env:"RESEND_API_KEY"`
	SMTPHost         string `env:"SMTP_HOST"`
	SMTPPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string `env:"SMTP_USERNAME"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
	EmailFunctionURL string `env:"EMAIL_FUNCTION_URL"`
	EmailFunctionKey string `env:"EMAIL_FUNCTION_KEY"`

	CloudinaryURL  string `env:"CLOUDINARY_URL"`
	ImageBucket    string `env:"STORAGE_IMAGE_BUCKET" envDefault:"motorcycle-images"`
	DocumentBucket string `env:"STORAGE_DOCUMENT_BUCKET" envDefault:"driver-documents"`

	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"5m"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"₱"`
	CurrencyCode   string `env:"CURRENCY_CODE" envDefault:"PHP"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"3"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

var newLogger = setLogger

// New sets up all config related services
func New() *Config {
	// a missing .env is fine, the real environment wins anyway
	_ = godotenv.Load()

	conf := &Config{}
	parseErr := env.Parse(conf)

	//setup zap logger and replace default logger
	logger, err := newLogger(conf.Environment)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	if parseErr != nil {
		zap.S().Errorw("failed to parse environment, unparsed values are left empty", "error", parseErr)
	}
	return conf
}

func setLogger(environment string) (*zap.Logger, error) {
	switch environment {
	case "development":
		return zap.NewDevelopment()
	case "production":
		return zap.NewProduction()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_, _ = w.Write(b)
}
