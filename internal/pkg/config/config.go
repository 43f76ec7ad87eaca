package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	AppName  string `env:"APP_NAME,  default=Accounts"`

	// LockDriver selects the AccountLocker backend: "redis" or "local".
	LockDriver string `env:"LOCK_DRIVER, default=redis"`

	Auth      AuthConfig
	OTP       OTPConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Mail      MailConfig
	ImageHost ImageHostConfig
}

type AuthConfig struct {
	JWTSecret                string        `env:"JWT_SECRET, required"`
	TokenTTL                 time.Duration `env:"TOKEN_TTL, default=360h"`
	CookieSecure             bool          `env:"COOKIE_SECURE, default=false"`
	BcryptCost               int           `env:"BCRYPT_COST, default=10"`
	RequireEmailVerification bool          `env:"REQUIRE_EMAIL_VERIFICATION, default=true"`
	AdminEmails              []string      `env:"ADMIN_EMAILS"`
}

type OTPConfig struct {
	TTL    time.Duration `env:"OTP_TTL,    default=5m"`
	Digits int           `env:"OTP_DIGITS, default=6"`
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,            default=account_service"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=50"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
}

type RedisConfig struct {
	// Addr accepts a comma-separated list for cluster deployments.
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MailConfig struct {
	Driver string `env:"MAIL_DRIVER, default=log"`
	From   string `env:"MAIL_FROM,   default=no-reply@localhost"`

	MailgunDomain  string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`
	MailgunAPIBase string `env:"MAILGUN_API_BASE"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT, default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
}

type ImageHostConfig struct {
	Driver    string `env:"IMAGE_HOST_DRIVER, default=s3"`
	Bucket    string `env:"IMAGE_BUCKET"`
	PublicURL string `env:"IMAGE_PUBLIC_URL"`
	Folder    string `env:"IMAGE_FOLDER, default=user-profiles"`

	// CleanupWorkers is the number of background workers removing replaced images.
	CleanupWorkers int `env:"IMAGE_CLEANUP_WORKERS, default=4"`

	S3Region    string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`

	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL, default=true"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith processes configuration from the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	switch c.LockDriver {
	case "redis", "local":
	default:
		return fmt.Errorf("LOCK_DRIVER must be redis or local, got %q", c.LockDriver)
	}
	switch c.Mail.Driver {
	case "mailgun", "smtp", "log":
	default:
		return fmt.Errorf("MAIL_DRIVER must be mailgun, smtp or log, got %q", c.Mail.Driver)
	}
	switch c.ImageHost.Driver {
	case "s3", "gcs", "minio":
	default:
		return fmt.Errorf("IMAGE_HOST_DRIVER must be s3, gcs or minio, got %q", c.ImageHost.Driver)
	}
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return fmt.Errorf("OTP_DIGITS must be between 4 and 10, got %d", c.OTP.Digits)
	}
	return nil
}
