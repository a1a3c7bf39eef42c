package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	Mongo  Mongo  `envPrefix:"MONGO_"`
	JWT    JWT    `envPrefix:"JWT_"`
	Upload Upload `envPrefix:"UPLOAD_"`
	Admin  Admin  `envPrefix:"ADMIN_"`

	Log     Log
	Storage Storage
	Redis   Redis
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Mongo struct {
	URI string `env:"URI,required,notEmpty"`
	DB  string `env:"DB" envDefault:"portfolio"`
	// ForceTLS12 pins TLS 1.2, needed by some Atlas clusters.
	ForceTLS12  bool `env:"FORCE_TLS_CONFIG" envDefault:"false"`
	InsecureTLS bool `env:"INSECURE_TLS" envDefault:"false"`
}

type JWT struct {
	Secret string        `env:"SECRET,required,notEmpty"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

type Upload struct {
	Dir      string `env:"DIR" envDefault:"./uploads"`
	MaxBytes int64  `env:"MAX_BYTES" envDefault:"5242880"`
}

type Storage struct {
	Driver         string `env:"STORAGE_DRIVER" envDefault:"local"`
	GCSBucket      string `env:"GCS_BUCKET"`
	GCSPrefix      string `env:"GCS_PREFIX" envDefault:"cvs"`
	GCSCredentials string `env:"GCS_CREDENTIALS_FILE"`
}

// Redis is optional; rate limiting is off when Addr is empty.
type Redis struct {
	Addr       string        `env:"REDIS_ADDR"`
	RateLimit  int           `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`
	RateWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

type Admin struct {
	Name     string `env:"NAME" envDefault:"Admin"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "local":
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}
