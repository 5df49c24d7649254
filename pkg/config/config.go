package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the process configuration. Sources, lowest priority first:
// defaults, the YAML file given to Load or named by CONFIG_PATH, the .env
// file, and finally the process environment.
type Config struct {
	Port                    string `yaml:"port" env:"PORT" env-default:"8080"`
	MetricsPort             string `yaml:"metrics_port" env:"METRICS_PORT" env-default:"9090"`
	Env                     string `yaml:"env" env:"ENV" env-default:"development"`
	FirebaseCredentialsPath string `yaml:"firebase_credentials_path" env:"FIREBASE_CREDENTIALS_PATH"`

	Log      LogConfig      `yaml:"log"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Mail     MailConfig     `yaml:"mail"`
	Limits   LimitsConfig   `yaml:"limits"`
	Pages    PageConfig     `yaml:"pages"`
	AuthRate RateConfig     `yaml:"auth_rate"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

type PostgresConfig struct {
	ConnStr string `yaml:"conn_str" env:"POSTGRES_CONN_STR"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"socialmedia"`
}

// RedisConfig is optional. Without an address the auth rate limiter keeps its
// counters in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"72h"`
}

// MailConfig selects the password reset mailer. With no sender address the
// codes are only written to the log, which production refuses.
type MailConfig struct {
	AWSRegion string `yaml:"aws_region" env:"AWS_REGION"`
	From      string `yaml:"from" env:"MAIL_FROM"`
}

type LimitsConfig struct {
	MaxContentLength int `yaml:"max_content_length" env:"MAX_CONTENT_LENGTH" env-default:"5000"`
	MaxImages        int `yaml:"max_images" env:"MAX_IMAGES" env-default:"10"`
	MaxPostsPerHour  int `yaml:"max_posts_per_hour" env:"MAX_POSTS_PER_HOUR" env-default:"10"`
	MaxCommentLength int `yaml:"max_comment_length" env:"MAX_COMMENT_LENGTH" env-default:"1000"`
}

type PageConfig struct {
	Followers     int `yaml:"followers" env:"FOLLOWERS_PAGE_SIZE" env-default:"20"`
	Following     int `yaml:"following" env:"FOLLOWING_PAGE_SIZE" env-default:"20"`
	Comments      int `yaml:"comments" env:"COMMENTS_PAGE_SIZE" env-default:"10"`
	Posts         int `yaml:"posts" env:"POSTS_PAGE_SIZE" env-default:"10"`
	Notifications int `yaml:"notifications" env:"NOTIFICATIONS_PAGE_SIZE" env-default:"20"`
	Max           int `yaml:"max" env:"MAX_PAGE_SIZE" env-default:"50"`
}

// RateConfig bounds unauthenticated auth endpoints per client IP.
type RateConfig struct {
	Limit  int           `yaml:"limit" env:"AUTH_RATE_LIMIT" env-default:"20"`
	Window time.Duration `yaml:"window" env:"AUTH_RATE_WINDOW" env-default:"1m"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the configuration. An empty path falls back to CONFIG_PATH and
// then to the environment alone.
func Load(path string) (*Config, error) {
	// .env is optional; variables already set in the process win.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Postgres.ConnStr == "" {
		return fmt.Errorf("POSTGRES_CONN_STR is required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.IsProduction() && c.Mail.From == "" {
		return fmt.Errorf("MAIL_FROM is required in production")
	}

	if c.Limits.MaxContentLength <= 0 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be > 0")
	}
	if c.Limits.MaxImages < 0 {
		return fmt.Errorf("MAX_IMAGES must be >= 0")
	}
	if c.Limits.MaxPostsPerHour <= 0 {
		return fmt.Errorf("MAX_POSTS_PER_HOUR must be > 0")
	}
	if c.Limits.MaxCommentLength <= 0 {
		return fmt.Errorf("MAX_COMMENT_LENGTH must be > 0")
	}

	if c.Pages.Max <= 0 {
		return fmt.Errorf("MAX_PAGE_SIZE must be > 0")
	}
	for name, size := range map[string]int{
		"FOLLOWERS_PAGE_SIZE":     c.Pages.Followers,
		"FOLLOWING_PAGE_SIZE":     c.Pages.Following,
		"COMMENTS_PAGE_SIZE":      c.Pages.Comments,
		"POSTS_PAGE_SIZE":         c.Pages.Posts,
		"NOTIFICATIONS_PAGE_SIZE": c.Pages.Notifications,
	} {
		if size <= 0 || size > c.Pages.Max {
			return fmt.Errorf("%s must be between 1 and MAX_PAGE_SIZE", name)
		}
	}

	if c.AuthRate.Limit <= 0 || c.AuthRate.Window <= 0 {
		return fmt.Errorf("AUTH_RATE_LIMIT and AUTH_RATE_WINDOW must be > 0")
	}
	return nil
}
