package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of both binaries. Each binary validates only the
// section it runs with.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Seed      SeedConfig      `mapstructure:"seed"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Portal    PortalConfig    `mapstructure:"portal"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Features  FeatureConfig   `mapstructure:"features"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
}

type ServerConfig struct {
	Port     int `mapstructure:"port"`
	GRPCPort int `mapstructure:"grpc_port"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type SeedConfig struct {
	DoctorUsername string `mapstructure:"doctor_username"`
	DoctorPassword string `mapstructure:"doctor_password"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type PortalConfig struct {
	Port       int           `mapstructure:"port"`
	BackendURL string        `mapstructure:"backend_url"`
	Transport  string        `mapstructure:"transport"`
	GRPCAddr   string        `mapstructure:"grpc_addr"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// TrustProxy takes the client address from X-Forwarded-For.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type SessionConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// FeatureConfig switches optional portal capabilities on or off.
type FeatureConfig struct {
	MobileField   bool `mapstructure:"mobile_field"`
	Prescriptions bool `mapstructure:"prescriptions"`
}

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Load reads .env (if present), an optional config.yaml and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	overrideWithEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("database.url", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("seed.doctor_username", "doctor")
	v.SetDefault("seed.doctor_password", "doctor123")
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("portal.port", 8080)
	v.SetDefault("portal.backend_url", "http://127.0.0.1:5000")
	v.SetDefault("portal.transport", TransportHTTP)
	v.SetDefault("portal.grpc_addr", "127.0.0.1:50051")
	v.SetDefault("portal.timeout", 10*time.Second)
	v.SetDefault("portal.trust_proxy", false)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("redis.url", "")
	v.SetDefault("features.mobile_field", true)
	v.SetDefault("features.prescriptions", true)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// overrideWithEnv maps the short variable names used by the deployment
// scripts onto their nested keys.
func overrideWithEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if port := os.Getenv("WEB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Portal.Port = p
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if origins := os.Getenv("WEB_ORIGIN"); origins != "" {
		cfg.CORS.Origins = splitCSV(origins)
	}
}

// ValidateServer checks the settings the backend cannot start without.
func (c *Config) ValidateServer() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if err := validPort(c.Server.Port); err != nil {
		return fmt.Errorf("server port: %w", err)
	}
	if err := validPort(c.Server.GRPCPort); err != nil {
		return fmt.Errorf("grpc port: %w", err)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

// ValidatePortal checks the settings the portal cannot start without.
func (c *Config) ValidatePortal() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if err := validPort(c.Portal.Port); err != nil {
		return fmt.Errorf("portal port: %w", err)
	}
	switch c.Portal.Transport {
	case TransportHTTP:
		if c.Portal.BackendURL == "" {
			return errors.New("portal backend url is required")
		}
	case TransportGRPC:
		if c.Portal.GRPCAddr == "" {
			return errors.New("portal grpc addr is required")
		}
	default:
		return fmt.Errorf("unknown portal transport %q", c.Portal.Transport)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	return nil
}

func validPort(p int) error {
	if p <= 0 || p > 65535 {
		return fmt.Errorf("invalid port %d", p)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
