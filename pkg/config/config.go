package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ErrMissingGeneratorKey is returned when remote generation is enabled without credentials.
var ErrMissingGeneratorKey = errors.New("config: GENERATOR_API_KEY is required when GENERATOR_REMOTE_ENABLED=true")

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Tracing    TracingConfig
	Generator  GeneratorConfig
	Compliance ComplianceConfig
	Batch      BatchConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig controls bearer-token validation. Tokens are issued elsewhere and share the secret.
type JWTConfig struct {
	Enabled bool
	Secret  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TracingConfig toggles OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Endpoint     string
	Insecure     bool
	SampleRatio  float64
	BatchTimeout time.Duration
}

// GeneratorConfig configures the remote text-generation endpoint used for timetable drafts.
type GeneratorConfig struct {
	RemoteEnabled bool
	BaseURL       string
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxTokens     int
	Temperature   float64
}

// ComplianceConfig governs caching of compliance reports for stored timetables.
type ComplianceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// BatchConfig tunes the multi-class generation queue.
type BatchConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	ResultTTL  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Enabled: v.GetBool("AUTH_ENABLED"),
		Secret:  v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Tracing = TracingConfig{
		Enabled:      v.GetBool("OTEL_ENABLED"),
		ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
		Endpoint:     v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Insecure:     v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
		SampleRatio:  clampRatio(v.GetFloat64("OTEL_SAMPLER_RATIO")),
		BatchTimeout: parseDuration(v.GetString("OTEL_BATCH_TIMEOUT"), 5*time.Second),
	}

	cfg.Generator = GeneratorConfig{
		RemoteEnabled: v.GetBool("GENERATOR_REMOTE_ENABLED"),
		BaseURL:       strings.TrimRight(v.GetString("GENERATOR_BASE_URL"), "/"),
		APIKey:        strings.TrimSpace(v.GetString("GENERATOR_API_KEY")),
		Model:         v.GetString("GENERATOR_MODEL"),
		Timeout:       parseDuration(v.GetString("GENERATOR_TIMEOUT"), 30*time.Second),
		MaxTokens:     v.GetInt("GENERATOR_MAX_TOKENS"),
		Temperature:   v.GetFloat64("GENERATOR_TEMPERATURE"),
	}

	cfg.Compliance = ComplianceConfig{
		CacheEnabled: v.GetBool("COMPLIANCE_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("COMPLIANCE_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Batch = BatchConfig{
		Workers:    v.GetInt("BATCH_WORKERS"),
		BufferSize: v.GetInt("BATCH_BUFFER_SIZE"),
		MaxRetries: v.GetInt("BATCH_MAX_RETRIES"),
		ResultTTL:  parseDuration(v.GetString("BATCH_RESULT_TTL"), time.Hour),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports configuration errors that must stop the process before serving traffic.
func (c *Config) Validate() error {
	if c.Generator.RemoteEnabled && c.Generator.APIKey == "" {
		return ErrMissingGeneratorKey
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required when AUTH_ENABLED=true")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "nep_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "nep-timetable-api")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SAMPLER_RATIO", 0.1)
	v.SetDefault("OTEL_BATCH_TIMEOUT", "5s")

	v.SetDefault("GENERATOR_REMOTE_ENABLED", false)
	v.SetDefault("GENERATOR_BASE_URL", "https://api.openai.com")
	v.SetDefault("GENERATOR_API_KEY", "")
	v.SetDefault("GENERATOR_MODEL", "gpt-4")
	v.SetDefault("GENERATOR_TIMEOUT", "30s")
	v.SetDefault("GENERATOR_MAX_TOKENS", 4000)
	v.SetDefault("GENERATOR_TEMPERATURE", 0.2)

	v.SetDefault("COMPLIANCE_CACHE_ENABLED", false)
	v.SetDefault("COMPLIANCE_CACHE_TTL", "10m")

	v.SetDefault("BATCH_WORKERS", 2)
	v.SetDefault("BATCH_BUFFER_SIZE", 32)
	v.SetDefault("BATCH_MAX_RETRIES", 0)
	v.SetDefault("BATCH_RESULT_TTL", "1h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func clampRatio(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
