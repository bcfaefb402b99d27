package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Security    SecurityConfig
	CORS        CORSConfig
	Logging     LoggingConfig
	MusicBrainz MusicBrainzConfig
	CoverArt    CoverArtConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int
	Host        string
	HTTPTimeout time.Duration // outbound calls to catalog, cover art and Lidarr
}

// SecurityConfig holds session signing settings.
type SecurityConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// MusicBrainzConfig configures the metadata catalog client.
type MusicBrainzConfig struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
}

// CoverArtConfig configures the cover art resolver.
type CoverArtConfig struct {
	BaseURL     string
	Concurrency int
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the environment, after applying any .env
// file found in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if err := cfg.loadDatabase(); err != nil {
		return nil, fmt.Errorf("load database config: %w", err)
	}
	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if err := cfg.loadSecurity(); err != nil {
		return nil, fmt.Errorf("load security config: %w", err)
	}
	cfg.loadCORS()
	cfg.loadLogging()
	if err := cfg.loadUpstreams(); err != nil {
		return nil, fmt.Errorf("load upstream config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadDatabase() error {
	c.Database.URL = os.Getenv("DATABASE_URL")
	if c.Database.URL != "" {
		return nil
	}

	c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	c.Database.Port = port

	if c.Database.User != "" && c.Database.Name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return nil
}

func (c *Config) loadServer() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")

	c.Server.HTTPTimeout, err = time.ParseDuration(getEnvOrDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	return nil
}

func (c *Config) loadSecurity() error {
	c.Security.JWTSecret = os.Getenv("JWT_SECRET")

	ttl, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "720h"))
	if err != nil {
		return fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	c.Security.SessionTTL = ttl
	return nil
}

func (c *Config) loadCORS() {
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
		return
	}
	for _, origin := range strings.Split(originsEnv, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, trimmed)
		}
	}
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
}

func (c *Config) loadUpstreams() error {
	c.MusicBrainz.BaseURL = getEnvOrDefault("MUSICBRAINZ_BASE_URL", "https://musicbrainz.org/ws/2")
	c.MusicBrainz.UserAgent = getEnvOrDefault("MUSICBRAINZ_USER_AGENT", "RecordStore/1.0.0 (https://github.com/recordstore)")

	interval, err := time.ParseDuration(getEnvOrDefault("MUSICBRAINZ_MIN_INTERVAL", "1100ms"))
	if err != nil {
		return fmt.Errorf("invalid MUSICBRAINZ_MIN_INTERVAL: %w", err)
	}
	c.MusicBrainz.MinInterval = interval

	c.CoverArt.BaseURL = getEnvOrDefault("COVERART_BASE_URL", "https://coverartarchive.org")
	concurrency, err := strconv.Atoi(getEnvOrDefault("COVERART_CONCURRENCY", "8"))
	if err != nil {
		return fmt.Errorf("invalid COVERART_CONCURRENCY: %w", err)
	}
	c.CoverArt.Concurrency = concurrency
	return nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.URL == "" {
		problems = append(problems, "DATABASE_URL is required (or DB_HOST, DB_USER, DB_NAME)")
	}
	if len(c.Security.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.Security.SessionTTL <= 0 {
		problems = append(problems, "SESSION_TTL must be positive")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	if c.MusicBrainz.MinInterval < time.Second {
		problems = append(problems, "MUSICBRAINZ_MIN_INTERVAL must be at least 1s")
	}
	if c.CoverArt.Concurrency < 1 {
		problems = append(problems, "COVERART_CONCURRENCY must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
