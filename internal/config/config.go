package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `json:"server"`
	Uploads     UploadsConfig     `json:"uploads"`
	Storage     StorageConfig     `json:"storage"`
	Certificate CertificateConfig `json:"certificate"`
	Retention   RetentionConfig   `json:"retention"`
	Logging     LoggingConfig     `json:"logging"`
	Metrics     MetricsConfig     `json:"metrics"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// UnmarshalJSON accepts timeouts as duration strings ("15s") or as integer
// nanoseconds.
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	type plain ServerConfig
	aux := struct {
		*plain
		ReadTimeout     json.RawMessage `json:"read_timeout"`
		WriteTimeout    json.RawMessage `json:"write_timeout"`
		IdleTimeout     json.RawMessage `json:"idle_timeout"`
		ShutdownTimeout json.RawMessage `json:"shutdown_timeout"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *time.Duration
	}{
		{"read_timeout", aux.ReadTimeout, &s.ReadTimeout},
		{"write_timeout", aux.WriteTimeout, &s.WriteTimeout},
		{"idle_timeout", aux.IdleTimeout, &s.IdleTimeout},
		{"shutdown_timeout", aux.ShutdownTimeout, &s.ShutdownTimeout},
	}
	for _, f := range fields {
		if err := parseDuration(f.name, f.raw, f.dst); err != nil {
			return err
		}
	}
	return nil
}

// UploadsConfig limits the size of submitted forms and images
type UploadsConfig struct {
	MaxImageBytes   int64 `json:"max_image_bytes"`
	MaxImagePixels  int64 `json:"max_image_pixels"`
	MaxRequestBytes int64 `json:"max_request_bytes"`
}

// StorageConfig selects where finished certificates are written
type StorageConfig struct {
	Driver    string   `json:"driver"` // local, s3
	Directory string   `json:"directory"`
	S3        S3Config `json:"s3"`
}

// S3Config
type S3Config struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Prefix          string `json:"prefix"`
	Endpoint        string `json:"endpoint,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty"`
	UsePathStyle    bool   `json:"use_path_style"`
}

// CertificateConfig holds deployment level certificate settings
type CertificateConfig struct {
	CodePrefix  string `json:"code_prefix"`
	PhotoPixels int    `json:"photo_pixels"`
	Compress    bool   `json:"compress"`
}

// RetentionConfig controls the sweeper that deletes old certificates
type RetentionConfig struct {
	Enabled  bool          `json:"enabled"`
	MaxAge   time.Duration `json:"max_age"`
	Schedule string        `json:"schedule"` // cron expression
}

// UnmarshalJSON accepts max_age as a duration string ("24h") or as integer
// nanoseconds.
func (r *RetentionConfig) UnmarshalJSON(data []byte) error {
	type plain RetentionConfig
	aux := struct {
		*plain
		MaxAge json.RawMessage `json:"max_age"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	return parseDuration("max_age", aux.MaxAge, &r.MaxAge)
}

// parseDuration leaves dst untouched when raw is absent.
func parseDuration(name string, raw json.RawMessage, dst *time.Duration) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = d
		return nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("invalid %s: want a duration string or nanoseconds", name)
	}
	*dst = time.Duration(n)
	return nil
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Environment string `json:"environment"` // development, production
}

// MetricsConfig
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Uploads: UploadsConfig{
			MaxImageBytes:   10 << 20,
			MaxImagePixels:  40_000_000,
			MaxRequestBytes: 32 << 20,
		},
		Storage: StorageConfig{
			Driver:    "local",
			Directory: "static/uploads",
		},
		Certificate: CertificateConfig{
			CodePrefix:  "KDO-BMG",
			PhotoPixels: 150,
			Compress:    true,
		},
		Retention: RetentionConfig{
			Enabled:  true,
			MaxAge:   24 * time.Hour,
			Schedule: "@every 1h",
		},
		Logging: LoggingConfig{
			Level:       "info",
			Environment: "development",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig loads configuration from .env, the JSON file at configPath and
// environment variables, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := Default()

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if v := os.Getenv("UPLOAD_MAX_IMAGE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Uploads.MaxImageBytes = n
		}
	}
	if v := os.Getenv("UPLOAD_MAX_IMAGE_PIXELS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Uploads.MaxImagePixels = n
		}
	}
	if v := os.Getenv("UPLOAD_MAX_REQUEST_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Uploads.MaxRequestBytes = n
		}
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		config.Storage.Driver = strings.ToLower(driver)
	}
	if dir := os.Getenv("STORAGE_DIRECTORY"); dir != "" {
		config.Storage.Directory = dir
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		config.Storage.S3.Bucket = bucket
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Storage.S3.Region = region
	}
	if prefix := os.Getenv("S3_PREFIX"); prefix != "" {
		config.Storage.S3.Prefix = prefix
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		config.Storage.S3.Endpoint = endpoint
		config.Storage.S3.UsePathStyle = true
	}
	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		config.Storage.S3.AccessKeyID = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		config.Storage.S3.SecretAccessKey = secret
	}
	if prefix := os.Getenv("CERTIFICATE_CODE_PREFIX"); prefix != "" {
		config.Certificate.CodePrefix = prefix
	}
	if v := os.Getenv("RETENTION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Retention.Enabled = b
		}
	}
	if v := os.Getenv("RETENTION_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Retention.MaxAge = d
		}
	}
	if schedule := os.Getenv("RETENTION_SCHEDULE"); schedule != "" {
		config.Retention.Schedule = schedule
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}
	if env := os.Getenv("LOG_ENV"); env != "" {
		config.Logging.Environment = strings.ToLower(env)
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Metrics.Enabled = b
		}
	}
}

// Validate reports configuration values the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "local":
		if c.Storage.Directory == "" {
			return errors.New("config: storage.directory is required for the local driver")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("config: storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Certificate.CodePrefix == "" {
		return errors.New("config: certificate.code_prefix must not be empty")
	}
	if c.Certificate.PhotoPixels <= 0 {
		return errors.New("config: certificate.photo_pixels must be positive")
	}
	if c.Uploads.MaxImageBytes <= 0 || c.Uploads.MaxImagePixels <= 0 || c.Uploads.MaxRequestBytes <= 0 {
		return errors.New("config: upload limits must be positive")
	}
	if c.Retention.Enabled && (c.Retention.MaxAge <= 0 || c.Retention.Schedule == "") {
		return errors.New("config: retention needs a positive max_age and a schedule")
	}
	return nil
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
