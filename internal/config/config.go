// Package config provides configuration loading for the gear report service.
// Configuration is read from a YAML file and overridden with environment variables.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "gearreport/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for all binaries.
type Config struct {
	Server        ServerConfig        `json:"server" yaml:"server"`
	Database      DatabaseConfig      `json:"database" yaml:"database"`
	Storage       StorageConfig       `json:"storage" yaml:"storage"`
	Gallery       GalleryConfig       `json:"gallery" yaml:"gallery"`
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
	AppBaseURL    string   `json:"app_base_url" yaml:"app_base_url"`
	// AdminUsername/AdminPassword bootstrap the first moderator account at
	// startup when no matching account exists.
	AdminUsername string `json:"admin_username" yaml:"admin_username"`
	AdminPassword string `json:"admin_password" yaml:"admin_password"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// StorageConfig represents object storage (S3) configuration for submission photos.
type StorageConfig struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint"` // empty for AWS, set for MinIO and friends
	Region          string `json:"region" yaml:"region"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	// PublicBaseURL is prepended to object keys to form the URL stored on
	// the submission. Defaults to the virtual-hosted bucket URL when empty.
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url"`
	UsePathStyle  bool   `json:"use_path_style" yaml:"use_path_style"`
}

// GalleryConfig holds public gallery behavior.
type GalleryConfig struct {
	// JitterRadiusDeg is the coordinate randomization radius, in degrees,
	// applied to public map markers. 0.1 is roughly 5 km.
	JitterRadiusDeg float64 `json:"jitter_radius_deg" yaml:"jitter_radius_deg"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"` // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"` // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	ServiceName    string            `json:"service_name" yaml:"service_name"`
	ServiceVersion string            `json:"service_version" yaml:"service_version"`
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"`
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (*Config, error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to load config")
	}

	config.overrideFromEnv()

	if config.Server.Port == "" {
		config.Server.Port = DefaultServerPort
	}
	if config.Gallery.JitterRadiusDeg == 0 {
		config.Gallery.JitterRadiusDeg = DefaultJitterRadiusDeg
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = DatabaseConnMaxLifetime
	}

	return config, nil
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnvWithPrefix(c, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file with potential local overrides
func loadConfigWithOverrides() (*Config, error) {
	if envPath := os.Getenv("GEARREPORT_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to load config from %s", envPath)
		}
		return config, nil
	}

	return loadConfigFromFile("config.yaml")
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
