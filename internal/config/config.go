package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the admin API
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Redis  RedisConfig  `yaml:"redis"`
	Auth   AuthConfig   `yaml:"auth"`
	Media  MediaConfig  `yaml:"media"`
}

type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
	LogLevel     string   `yaml:"log_level"`
	// LogFormat is "json" or "text".
	LogFormat string `yaml:"log_format"`
}

type MongoConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RedisConfig is optional: without an address sessions and cached page
// cursors are kept in process memory.
type RedisConfig struct {
	Addr             string `yaml:"addr"`
	Password         string `yaml:"password"`
	DB               int    `yaml:"db"`
	PagingTTLMinutes int    `yaml:"paging_ttl_minutes"`
}

type AuthConfig struct {
	JWTSecret          string `yaml:"jwt_secret"`
	TokenTTLHours      int    `yaml:"token_ttl_hours"`
	RecentLoginMinutes int    `yaml:"recent_login_minutes"`
	BcryptCost         int    `yaml:"bcrypt_cost"`
}

type MediaConfig struct {
	// Backend is "cloudinary" or "s3".
	Backend     string           `yaml:"backend"`
	MaxUploadMB int              `yaml:"max_upload_mb"`
	Cloudinary  CloudinaryConfig `yaml:"cloudinary"`
	S3          S3Config         `yaml:"s3"`
}

type CloudinaryConfig struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
	BaseURL      string `yaml:"base_url"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Prefix          string `yaml:"prefix"`
	PublicURL       string `yaml:"public_url"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

func (c MongoConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

func (c RedisConfig) PagingTTL() time.Duration {
	return time.Duration(c.PagingTTLMinutes) * time.Minute
}

func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

func (c AuthConfig) RecentLogin() time.Duration {
	return time.Duration(c.RecentLoginMinutes) * time.Minute
}

func (c MediaConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Load reads the YAML file at path. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:5173"}
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "json"
	}
	if c.Mongo.TimeoutSeconds == 0 {
		c.Mongo.TimeoutSeconds = 10
	}
	if c.Redis.PagingTTLMinutes == 0 {
		c.Redis.PagingTTLMinutes = 60
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Auth.RecentLoginMinutes == 0 {
		c.Auth.RecentLoginMinutes = 5
	}
	if c.Media.Backend == "" {
		c.Media.Backend = "cloudinary"
	}
	if c.Media.MaxUploadMB == 0 {
		c.Media.MaxUploadMB = 10
	}
	if c.Media.S3.Region == "" {
		c.Media.S3.Region = "us-east-1"
	}
}

// LoadFromEnv loads the optional YAML file, then a .env file if present, and
// lets environment variables override both.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"API_PORT":                 &c.Server.Port,
		"LOG_LEVEL":                &c.Server.LogLevel,
		"LOG_FORMAT":               &c.Server.LogFormat,
		"MONGO_URI":                &c.Mongo.URI,
		"MONGO_DATABASE":           &c.Mongo.Database,
		"REDIS_ADDR":               &c.Redis.Addr,
		"REDIS_PASSWORD":           &c.Redis.Password,
		"JWT_SECRET":               &c.Auth.JWTSecret,
		"MEDIA_BACKEND":            &c.Media.Backend,
		"CLOUDINARY_CLOUD_NAME":    &c.Media.Cloudinary.CloudName,
		"CLOUDINARY_UPLOAD_PRESET": &c.Media.Cloudinary.UploadPreset,
		"MEDIA_S3_BUCKET":          &c.Media.S3.Bucket,
		"MEDIA_S3_PREFIX":          &c.Media.S3.Prefix,
		"MEDIA_S3_ENDPOINT":        &c.Media.S3.Endpoint,
		"MEDIA_PUBLIC_URL":         &c.Media.S3.PublicURL,
		"AWS_REGION":               &c.Media.S3.Region,
		"AWS_ACCESS_KEY_ID":        &c.Media.S3.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY":    &c.Media.S3.SecretAccessKey,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MONGO_TIMEOUT_SECONDS": &c.Mongo.TimeoutSeconds,
		"REDIS_DB":              &c.Redis.DB,
		"PAGING_TTL_MINUTES":    &c.Redis.PagingTTLMinutes,
		"TOKEN_TTL_HOURS":       &c.Auth.TokenTTLHours,
		"RECENT_LOGIN_MINUTES":  &c.Auth.RecentLoginMinutes,
		"BCRYPT_COST":           &c.Auth.BcryptCost,
		"MEDIA_MAX_UPLOAD_MB":   &c.Media.MaxUploadMB,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowOrigins = origins
	}
	return nil
}

// ValidateDatabase checks what every command needs to reach MongoDB.
func (c *Config) ValidateDatabase() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	return errors.Join(errs...)
}

// Validate checks everything the HTTP server needs.
func (c *Config) Validate() error {
	errs := []error{c.ValidateDatabase()}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31) {
		errs = append(errs, errors.New("bcrypt cost must be between 4 and 31"))
	}
	switch c.Media.Backend {
	case "cloudinary":
		if c.Media.Cloudinary.CloudName == "" || c.Media.Cloudinary.UploadPreset == "" {
			errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET are required for the cloudinary media backend"))
		}
	case "s3":
		if c.Media.S3.Bucket == "" {
			errs = append(errs, errors.New("MEDIA_S3_BUCKET is required for the s3 media backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown media backend %q", c.Media.Backend))
	}
	return errors.Join(errs...)
}
