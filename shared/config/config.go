package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort      int           `yaml:"http_port" validate:"required"`
	JwtTTL        time.Duration `yaml:"jwt_ttl" validate:"required"`
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`
	SecureCookies bool          `yaml:"secure_cookies"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	MaxTotalAttachmentSize     int64    `yaml:"max_total_attachment_size" validate:"required"`
	MaxAttachments             int      `yaml:"max_attachments" validate:"required"`
	AllowedAttachmentMimeTypes []string `yaml:"allowed_attachment_mime_types" validate:"required,min=1"`

	MinDescriptionLength  int `yaml:"min_description_length"`
	RecentActivitiesLimit int `yaml:"recent_activities_limit"`

	Media Media `yaml:"media"`
}

type Media struct {
	Backend       string `yaml:"backend" validate:"omitempty,oneof=fs s3"`
	RootPath      string `yaml:"root_path"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type S3 struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type Private struct {
	JwtKey                     string `yaml:"jwt_key" validate:"required"`
	Pg                         Pg     `yaml:"pg" validate:"required"`
	S3                         S3     `yaml:"s3"`
	SupervisorRegistrationCode string `yaml:"supervisor_registration_code"`
}

const (
	defaultMinDescriptionLength  = 5
	defaultRecentActivitiesLimit = 5
	defaultMediaRoot             = "media"
)

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func (c *Config) MinDescriptionLength() int {
	return c.Public.MinDescriptionLength
}

func (c *Config) RecentActivitiesLimit() int {
	return c.Public.RecentActivitiesLimit
}

func (c *Config) SupervisorRegistrationCode() string {
	return c.Private.SupervisorRegistrationCode
}

func (c *Config) applyDefaults() {
	if c.Public.MinDescriptionLength <= 0 {
		c.Public.MinDescriptionLength = defaultMinDescriptionLength
	}
	if c.Public.RecentActivitiesLimit <= 0 {
		c.Public.RecentActivitiesLimit = defaultRecentActivitiesLimit
	}
	if c.Public.Media.Backend == "" {
		c.Public.Media.Backend = "fs"
	}
	if c.Public.Media.RootPath == "" {
		c.Public.Media.RootPath = defaultMediaRoot
	}
	if c.Public.LogLevel == "" {
		c.Public.LogLevel = "info"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	cfg.applyDefaults()
	return cfg
}

// Validate checks required fields and cross-field rules.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Public.Media.Backend == "s3" && (c.Private.S3.Bucket == "" || c.Private.S3.Region == "") {
		return fmt.Errorf("invalid config: s3 media backend needs s3.bucket and s3.region")
	}
	return nil
}
