package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"
)

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	JWT         JWTConfig      `yaml:"jwt"`
	Log         LogConfig      `yaml:"log"`
	App         AppConfig      `yaml:"app"`
	Certificate Certs          `yaml:"certificate"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Migrate  bool   `yaml:"migrate"`
}

type JWTConfig struct {
	Secret          string `yaml:"secret"`
	TokenExpiryMins int    `yaml:"token_expiry_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug / info / warn / error
	Format string `yaml:"format"` // text / json
}

type AppConfig struct {
	TimeZone    string `yaml:"timezone"`
	CSVEncoding string `yaml:"csv_encoding"` // utf-8 (BOM付き) or sjis
	PDFFontPath string `yaml:"pdf_font_path"`
}

// TLS 証明書。空なら平文で待ち受ける
type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(buf)
}

func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.overrideWithEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) overrideWithEnv() {
	if v := os.Getenv("APP_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DB.Port = n
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.DB.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DB.DBName = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("PDF_FONT_PATH"); v != "" {
		c.App.PDFFontPath = v
	}
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.JWT.TokenExpiryMins == 0 {
		c.JWT.TokenExpiryMins = 24 * 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.App.TimeZone == "" {
		c.App.TimeZone = "Asia/Tokyo"
	}
	if c.App.CSVEncoding == "" {
		c.App.CSVEncoding = "utf-8"
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q: got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.DB.Host == "" || c.DB.DBName == "" {
		return fmt.Errorf("database host and dbname are required")
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.DB.Port)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Mode == ModeRelease && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt secret must be at least 32 bytes in release mode")
	}
	if c.App.CSVEncoding != "utf-8" && c.App.CSVEncoding != "sjis" {
		return fmt.Errorf("csv_encoding must be utf-8 or sjis: got %q", c.App.CSVEncoding)
	}
	if c.App.PDFFontPath != "" {
		if _, err := os.Stat(c.App.PDFFontPath); err != nil {
			return fmt.Errorf("pdf_font_path: %w", err)
		}
	}
	if _, err := time.LoadLocation(c.App.TimeZone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.App.TimeZone, err)
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.TokenExpiryMins) * time.Minute
}

func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}
