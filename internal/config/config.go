package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/xo/dburl"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `mapstructure:"port"`

	DB       DBConfig       `mapstructure:"db"`
	Authz    AuthzConfig    `mapstructure:"authz"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// DBConfig selects and reaches the SQL store.
type DBConfig struct {
	URL                string `mapstructure:"url"`  // overrides the discrete fields when set
	Type               string `mapstructure:"type"` // mysql, postgres, sqlite, sqlite-pure, sqlserver
	Host               string `mapstructure:"host"`
	Port               string `mapstructure:"port"`
	Database           string `mapstructure:"database"`
	AppUser            string `mapstructure:"app_user"`
	AppPassword        string `mapstructure:"app_password"`
	AppConnectionLimit int    `mapstructure:"app_connection_limit"`
	LogLevel           string `mapstructure:"log_level"` // silent, error, warn, info
}

// AuthzConfig points at the Authorizer session service.
type AuthzConfig struct {
	URL      string `mapstructure:"url"`
	ClientID string `mapstructure:"client_id"`
}

// RedisConfig enables the search cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MailConfig enables reviewer notifications when SMTPHost and From are set.
type MailConfig struct {
	SMTPHost      string `mapstructure:"smtp_host"`
	SMTPPort      int    `mapstructure:"smtp_port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	From          string `mapstructure:"from"`
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
	// Timeout bounds the SMTP dial and each read and write
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// WorkflowConfig holds the opt-in strict policies of the workflow engine.
// The zero value reproduces the permissive legacy behavior.
type WorkflowConfig struct {
	StrictStatusTransitions bool          `mapstructure:"strict_status_transitions"`
	UniqueReviewAssignments bool          `mapstructure:"unique_review_assignments"`
	ForbidSelfCitation      bool          `mapstructure:"forbid_self_citation"`
	UnderReviewOnAssignment bool          `mapstructure:"under_review_on_assignment"`
	TxTimeout               time.Duration `mapstructure:"tx_timeout"`
}

// MailEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) MailEnabled() bool {
	return c.Mail.SMTPHost != "" && c.Mail.From != ""
}

// Load loads configuration from an optional .env file, an optional config
// file and environment variables, in increasing order of precedence.
// Environment variable names follow the keys with dots replaced by
// underscores, e.g. DB_TYPE or WORKFLOW_TX_TIMEOUT.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyDBURL(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")

	v.SetDefault("db.url", "")
	v.SetDefault("db.type", "mysql")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.database", "")
	v.SetDefault("db.app_user", "")
	v.SetDefault("db.app_password", "")
	v.SetDefault("db.app_connection_limit", 5)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("authz.url", "")
	v.SetDefault("authz.client_id", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")

	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.skip_tls_verify", false)
	v.SetDefault("mail.timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("workflow.strict_status_transitions", false)
	v.SetDefault("workflow.unique_review_assignments", false)
	v.SetDefault("workflow.forbid_self_citation", false)
	v.SetDefault("workflow.under_review_on_assignment", false)
	v.SetDefault("workflow.tx_timeout", "10s")
}

// applyDBURL replaces the discrete database settings with the ones encoded in DB_URL.
func (c *Config) applyDBURL() error {
	if c.DB.URL == "" {
		return nil
	}
	u, err := dburl.Parse(c.DB.URL)
	if err != nil {
		return fmt.Errorf("invalid DB_URL: %w", err)
	}

	switch u.Driver {
	case "mysql":
		c.DB.Type = "mysql"
	case "postgres", "pgx":
		c.DB.Type = "postgres"
	case "sqlite3":
		c.DB.Type = "sqlite"
	case "sqlite", "moderncsqlite":
		c.DB.Type = "sqlite-pure"
	case "sqlserver":
		c.DB.Type = "sqlserver"
	default:
		return fmt.Errorf("unsupported DB_URL driver: %s", u.Driver)
	}

	if c.DB.Type == "sqlite" || c.DB.Type == "sqlite-pure" {
		c.DB.Database = u.DSN
		return nil
	}

	c.DB.Host = u.Hostname()
	if port := u.Port(); port != "" {
		c.DB.Port = port
	}
	c.DB.Database = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		c.DB.AppUser = u.User.Username()
		c.DB.AppPassword, _ = u.User.Password()
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.DB.Database == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.DB.Type != "sqlite" && c.DB.Type != "sqlite-pure" && c.DB.AppUser == "" {
		return fmt.Errorf("DB_APP_USER is required")
	}
	if c.DB.AppConnectionLimit <= 0 {
		return fmt.Errorf("DB_APP_CONNECTION_LIMIT must be positive")
	}
	if c.Workflow.TxTimeout < 0 {
		return fmt.Errorf("WORKFLOW_TX_TIMEOUT must not be negative")
	}
	return nil
}

// ValidateServer checks the additional settings the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Authz.URL == "" {
		return fmt.Errorf("AUTHZ_URL is required")
	}
	if c.Authz.ClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	return nil
}
