package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	State     StateConfig     `mapstructure:"state"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Invite    InviteConfig    `mapstructure:"invite"`
	Reset     ResetConfig     `mapstructure:"reset"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	GeoIP     GeoIPConfig     `mapstructure:"geoip"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Portal    PortalConfig    `mapstructure:"portal"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
}

type JWTConfig struct {
	SigningKey      string        `mapstructure:"signing_key"`
	Issuer          string        `mapstructure:"issuer"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type OTPConfig struct {
	ExpiryMinutes int `mapstructure:"expiry_minutes"`
	CodeLength    int `mapstructure:"code_length"`
	// TestIdentifiers always receive TestCode instead of a random one.
	TestIdentifiers []string `mapstructure:"test_identifiers"`
	TestCode        string   `mapstructure:"test_code"`
}

type InviteConfig struct {
	ExpiryDays int `mapstructure:"expiry_days"`
}

type ResetConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

type SMTPConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	FromEmail     string `mapstructure:"from_email"`
	FromName      string `mapstructure:"from_name"`
	UseSTARTTLS   bool   `mapstructure:"use_starttls"`
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
}

type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	VerifySID  string `mapstructure:"verify_sid"`
}

type GeoIPConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type JobsConfig struct {
	QueueKeyPrefix   string        `mapstructure:"queue_key_prefix"`
	WorkerPollBlock  time.Duration `mapstructure:"worker_poll_block"`
	MaxAttempts      int           `mapstructure:"max_attempts"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	InactivityWindow time.Duration `mapstructure:"inactivity_window"`
}

type AnalyticsConfig struct {
	SummaryCacheTTL time.Duration `mapstructure:"summary_cache_ttl"`
}

type PortalConfig struct {
	// BaseURL is the public frontend origin used in emailed links.
	BaseURL string `mapstructure:"base_url"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml, overlays environment variables, and returns Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variable override: DATABASE_POSTGRES_HOST -> database.postgres.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("otp.expiry_minutes", 10)
	v.SetDefault("otp.code_length", 6)
	v.SetDefault("invite.expiry_days", 7)
	v.SetDefault("reset.token_ttl", time.Hour)
	v.SetDefault("jobs.queue_key_prefix", "jobs")
	v.SetDefault("jobs.worker_poll_block", 5*time.Second)
	v.SetDefault("jobs.max_attempts", 3)
	v.SetDefault("jobs.sweep_interval", 24*time.Hour)
	v.SetDefault("jobs.inactivity_window", 90*24*time.Hour)
	v.SetDefault("analytics.summary_cache_ttl", 10*time.Minute)
	v.SetDefault("geoip.endpoint", "http://ip-api.com/json")
	v.SetDefault("geoip.timeout", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
