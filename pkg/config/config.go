package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Sale         SaleConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LATSPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"LATSPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LATSPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LATSPOS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LATSPOS_DB_DSN"`
	Driver string `envconfig:"LATSPOS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"LATSPOS_DB_HOST"`
	Port     int    `envconfig:"LATSPOS_DB_PORT" default:"5432"`
	User     string `envconfig:"LATSPOS_DB_USER"`
	Password string `envconfig:"LATSPOS_DB_PASSWORD"`
	Name     string `envconfig:"LATSPOS_DB_NAME"`
	SSLMode  string `envconfig:"LATSPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LATSPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LATSPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LATSPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LATSPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database config incomplete: set LATSPOS_DB_DSN or host/user/name")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	query := dsn.Query()
	query.Set("sslmode", d.SSLMode)
	dsn.RawQuery = query.Encode()
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"LATSPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LATSPOS_REDIS_ADDR"`
	Password     string        `envconfig:"LATSPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LATSPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LATSPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LATSPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LATSPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LATSPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LATSPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"LATSPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"LATSPOS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"LATSPOS_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"LATSPOS_SESSION_TTL_MINUTES" default:"720"`
}

// SessionTTL returns the operator session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LATSPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LATSPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LATSPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LATSPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LATSPOS_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LATSPOS_AUTO_MIGRATE" default:"false"`
}

// SaleConfig tunes the sale pipeline without recompiling.
type SaleConfig struct {
	IdempotencyTTL time.Duration `envconfig:"LATSPOS_SALE_IDEMPOTENCY_TTL" default:"168h"`
	LoyaltyDivisor int           `envconfig:"LATSPOS_SALE_LOYALTY_DIVISOR" default:"100"`
}
