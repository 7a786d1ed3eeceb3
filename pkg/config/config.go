package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Store        StoreConfig
	DB           DBConfig
	Redis        RedisConfig
	Identity     IdentityConfig
	Checkout     CheckoutConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	if cfg.Store.UsesSQL() {
		if err := cfg.DB.EnsureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Store.UsesRedis() && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("either %s or %s is required for the redis store", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OBOHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"OBOHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"OBOHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OBOHUB_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"OBOHUB_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the backend for the per-user document store.
type StoreConfig struct {
	Backend string `envconfig:"OBOHUB_STORE_BACKEND" default:"memory"`
	// SessionIdle is how long an unused shopper container stays in memory.
	SessionIdle time.Duration `envconfig:"OBOHUB_STORE_SESSION_IDLE" default:"30m"`
}

func (s StoreConfig) normalized() string {
	return strings.ToLower(strings.TrimSpace(s.Backend))
}

func (s StoreConfig) UsesSQL() bool {
	return s.normalized() == StoreBackendSQL
}

func (s StoreConfig) UsesRedis() bool {
	return s.normalized() == StoreBackendRedis
}

func (s StoreConfig) validate() error {
	switch s.normalized() {
	case StoreBackendMemory, StoreBackendSQL, StoreBackendRedis:
		return nil
	}
	return fmt.Errorf("unsupported store backend %q", s.Backend)
}

type DBConfig struct {
	DSN    string `envconfig:"OBOHUB_DB_DSN"`
	Driver string `envconfig:"OBOHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"OBOHUB_DB_HOST"`
	Port     int    `envconfig:"OBOHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"OBOHUB_DB_USER"`
	Password string `envconfig:"OBOHUB_DB_PASSWORD"`
	Name     string `envconfig:"OBOHUB_DB_NAME"`
	SSLMode  string `envconfig:"OBOHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OBOHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OBOHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OBOHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OBOHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// Queries slower than this are logged at warn level; zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"OBOHUB_DB_SLOW_QUERY" default:"200ms"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"OBOHUB_REDIS_URL"`
	Address      string        `envconfig:"OBOHUB_REDIS_ADDR"`
	Password     string        `envconfig:"OBOHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"OBOHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OBOHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OBOHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OBOHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OBOHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OBOHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IdentityConfig describes how tokens minted by the identity provider are verified.
type IdentityConfig struct {
	Secret   string `envconfig:"OBOHUB_IDENTITY_JWT_SECRET" required:"true"`
	Issuer   string `envconfig:"OBOHUB_IDENTITY_JWT_ISSUER" required:"true"`
	Audience string `envconfig:"OBOHUB_IDENTITY_JWT_AUDIENCE"`
}

// CheckoutConfig holds the display-only pricing knobs used by checkout quotes.
type CheckoutConfig struct {
	FreeShippingThreshold decimal.Decimal `envconfig:"OBOHUB_CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"50"`
	ShippingFee           decimal.Decimal `envconfig:"OBOHUB_CHECKOUT_SHIPPING_FEE" default:"4.99"`
	TaxRate               decimal.Decimal `envconfig:"OBOHUB_CHECKOUT_TAX_RATE" default:"0.1"`
	CODFee                decimal.Decimal `envconfig:"OBOHUB_CHECKOUT_COD_FEE" default:"2.99"`
	CODLimit              decimal.Decimal `envconfig:"OBOHUB_CHECKOUT_COD_LIMIT" default:"500"`
}

// RateLimitConfig throttles promo code attempts. Limits only apply when
// redis is configured.
type RateLimitConfig struct {
	PromoWindow    time.Duration `envconfig:"OBOHUB_RATE_LIMIT_PROMO_WINDOW" default:"1m"`
	PromoIPLimit   int           `envconfig:"OBOHUB_RATE_LIMIT_PROMO_IP" default:"30"`
	PromoUserLimit int           `envconfig:"OBOHUB_RATE_LIMIT_PROMO_USER" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OBOHUB_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"OBOHUB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// EnsureDSN builds a postgres DSN from its parts when none was supplied.
func (db *DBConfig) EnsureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dsnPartEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
