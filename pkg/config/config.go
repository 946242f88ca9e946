package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREREVIEW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STOREREVIEW_APP_ENV"
	EnvPort     = "STOREREVIEW_APP_PORT"
	EnvLogLevel = "STOREREVIEW_LOG_LEVEL"

	EnvDBDSN    = "STOREREVIEW_DB_DSN"
	EnvDBDriver = "STOREREVIEW_DB_DRIVER"
	EnvDBHost   = "STOREREVIEW_DB_HOST"
	EnvDBUser   = "STOREREVIEW_DB_USER"
	EnvDBName   = "STOREREVIEW_DB_NAME"

	EnvRedisURL = "STOREREVIEW_REDIS_URL"

	EnvJWTSecret  = "STOREREVIEW_JWT_SECRET"
	EnvJWTIssuer  = "STOREREVIEW_JWT_ISSUER"
	EnvJWTExpMins = "STOREREVIEW_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "STOREREVIEW_USE_SQLITE"
	EnvAutoMigrate = "STOREREVIEW_AUTO_MIGRATE"

	EnvMinCommentLength = "STOREREVIEW_MODERATION_MIN_COMMENT_LENGTH"
	EnvMaxProducts      = "STOREREVIEW_MODERATION_MAX_PRODUCTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Moderation   ModerationConfig
	Idempotency  IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Moderation.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREREVIEW_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREREVIEW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREREVIEW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREREVIEW_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"STOREREVIEW_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ConsoleLogs reports whether logs should be written for humans instead of as JSON.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"STOREREVIEW_DB_DSN"`
	Driver string `envconfig:"STOREREVIEW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREREVIEW_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREREVIEW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREREVIEW_DB_USER"`
	LegacyPassword string `envconfig:"STOREREVIEW_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREREVIEW_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREREVIEW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREREVIEW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREREVIEW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREREVIEW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREREVIEW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREREVIEW_REDIS_URL"`
	Address      string        `envconfig:"STOREREVIEW_REDIS_ADDR"`
	Password     string        `envconfig:"STOREREVIEW_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREREVIEW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREREVIEW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREREVIEW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREREVIEW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREREVIEW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREREVIEW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREREVIEW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREREVIEW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREREVIEW_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREREVIEW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREREVIEW_AUTO_MIGRATE" default:"false"`
}

type ModerationConfig struct {
	MinCommentLength         int `envconfig:"STOREREVIEW_MODERATION_MIN_COMMENT_LENGTH" default:"10"`
	MaxProductsPerSubmission int `envconfig:"STOREREVIEW_MODERATION_MAX_PRODUCTS" default:"50"`
}

func (m ModerationConfig) validate() error {
	if m.MinCommentLength < 1 {
		return fmt.Errorf("%s must be at least 1", EnvMinCommentLength)
	}
	if m.MaxProductsPerSubmission < 1 {
		return fmt.Errorf("%s must be at least 1", EnvMaxProducts)
	}
	return nil
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"STOREREVIEW_IDEMPOTENCY_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:storereview.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
