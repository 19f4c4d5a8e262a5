package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PRICECOMPARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "PRICECOMPARE_APP_ENV"
	EnvPort        = "PRICECOMPARE_APP_PORT"
	EnvCORSOrigins = "PRICECOMPARE_CORS_ORIGINS"

	EnvDBDSN    = "PRICECOMPARE_DB_DSN"
	EnvDBDriver = "PRICECOMPARE_DB_DRIVER"
	EnvDBHost   = "PRICECOMPARE_DB_HOST"
	EnvDBUser   = "PRICECOMPARE_DB_USER"
	EnvDBName   = "PRICECOMPARE_DB_NAME"

	EnvRedisURL  = "PRICECOMPARE_REDIS_URL"
	EnvRedisAddr = "PRICECOMPARE_REDIS_ADDR"

	EnvJWTSecret  = "PRICECOMPARE_JWT_SECRET"
	EnvJWTIssuer  = "PRICECOMPARE_JWT_ISSUER"
	EnvJWTExpMins = "PRICECOMPARE_JWT_EXPIRATION_MINUTES"

	EnvCronEnabled  = "PRICECOMPARE_CRON_ENABLED"
	EnvCronInterval = "PRICECOMPARE_CRON_INTERVAL"
	EnvUploadDir    = "PRICECOMPARE_UPLOAD_DIR"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	// DefaultJWTSecret is used when no signing secret is configured.
	DefaultJWTSecret = "defaultSecretKey"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Cron          CronConfig
	Uploads       UploadsConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string   `envconfig:"PRICECOMPARE_APP_ENV" required:"true"`
	Port         string   `envconfig:"PRICECOMPARE_APP_PORT" default:"5000"`
	LogLevel     string   `envconfig:"PRICECOMPARE_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"PRICECOMPARE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"PRICECOMPARE_CORS_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000,https://price-comparison-frontend-t96z.onrender.com"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRICECOMPARE_DB_DSN"`
	Driver string `envconfig:"PRICECOMPARE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRICECOMPARE_DB_HOST"`
	LegacyPort     int    `envconfig:"PRICECOMPARE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRICECOMPARE_DB_USER"`
	LegacyPassword string `envconfig:"PRICECOMPARE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRICECOMPARE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRICECOMPARE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRICECOMPARE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PRICECOMPARE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PRICECOMPARE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRICECOMPARE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

// RedisConfig is optional. Features backed by Redis are disabled when neither
// URL nor Address is set.
type RedisConfig struct {
	URL          string        `envconfig:"PRICECOMPARE_REDIS_URL"`
	Address      string        `envconfig:"PRICECOMPARE_REDIS_ADDR"`
	Password     string        `envconfig:"PRICECOMPARE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRICECOMPARE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRICECOMPARE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRICECOMPARE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRICECOMPARE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRICECOMPARE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRICECOMPARE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PRICECOMPARE_JWT_SECRET"`
	Issuer            string `envconfig:"PRICECOMPARE_JWT_ISSUER" default:"pricecompare"`
	ExpirationMinutes int    `envconfig:"PRICECOMPARE_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// SigningSecret returns the configured secret, or DefaultJWTSecret and false
// when none is set.
func (j JWTConfig) SigningSecret() (string, bool) {
	if s := strings.TrimSpace(j.Secret); s != "" {
		return s, true
	}
	return DefaultJWTSecret, false
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PRICECOMPARE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PRICECOMPARE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PRICECOMPARE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PRICECOMPARE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PRICECOMPARE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PRICECOMPARE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PRICECOMPARE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PRICECOMPARE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PRICECOMPARE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PRICECOMPARE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PRICECOMPARE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CronConfig struct {
	Enabled          bool          `envconfig:"PRICECOMPARE_CRON_ENABLED" default:"true"`
	Interval         time.Duration `envconfig:"PRICECOMPARE_CRON_INTERVAL" default:"1h"`
	LockTTL          time.Duration `envconfig:"PRICECOMPARE_CRON_LOCK_TTL" default:"55m"`
	DealExpiryWindow time.Duration `envconfig:"PRICECOMPARE_DEAL_EXPIRY_WINDOW" default:"24h"`
	AlertDedupWindow time.Duration `envconfig:"PRICECOMPARE_ALERT_DEDUP_WINDOW" default:"1h"`
}

type UploadsConfig struct {
	Dir               string `envconfig:"PRICECOMPARE_UPLOAD_DIR" default:"uploads"`
	MaxProductImageMB int    `envconfig:"PRICECOMPARE_MAX_PRODUCT_IMAGE_MB" default:"10"`
	MaxEvidenceMB     int    `envconfig:"PRICECOMPARE_MAX_EVIDENCE_MB" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRICECOMPARE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = "file:pricecompare.db?cache=shared"
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
