package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Chapa        ChapaConfig
	Cipher       CipherConfig
	Payments     PaymentsConfig
	Eventing     EventingConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SERENITY_APP_ENV" required:"true"`
	Port         string `envconfig:"SERENITY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SERENITY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SERENITY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SERENITY_DB_DSN"`
	Driver string `envconfig:"SERENITY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SERENITY_DB_HOST"`
	LegacyPort     int    `envconfig:"SERENITY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SERENITY_DB_USER"`
	LegacyPassword string `envconfig:"SERENITY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SERENITY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SERENITY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SERENITY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SERENITY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SERENITY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SERENITY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SERENITY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SERENITY_REDIS_ADDR"`
	Password     string        `envconfig:"SERENITY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SERENITY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SERENITY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SERENITY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SERENITY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SERENITY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SERENITY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SERENITY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SERENITY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SERENITY_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SERENITY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SERENITY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SERENITY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SERENITY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SERENITY_ARGON_KEY_LEN" default:"32"`
}

// ChapaConfig carries the payment gateway credentials and endpoints. The
// secret key authorizes outbound initialize/verify calls; the webhook secret
// signs inbound callbacks.
type ChapaConfig struct {
	SecretKey     string        `envconfig:"SERENITY_CHAPA_SECRET_KEY" required:"true"`
	InitURL       string        `envconfig:"SERENITY_CHAPA_INIT_URL" default:"https://api.chapa.co/v1/transaction/initialize"`
	VerifyURL     string        `envconfig:"SERENITY_CHAPA_VERIFY_URL" default:"https://api.chapa.co/v1/transaction/verify"`
	WebhookSecret string        `envconfig:"SERENITY_CHAPA_WEBHOOK_SECRET" required:"true"`
	Timeout       time.Duration `envconfig:"SERENITY_CHAPA_TIMEOUT" default:"15s"`
	BackendURL    string        `envconfig:"SERENITY_BACKEND_URL" required:"true"`
	FrontendURL   string        `envconfig:"SERENITY_FRONTEND_URL" required:"true"`
}

// CipherConfig holds the hex-encoded AES key clients use to encrypt payment
// amounts before submission.
type CipherConfig struct {
	AmountKeyHex string `envconfig:"SERENITY_AMOUNT_CIPHER_KEY" required:"true"`
}

// PaymentsConfig tunes reconciliation behavior.
type PaymentsConfig struct {
	Currency string `envconfig:"SERENITY_PAYMENTS_CURRENCY" default:"ETB"`
	// LogDuplicateConfirmations controls whether a repeated webhook delivery
	// for an already-successful payment appends another transaction log entry.
	LogDuplicateConfirmations bool `envconfig:"SERENITY_PAYMENTS_LOG_DUPLICATE_CONFIRMATIONS" default:"false"`
}

type EventingConfig struct {
	WebhookIdempotencyTTL time.Duration `envconfig:"SERENITY_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SERENITY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SERENITY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
