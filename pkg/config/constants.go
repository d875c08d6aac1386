package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// SERENITY_* names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SERENITY_APP_ENV"
	EnvPort     = "SERENITY_APP_PORT"
	EnvDBDSN    = "SERENITY_DB_DSN"
	EnvDBHost   = "SERENITY_DB_HOST"
	EnvDBUser   = "SERENITY_DB_USER"
	EnvDBName   = "SERENITY_DB_NAME"
	EnvRedisURL = "SERENITY_REDIS_URL"

	EnvJWTSecret  = "SERENITY_JWT_SECRET"
	EnvJWTIssuer  = "SERENITY_JWT_ISSUER"
	EnvJWTExpMins = "SERENITY_JWT_EXPIRATION_MINUTES"

	EnvChapaSecretKey     = "SERENITY_CHAPA_SECRET_KEY"
	EnvChapaWebhookSecret = "SERENITY_CHAPA_WEBHOOK_SECRET"
	EnvAmountCipherKey    = "SERENITY_AMOUNT_CIPHER_KEY"
	EnvBackendURL         = "SERENITY_BACKEND_URL"
	EnvFrontendURL        = "SERENITY_FRONTEND_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
