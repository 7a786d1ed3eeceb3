package config

const EnvPrefix = "OBOHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreBackendMemory = "memory"
	StoreBackendSQL    = "sql"
	StoreBackendRedis  = "redis"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "OBOHUB_APP_ENV"
	EnvPort         = "OBOHUB_APP_PORT"
	EnvStoreBackend = "OBOHUB_STORE_BACKEND"

	EnvDBDSN    = "OBOHUB_DB_DSN"
	EnvDBDriver = "OBOHUB_DB_DRIVER"
	EnvDBHost   = "OBOHUB_DB_HOST"
	EnvDBUser   = "OBOHUB_DB_USER"
	EnvDBName   = "OBOHUB_DB_NAME"

	EnvRedisURL  = "OBOHUB_REDIS_URL"
	EnvRedisAddr = "OBOHUB_REDIS_ADDR"

	EnvIdentitySecret = "OBOHUB_IDENTITY_JWT_SECRET"
	EnvIdentityIssuer = "OBOHUB_IDENTITY_JWT_ISSUER"

	EnvCheckoutTaxRate = "OBOHUB_CHECKOUT_TAX_RATE"
)

var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
