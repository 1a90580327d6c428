package config

const EnvPrefix = "WISHLIST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "WISHLIST_APP_ENV"
	EnvPort         = "WISHLIST_APP_PORT"
	EnvLogLevel     = "WISHLIST_LOG_LEVEL"
	EnvLogFormat    = "WISHLIST_LOG_FORMAT"
	EnvLogWarnStack = "WISHLIST_LOG_WARN_STACK"

	EnvDBDSN      = "WISHLIST_DB_DSN"
	EnvDBHost     = "WISHLIST_DB_HOST"
	EnvDBPort     = "WISHLIST_DB_PORT"
	EnvDBUser     = "WISHLIST_DB_USER"
	EnvDBPassword = "WISHLIST_DB_PASSWORD"
	EnvDBName     = "WISHLIST_DB_NAME"
	EnvDBSSLMode  = "WISHLIST_DB_SSLMODE"

	EnvRedisURL  = "WISHLIST_REDIS_URL"
	EnvRedisAddr = "WISHLIST_REDIS_ADDR"

	EnvStorageBucket        = "WISHLIST_S3_BUCKET"
	EnvStorageRegion        = "WISHLIST_S3_REGION"
	EnvStorageEndpoint      = "WISHLIST_S3_ENDPOINT"
	EnvStoragePublicBaseURL = "WISHLIST_S3_PUBLIC_BASE_URL"

	EnvSecretsEnabled = "WISHLIST_SECRETS_ENABLED"
	EnvSecretsID      = "WISHLIST_SECRETS_ID"
	EnvSecretsRegion  = "WISHLIST_SECRETS_REGION"

	EnvShopifyStoreURL      = "WISHLIST_SHOPIFY_STORE_URL"
	EnvShopifyAccessToken   = "WISHLIST_SHOPIFY_ADMIN_ACCESS_TOKEN"
	EnvShopifyWebhookSecret = "WISHLIST_SHOPIFY_WEBHOOK_SECRET"
	EnvShopifyGuardTTL      = "WISHLIST_SHOPIFY_WEBHOOK_GUARD_TTL"

	EnvMediaMaxUploadMB = "WISHLIST_MAX_UPLOAD_MB"

	EnvDashboardTotalCustomers = "WISHLIST_DASHBOARD_TOTAL_CUSTOMERS"
	EnvDashboardTimezone       = "WISHLIST_DASHBOARD_TIMEZONE"
	EnvDashboardJWTSecret      = "WISHLIST_DASHBOARD_JWT_SECRET"
	EnvDashboardTokenTTL       = "WISHLIST_DASHBOARD_TOKEN_TTL"

	EnvCORSAllowedOrigins = "WISHLIST_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate        = "WISHLIST_AUTO_MIGRATE"
)

// legacyDBEnvVars must all be present when no DSN is configured.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
