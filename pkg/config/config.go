package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Storage      StorageConfig
	Secrets      SecretsConfig
	Shopify      ShopifyConfig
	Media        MediaConfig
	Dashboard    DashboardConfig
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
	if _, err := cfg.Dashboard.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MigrateConfig is the subset cmd/migrate needs.
type MigrateConfig struct {
	App AppConfig
	DB  DBConfig
}

func LoadMigrate() (*MigrateConfig, error) {
	var cfg MigrateConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing migrate config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDashboard reads only the dashboard settings, for tooling that does not
// need a database or bucket.
func LoadDashboard() (DashboardConfig, error) {
	var cfg DashboardConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return DashboardConfig{}, fmt.Errorf("parsing dashboard config: %w", err)
	}
	if !cfg.AuthEnabled() {
		return DashboardConfig{}, fmt.Errorf("%s is required", EnvDashboardJWTSecret)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WISHLIST_APP_ENV" required:"true"`
	Port         string `envconfig:"WISHLIST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WISHLIST_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"WISHLIST_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"WISHLIST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"WISHLIST_DB_DSN"`

	LegacyHost     string `envconfig:"WISHLIST_DB_HOST"`
	LegacyPort     int    `envconfig:"WISHLIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WISHLIST_DB_USER"`
	LegacyPassword string `envconfig:"WISHLIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WISHLIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WISHLIST_DB_SSLMODE" default:"require"`

	MaxOpenConns    int           `envconfig:"WISHLIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WISHLIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WISHLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WISHLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"WISHLIST_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WISHLIST_REDIS_URL"`
	Address      string        `envconfig:"WISHLIST_REDIS_ADDR"`
	Password     string        `envconfig:"WISHLIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WISHLIST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WISHLIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WISHLIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WISHLIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WISHLIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WISHLIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StorageConfig points at the S3 bucket holding profile images. Static
// credentials are optional; the default AWS chain is used when they are empty.
type StorageConfig struct {
	Bucket          string `envconfig:"WISHLIST_S3_BUCKET" required:"true"`
	Region          string `envconfig:"WISHLIST_S3_REGION" default:"af-south-1"`
	Endpoint        string `envconfig:"WISHLIST_S3_ENDPOINT"`
	UsePathStyle    bool   `envconfig:"WISHLIST_S3_USE_PATH_STYLE" default:"false"`
	AccessKeyID     string `envconfig:"WISHLIST_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"WISHLIST_S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `envconfig:"WISHLIST_S3_PUBLIC_BASE_URL"`
}

type SecretsConfig struct {
	Enabled  bool   `envconfig:"WISHLIST_SECRETS_ENABLED" default:"true"`
	SecretID string `envconfig:"WISHLIST_SECRETS_ID" default:"ashcorp-secret"`
	Region   string `envconfig:"WISHLIST_SECRETS_REGION" default:"af-south-1"`
}

// ShopifyConfig holds per-storefront fallbacks used when the secret set does
// not carry a value.
type ShopifyConfig struct {
	StoreURL               string        `envconfig:"WISHLIST_SHOPIFY_STORE_URL"`
	AdminAccessToken       string        `envconfig:"WISHLIST_SHOPIFY_ADMIN_ACCESS_TOKEN"`
	WebhookSecret          string        `envconfig:"WISHLIST_SHOPIFY_WEBHOOK_SECRET"`
	AshluxuryStoreURL      string        `envconfig:"WISHLIST_SHOPIFY_STORE_URL_ASHLUXURY"`
	AshluxuryAccessToken   string        `envconfig:"WISHLIST_SHOPIFY_ADMIN_ACCESS_TOKEN_ASHLUXURY"`
	AshluxuryWebhookSecret string        `envconfig:"WISHLIST_SHOPIFY_WEBHOOK_SECRET_ASHLUXURY"`
	APIVersion             string        `envconfig:"WISHLIST_SHOPIFY_API_VERSION" default:"2024-10"`
	Timeout                time.Duration `envconfig:"WISHLIST_SHOPIFY_TIMEOUT" default:"10s"`
	WebhookGuardTTL        time.Duration `envconfig:"WISHLIST_SHOPIFY_WEBHOOK_GUARD_TTL" default:"72h"`
}

type MediaConfig struct {
	MaxUploadMB   int `envconfig:"WISHLIST_MAX_UPLOAD_MB" default:"10"`
	ProfileWidth  int `envconfig:"WISHLIST_PROFILE_IMAGE_WIDTH" default:"300"`
	ProfileHeight int `envconfig:"WISHLIST_PROFILE_IMAGE_HEIGHT" default:"300"`
	JPEGQuality   int `envconfig:"WISHLIST_PROFILE_IMAGE_QUALITY" default:"85"`
	MaxMegapixels int `envconfig:"WISHLIST_PROFILE_IMAGE_MAX_MEGAPIXELS" default:"40"`
}

// MaxUploadBytes converts the configured megabyte limit.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

// MaxPixels is the decoded pixel budget for one upload.
func (m MediaConfig) MaxPixels() int64 {
	if m.MaxMegapixels <= 0 {
		return 40_000_000
	}
	return int64(m.MaxMegapixels) * 1_000_000
}

type DashboardConfig struct {
	TotalCustomers int64         `envconfig:"WISHLIST_DASHBOARD_TOTAL_CUSTOMERS" default:"49652"`
	Timezone       string        `envconfig:"WISHLIST_DASHBOARD_TIMEZONE" default:"Africa/Johannesburg"`
	JWTSecret      string        `envconfig:"WISHLIST_DASHBOARD_JWT_SECRET"`
	JWTIssuer      string        `envconfig:"WISHLIST_DASHBOARD_JWT_ISSUER" default:"wishlist-dashboard"`
	TokenTTL       time.Duration `envconfig:"WISHLIST_DASHBOARD_TOKEN_TTL" default:"720h"`
}

// Location resolves the timezone used for order date labels.
func (d DashboardConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(d.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvDashboardTimezone, d.Timezone, err)
	}
	return loc, nil
}

// AuthEnabled reports whether dashboard routes require a signed token.
func (d DashboardConfig) AuthEnabled() bool {
	return strings.TrimSpace(d.JWTSecret) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WISHLIST_CORS_ALLOWED_ORIGINS" default:"https://ash-luxe.com,https://www.ash-luxe.com,https://ashluxury.com,https://www.ashluxury.com,https://extensions.shopifycdn.com"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WISHLIST_AUTO_MIGRATE" default:"false"`
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
