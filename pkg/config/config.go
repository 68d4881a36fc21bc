package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the engine reads.
	EnvPrefix = "ANN"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "ANN_DB_DSN"
	EnvDBHost = "ANN_DB_HOST"
	EnvDBUser = "ANN_DB_USER"
	EnvDBName = "ANN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	Shipping     ShippingConfig
	Tax          TaxConfig
	Admin        AdminConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Sendgrid     SendgridConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"ANN_APP_ENV" required:"true"`
	Port         string `envconfig:"ANN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ANN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ANN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ANN_DB_DSN"`
	Driver string `envconfig:"ANN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ANN_DB_HOST"`
	LegacyPort     int    `envconfig:"ANN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ANN_DB_USER"`
	LegacyPassword string `envconfig:"ANN_DB_PASSWORD"`
	LegacyName     string `envconfig:"ANN_DB_NAME"`
	LegacySSLMode  string `envconfig:"ANN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ANN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ANN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ANN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ANN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ANN_REDIS_URL"`
	Address      string        `envconfig:"ANN_REDIS_ADDR"`
	Password     string        `envconfig:"ANN_REDIS_PASSWORD"`
	DB           int           `envconfig:"ANN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ANN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ANN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ANN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ANN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ANN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"ANN_STRIPE_API_KEY"`
	WebhookSecret string        `envconfig:"ANN_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"ANN_STRIPE_ENV" default:"test"`
	EventTTL      time.Duration `envconfig:"ANN_STRIPE_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	SuccessURL string `envconfig:"ANN_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"ANN_CHECKOUT_CANCEL_URL" required:"true"`
}

type ShippingConfig struct {
	FlatRateCents              int `envconfig:"ANN_SHIPPING_FLAT_RATE_CENTS" default:"599"`
	RemoteSurchargeCents       int `envconfig:"ANN_SHIPPING_REMOTE_SURCHARGE_CENTS" default:"900"`
	FreeShippingThresholdCents int `envconfig:"ANN_SHIPPING_FREE_THRESHOLD_CENTS" default:"7500"`
}

type TaxConfig struct {
	DefaultRateBasisPoints int `envconfig:"ANN_TAX_DEFAULT_RATE_BPS" default:"600"`
}

type AdminConfig struct {
	JWTSecret string `envconfig:"ANN_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"ANN_ADMIN_JWT_ISSUER" default:"audio-nature-nexus"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ANN_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"ANN_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"ANN_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"ANN_PUBSUB_ORDERS_TOPIC" default:"ann-order-events"`
	NotificationSubscription string `envconfig:"ANN_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"ann-order-notifications"`
}

type SendgridConfig struct {
	APIKey        string `envconfig:"ANN_SENDGRID_API_KEY"`
	FromEmail     string `envconfig:"ANN_SENDGRID_FROM_EMAIL" default:"orders@audionaturenexus.com"`
	FromName      string `envconfig:"ANN_SENDGRID_FROM_NAME" default:"Audio Nature Nexus"`
	OperatorEmail string `envconfig:"ANN_SENDGRID_OPERATOR_EMAIL"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ANN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ANN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ANN_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
