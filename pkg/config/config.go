package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "REDUZED"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "REDUZED_DB_DSN"
	EnvDBHost = "REDUZED_DB_HOST"
	EnvDBUser = "REDUZED_DB_USER"
	EnvDBName = "REDUZED_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
	Eventing      EventingConfig
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
	Env          string `envconfig:"REDUZED_APP_ENV" required:"true"`
	Port         string `envconfig:"REDUZED_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REDUZED_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REDUZED_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"REDUZED_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"REDUZED_DB_DSN"`
	Driver string `envconfig:"REDUZED_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REDUZED_DB_HOST"`
	LegacyPort     int    `envconfig:"REDUZED_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REDUZED_DB_USER"`
	LegacyPassword string `envconfig:"REDUZED_DB_PASSWORD"`
	LegacyName     string `envconfig:"REDUZED_DB_NAME"`
	LegacySSLMode  string `envconfig:"REDUZED_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REDUZED_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REDUZED_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REDUZED_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REDUZED_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDUZED_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REDUZED_REDIS_ADDR"`
	Password     string        `envconfig:"REDUZED_REDIS_PASSWORD"`
	DB           int           `envconfig:"REDUZED_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDUZED_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDUZED_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDUZED_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDUZED_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REDUZED_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"REDUZED_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REDUZED_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"REDUZED_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"REDUZED_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"REDUZED_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"REDUZED_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"REDUZED_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"REDUZED_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	RegisterWindow     time.Duration `envconfig:"REDUZED_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"REDUZED_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"REDUZED_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	RedirectWindow     time.Duration `envconfig:"REDUZED_RATE_LIMIT_REDIRECT_WINDOW" default:"1m"`
	RedirectIPLimit    int           `envconfig:"REDUZED_RATE_LIMIT_REDIRECT_IP_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REDUZED_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"REDUZED_CORS_ALLOWED_ORIGINS" default:"*"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"REDUZED_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"REDUZED_GOOGLE_APPLICATION_CREDENTIALS"`
	CredentialsJSON        string `envconfig:"REDUZED_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"REDUZED_PUBSUB_DOMAIN_TOPIC" default:"reduzed-domain-events"`
	DomainSubscription string `envconfig:"REDUZED_PUBSUB_DOMAIN_SUBSCRIPTION"`
	ClicksTopic        string `envconfig:"REDUZED_PUBSUB_CLICKS_TOPIC" default:"reduzed-click-events"`
	ClicksSubscription string `envconfig:"REDUZED_PUBSUB_CLICKS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset          string `envconfig:"REDUZED_BIGQUERY_DATASET" default:"reduzed"`
	ClickEventsTable string `envconfig:"REDUZED_BIGQUERY_CLICKS_TABLE" default:"click_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"REDUZED_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"REDUZED_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"REDUZED_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	ClickIdempotencyTTL time.Duration `envconfig:"REDUZED_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
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
