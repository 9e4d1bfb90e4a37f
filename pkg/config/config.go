package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by the platform.
	EnvPrefix = "OTKA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	SMTP       SMTPConfig
	OpenAI     OpenAIConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Outbox     OutboxConfig
	Orders     OrdersConfig
	Proforma   ProformaConfig
	Commission CommissionConfig
	Company    CompanyConfig
	Flags      FeatureFlagsConfig
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
	Env          string `envconfig:"OTKA_APP_ENV" required:"true"`
	Port         string `envconfig:"OTKA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"OTKA_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"OTKA_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"OTKA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OTKA_DB_DSN"`
	Driver string `envconfig:"OTKA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"OTKA_DB_HOST"`
	Port     int    `envconfig:"OTKA_DB_PORT" default:"5432"`
	User     string `envconfig:"OTKA_DB_USER"`
	Password string `envconfig:"OTKA_DB_PASSWORD"`
	Name     string `envconfig:"OTKA_DB_NAME"`
	SSLMode  string `envconfig:"OTKA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OTKA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OTKA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OTKA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OTKA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OTKA_REDIS_URL"`
	Address      string        `envconfig:"OTKA_REDIS_ADDR"`
	Password     string        `envconfig:"OTKA_REDIS_PASSWORD"`
	DB           int           `envconfig:"OTKA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OTKA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OTKA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OTKA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OTKA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OTKA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"OTKA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OTKA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"OTKA_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RateLimitConfig bounds the public partner-registration endpoint.
type RateLimitConfig struct {
	RegisterWindow     time.Duration `envconfig:"OTKA_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"OTKA_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"OTKA_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type SMTPConfig struct {
	Host        string        `envconfig:"OTKA_SMTP_HOST"`
	Port        int           `envconfig:"OTKA_SMTP_PORT" default:"587"`
	Username    string        `envconfig:"OTKA_SMTP_USERNAME"`
	Password    string        `envconfig:"OTKA_SMTP_PASSWORD"`
	From        string        `envconfig:"OTKA_SMTP_FROM"`
	DialTimeout time.Duration `envconfig:"OTKA_SMTP_DIAL_TIMEOUT" default:"10s"`
}

// Configured reports whether the mailer has enough settings to send.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.From != ""
}

type OpenAIConfig struct {
	APIKey         string        `envconfig:"OTKA_OPENAI_API_KEY"`
	EmbeddingModel string        `envconfig:"OTKA_OPENAI_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	Dimensions     int           `envconfig:"OTKA_OPENAI_EMBEDDING_DIMENSIONS" default:"1536"`
	RequestTimeout time.Duration `envconfig:"OTKA_OPENAI_REQUEST_TIMEOUT" default:"15s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"OTKA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrderEventsTopic        string `envconfig:"OTKA_PUBSUB_ORDER_EVENTS_TOPIC" default:"otka-order-events"`
	OrderEventsSubscription string `envconfig:"OTKA_PUBSUB_ORDER_EVENTS_SUBSCRIPTION" default:"otka-order-events-notifier"`
}

type OutboxConfig struct {
	BatchSize    int           `envconfig:"OTKA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollInterval time.Duration `envconfig:"OTKA_OUTBOX_PUBLISH_POLL_INTERVAL" default:"500ms"`
	MaxAttempts  int           `envconfig:"OTKA_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention    time.Duration `envconfig:"OTKA_OUTBOX_RETENTION" default:"168h"`
}

type OrdersConfig struct {
	DraftTTL time.Duration `envconfig:"OTKA_ORDERS_DRAFT_TTL" default:"2160h"`
}

type ProformaConfig struct {
	Series         string `envconfig:"OTKA_PROFORMA_SERIES" default:"PRF"`
	DefaultVATRate string `envconfig:"OTKA_PROFORMA_DEFAULT_VAT_RATE" default:"19"`
}

type CommissionConfig struct {
	Rate string `envconfig:"OTKA_COMMISSION_RATE" default:"0.05"`
}

// CompanyConfig holds the issuer details printed on proformas and used in
// outgoing mail signatures.
type CompanyConfig struct {
	Name    string `envconfig:"OTKA_COMPANY_NAME" default:"OTKA SRL"`
	VatID   string `envconfig:"OTKA_COMPANY_VAT_ID"`
	RegCom  string `envconfig:"OTKA_COMPANY_REG_COM"`
	Address string `envconfig:"OTKA_COMPANY_ADDRESS"`
	IBAN    string `envconfig:"OTKA_COMPANY_IBAN"`
	Bank    string `envconfig:"OTKA_COMPANY_BANK"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OTKA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct {
		env   string
		value string
	}{
		{"OTKA_DB_HOST", db.Host},
		{"OTKA_DB_USER", db.User},
		{"OTKA_DB_NAME", db.Name},
	} {
		if pair.value == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either OTKA_DB_DSN or %s are required", strings.Join(missing, ", "))
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
