package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// WhatsApp providers.
const (
	ProviderCloud  = "cloud"
	ProviderTwilio = "twilio"
	ProviderLog    = "log"
)

// DatabaseConfig locates the PostgreSQL instance.
type DatabaseConfig struct {
	User                   string `envconfig:"DB_USER" default:"postgres"`
	Pass                   string `envconfig:"DB_PASS"`
	Name                   string `envconfig:"DB_NAME" default:"daaqui"`
	Host                   string `envconfig:"DB_HOST" default:"localhost"`
	Port                   int    `envconfig:"DB_PORT" default:"5432"`
	InstanceConnectionName string `envconfig:"INSTANCE_CONNECTION_NAME"`
}

// WhatsAppConfig configures the Meta Cloud API provider.
type WhatsAppConfig struct {
	Provider      string `envconfig:"WHATSAPP_PROVIDER" default:"log"`
	AccessToken   string `envconfig:"WHATSAPP_ACCESS_TOKEN"`
	PhoneNumberID string `envconfig:"WHATSAPP_PHONE_NUMBER_ID"`
	VerifyToken   string `envconfig:"WHATSAPP_VERIFY_TOKEN"`
	AppSecret     string `envconfig:"WHATSAPP_APP_SECRET"`
	APIVersion    string `envconfig:"WHATSAPP_API_VERSION" default:"v20.0"`
	BaseURL       string `envconfig:"WHATSAPP_BASE_URL" default:"https://graph.facebook.com"`
}

// TwilioConfig configures the Twilio provider.
type TwilioConfig struct {
	AccountSID   string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken    string `envconfig:"TWILIO_AUTH_TOKEN"`
	WhatsAppFrom string `envconfig:"TWILIO_WHATSAPP_FROM"`
}

// SMTPConfig enables the admin email copy when Host is set.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	User     string `envconfig:"SMTP_USER"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"ventas@daaqui.pe"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// Config aggregates the process configuration.
type Config struct {
	Port                     string        `envconfig:"PORT" default:"8080"`
	Environment              string        `envconfig:"ENVIRONMENT" default:"development"`
	UseMemoryStore           bool          `envconfig:"USE_MEMORY_STORE" default:"false"`
	CatalogFile              string        `envconfig:"CATALOG_FILE" default:"catalog.yaml"`
	Timezone                 string        `envconfig:"TIMEZONE" default:"America/Lima"`
	SessionTTL               time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	MessagePauseMax          time.Duration `envconfig:"MESSAGE_PAUSE_MAX" default:"1500ms"`
	DisableWebhookValidation bool          `envconfig:"DISABLE_WEBHOOK_VALIDATION" default:"false"`
	AdminWhatsAppNumber      string        `envconfig:"ADMIN_WHATSAPP_NUMBER"`
	AdminEmail               string        `envconfig:"ADMIN_EMAIL"`
	MakeSecretToken          string        `envconfig:"MAKE_SECRET_TOKEN"`
	AMQPURL                  string        `envconfig:"AMQP_URL"`

	Log      LogConfig
	DB       DatabaseConfig
	WhatsApp WhatsAppConfig
	Twilio   TwilioConfig
	SMTP     SMTPConfig

	Location *time.Location `ignored:"true"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates provider settings and fills derived fields.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.WhatsApp.Provider))
	if provider == "" {
		provider = ProviderLog
	}
	switch provider {
	case ProviderCloud:
		if cfg.WhatsApp.AccessToken == "" || cfg.WhatsApp.PhoneNumberID == "" {
			return fmt.Errorf("WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID are required for the cloud provider")
		}
	case ProviderTwilio:
		if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.WhatsAppFrom == "" {
			return fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_WHATSAPP_FROM are required for the twilio provider")
		}
	case ProviderLog:
	default:
		return fmt.Errorf("invalid WHATSAPP_PROVIDER %q; allowed: cloud, twilio, log", cfg.WhatsApp.Provider)
	}
	cfg.WhatsApp.Provider = provider

	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.MessagePauseMax < 0 {
		cfg.MessagePauseMax = 0
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.AdminWhatsAppNumber = strings.TrimPrefix(strings.TrimSpace(cfg.AdminWhatsAppNumber), "+")
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	return nil
}

// IsDevelopment reports whether the process runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// WebhookValidation reports whether inbound webhook signatures are checked.
func (c *Config) WebhookValidation() bool {
	return !c.IsDevelopment() && !c.DisableWebhookValidation
}
