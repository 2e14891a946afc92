package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// Environment variables read by LoadSettings.
const (
	EnvAPIBaseURL        = "API_BASE_URL"
	EnvAPIKey            = "API_KEY"
	EnvAPITimeoutSeconds = "API_TIMEOUT_SECONDS"
	EnvReportCurrency    = "REPORT_CURRENCY"

	EnvEmailProvider = "EMAIL_PROVIDER"
	EnvSMTPHost      = "SMTP_HOST"
	EnvSMTPPort      = "SMTP_PORT"
	EnvSMTPUsername  = "SMTP_USERNAME"
	EnvSMTPPassword  = "SMTP_PASSWORD"
	EnvEmailFrom     = "EMAIL_FROM"
	EnvEmailTo       = "EMAIL_TO"

	EnvMailgunDomain  = "MAILGUN_DOMAIN"
	EnvMailgunAPIKey  = "MAILGUN_API_KEY"
	EnvSendGridAPIKey = "SENDGRID_API_KEY"
)

const (
	DefaultAPITimeoutSeconds = 20
	DefaultReportCurrency    = "USD"
	DefaultSMTPPort          = 587
	DefaultEmailProvider     = "smtp"
)

// ConfigurationError names the settings that are missing or invalid.
type ConfigurationError struct {
	Settings []string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Settings, ", "))
}

/*
Settings is the run configuration read from the environment.

It is loaded once at startup and never modified afterwards; pass it by value.
*/
type Settings struct {
	APIBaseURL     string        `json:"api_base_url"`
	APIKey         string        `json:"-"`
	APITimeout     time.Duration `json:"api_timeout"`
	ReportCurrency string        `json:"report_currency"`

	EmailProvider string `json:"email_provider"`
	SMTPHost      string `json:"smtp_host"`
	SMTPPort      int    `json:"smtp_port"`
	SMTPUsername  string `json:"smtp_username"`
	SMTPPassword  string `json:"-"`
	EmailFrom     string `json:"email_from"`
	EmailTo       string `json:"email_to"`

	MailgunDomain  string `json:"mailgun_domain"`
	MailgunAPIKey  string `json:"-"`
	SendGridAPIKey string `json:"-"`
}

/*
LoadSettings reads Settings from the environment, after loading ./.env if it exists.

Variables already present in the environment win over .env values.
API_BASE_URL and API_KEY are required; everything else has a default or is optional.
Errors are *ConfigurationError.
*/
func LoadSettings() (settings Settings, err error) {
	settings, emailErr := LoadEmailSettings()

	settings.APIBaseURL = getEnv(EnvAPIBaseURL)
	settings.APIKey = getEnv(EnvAPIKey)
	settings.ReportCurrency = getEnv(EnvReportCurrency)

	missing := make([]string, 0)
	if settings.APIBaseURL == "" {
		missing = append(missing, EnvAPIBaseURL)
	}
	if settings.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if len(missing) > 0 {
		return settings, &ConfigurationError{Settings: missing, Reason: "required settings are missing (set them in the environment or .env)"}
	}

	timeoutSeconds, err := getPositiveInt(EnvAPITimeoutSeconds, DefaultAPITimeoutSeconds)
	if err != nil {
		return settings, err
	}
	settings.APITimeout = time.Duration(timeoutSeconds) * time.Second

	if settings.ReportCurrency == "" {
		settings.ReportCurrency = DefaultReportCurrency
	}

	return settings, emailErr
}

/*
LoadEmailSettings reads only the email group (provider, SMTP, sender, recipients, API keys).

It loads ./.env the same way LoadSettings does and needs none of the sales API variables.
SMTP_PORT defaults to 587 once SMTP_HOST is set; a bad value is a *ConfigurationError.
*/
func LoadEmailSettings() (settings Settings, err error) {
	LoadDotEnv()

	settings = Settings{
		EmailProvider:  strings.ToLower(getEnv(EnvEmailProvider)),
		SMTPHost:       getEnv(EnvSMTPHost),
		SMTPUsername:   getEnv(EnvSMTPUsername),
		SMTPPassword:   getEnv(EnvSMTPPassword),
		EmailFrom:      getEnv(EnvEmailFrom),
		EmailTo:        getEnv(EnvEmailTo),
		MailgunDomain:  getEnv(EnvMailgunDomain),
		MailgunAPIKey:  getEnv(EnvMailgunAPIKey),
		SendGridAPIKey: getEnv(EnvSendGridAPIKey),
	}
	if settings.EmailProvider == "" {
		settings.EmailProvider = DefaultEmailProvider
	}

	if settings.SMTPHost != "" {
		settings.SMTPPort, err = getPositiveInt(EnvSMTPPort, DefaultSMTPPort)
		if err != nil {
			return settings, err
		}
	}

	return settings, nil
}

/*
MissingEmailSettings lists the variables the selected provider still needs.

smtp needs the whole SMTP group; mailgun and sendgrid need their API credentials;
ses relies on the default AWS credential chain. All of them need EMAIL_FROM and EMAIL_TO.
*/
func (s Settings) MissingEmailSettings() []string {
	required := map[string]string{
		EnvEmailFrom: s.EmailFrom,
		EnvEmailTo:   s.EmailTo,
	}
	order := []string{}

	switch s.EmailProvider {
	case "mailgun":
		required[EnvMailgunDomain] = s.MailgunDomain
		required[EnvMailgunAPIKey] = s.MailgunAPIKey
		order = append(order, EnvMailgunDomain, EnvMailgunAPIKey)
	case "sendgrid":
		required[EnvSendGridAPIKey] = s.SendGridAPIKey
		order = append(order, EnvSendGridAPIKey)
	case "ses":
	default:
		required[EnvSMTPHost] = s.SMTPHost
		required[EnvSMTPUsername] = s.SMTPUsername
		required[EnvSMTPPassword] = s.SMTPPassword
		order = append(order, EnvSMTPHost, EnvSMTPUsername, EnvSMTPPassword)
	}
	order = append(order, EnvEmailFrom, EnvEmailTo)

	missing := make([]string, 0)
	for _, name := range order {
		if required[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// EmailEnabled reports whether every email setting of the selected provider is present.
func (s Settings) EmailEnabled() bool {
	return len(s.MissingEmailSettings()) == 0
}

// Recipients splits EMAIL_TO on commas.
func (s Settings) Recipients() []string {
	recipients := make([]string, 0)
	for _, address := range strings.Split(s.EmailTo, ",") {
		trimmed := strings.TrimSpace(address)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}

// LoadDotEnv loads ./.env into the environment. A missing file is ignored.
func LoadDotEnv() {
	err := godotenv.Load()
	if err == nil {
		tl.Log(tl.Verbose, palette.CyanDim, "Loaded environment from '%s'", ".env")
		return
	}
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	tl.Log(tl.Warning, palette.PurpleBright, "Unable to load '%s': %s", ".env", err)
}

func getEnv(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func getPositiveInt(name string, defaultValue int) (value int, err error) {
	raw := getEnv(name)
	if raw == "" {
		return defaultValue, nil
	}

	value, parseErr := strconv.Atoi(raw)
	if parseErr != nil || value <= 0 {
		return 0, &ConfigurationError{Settings: []string{name}, Reason: fmt.Sprintf("must be a positive integer, got '%s'", raw)}
	}
	return value, nil
}
