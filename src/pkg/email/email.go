// Package email delivers the finished report through one of several providers.
package email

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/config"
)

type Provider string

const (
	ProviderSMTP     Provider = "smtp"
	ProviderMailgun  Provider = "mailgun"
	ProviderSendGrid Provider = "sendgrid"
	ProviderSES      Provider = "ses"
)

// Providers lists every supported provider.
var Providers = []Provider{ProviderSMTP, ProviderMailgun, ProviderSendGrid, ProviderSES}

// Message is a provider independent email. HTML and Attachments are optional.
type Message struct {
	From        string   `json:"from"`
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	Text        string   `json:"text"`
	HTML        string   `json:"html,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// SendTimeout bounds a single delivery attempt.
var SendTimeout = 60 * time.Second

func ParseProvider(raw string) (provider Provider, err error) {
	normalized := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if normalized == "" {
		return ProviderSMTP, nil
	}
	for _, known := range Providers {
		if normalized == known {
			return known, nil
		}
	}
	return provider, &config.ConfigurationError{
		Settings: []string{config.EnvEmailProvider},
		Reason:   fmt.Sprintf("unknown email provider '%s'", raw),
	}
}

/*
CheckSettings returns a *config.ConfigurationError when the selected provider
cannot send with the given settings.
*/
func CheckSettings(settings config.Settings) error {
	_, err := ParseProvider(settings.EmailProvider)
	if err != nil {
		return err
	}

	missing := settings.MissingEmailSettings()
	if len(missing) > 0 {
		return &config.ConfigurationError{Settings: missing, Reason: "email settings are incomplete"}
	}
	if len(settings.Recipients()) == 0 {
		return &config.ConfigurationError{Settings: []string{config.EnvEmailTo}, Reason: "no recipient address"}
	}
	return nil
}

/*
SendReport mails a plain-text body with the report file attached.

Sender and recipients come from settings (EMAIL_FROM, comma separated EMAIL_TO).
*/
func SendReport(ctx context.Context, settings config.Settings, subject string, body string, attachmentPath string) (e *xerr.Error) {
	err := CheckSettings(settings)
	if err != nil {
		return xerr.NewError(err, "Unable to send report email", settings.EmailProvider)
	}

	message := Message{
		From:        settings.EmailFrom,
		To:          settings.Recipients(),
		Subject:     subject,
		Text:        body,
		Attachments: []string{attachmentPath},
	}
	return SendMessage(ctx, Provider(settings.EmailProvider), settings, message)
}

// SendMessage dispatches message to the provider's sender.
func SendMessage(ctx context.Context, provider Provider, settings config.Settings, message Message) (e *xerr.Error) {
	provider, err := ParseProvider(string(provider))
	if err != nil {
		return xerr.NewError(err, "Unable to pick email provider", provider)
	}

	ctx, cancel := context.WithTimeout(ctx, SendTimeout)
	defer cancel()

	tl.Log(
		tl.Info, palette.Blue, "Sending '%s' to %s via %s (%s attachments)",
		message.Subject, strings.Join(message.To, ", "), provider, fmt.Sprint(len(message.Attachments)),
	)

	switch provider {
	case ProviderMailgun:
		e = sendMailgun(ctx, settings, message)
	case ProviderSendGrid:
		e = sendSendGrid(ctx, settings, message)
	case ProviderSES:
		e = sendSES(ctx, message)
	default:
		e = sendSMTP(ctx, settings, message)
	}
	if e != nil {
		return e
	}

	tl.Log(tl.Notice, palette.Green, "Email %s to %s", "sent", strings.Join(message.To, ", "))
	return nil
}

func attachmentNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		names = append(names, filepath.Base(path))
	}
	return names
}
