package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-report/src/pkg/config"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeAttachment(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales-report_2025-01-01_to_2025-01-07.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("fake workbook"), 0o644))
	return path
}

func smtpSettings() config.Settings {
	return config.Settings{
		EmailProvider: string(ProviderSMTP),
		SMTPHost:      "127.0.0.1",
		SMTPPort:      1,
		SMTPUsername:  "user",
		SMTPPassword:  "pass",
		EmailFrom:     "reports@example.com",
		EmailTo:       "a@example.com, b@example.com",
	}
}

func TestAttachmentContentType(t *testing.T) {
	assert.Equal(t, xlsxContentType, AttachmentContentType("out/report.xlsx"))
	assert.Equal(t, xlsxContentType, AttachmentContentType("REPORT.XLSX"))
	assert.Equal(t, "application/octet-stream", AttachmentContentType("report"))
	assert.Equal(t, "application/octet-stream", AttachmentContentType("report.nosuchextension"))
	assert.True(t, strings.HasPrefix(AttachmentContentType("notes.txt"), "text/plain"))
}

func TestParseProvider(t *testing.T) {
	provider, err := ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderSMTP, provider)

	provider, err = ParseProvider(" SendGrid ")
	require.NoError(t, err)
	assert.Equal(t, ProviderSendGrid, provider)

	_, err = ParseProvider("pigeon")
	var configErr *config.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, []string{config.EnvEmailProvider}, configErr.Settings)
}

func TestCheckSettingsNamesMissingSMTPSettings(t *testing.T) {
	settings := smtpSettings()
	settings.SMTPPassword = ""
	settings.EmailTo = ""

	err := CheckSettings(settings)
	var configErr *config.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, []string{config.EnvSMTPPassword, config.EnvEmailTo}, configErr.Settings)

	assert.NoError(t, CheckSettings(smtpSettings()))
}

func TestCheckSettingsRejectsBlankRecipientList(t *testing.T) {
	settings := smtpSettings()
	settings.EmailTo = " , "

	var configErr *config.ConfigurationError
	require.True(t, errors.As(CheckSettings(settings), &configErr))
	assert.Equal(t, []string{config.EnvEmailTo}, configErr.Settings)
}

func TestSendReportWithIncompleteSettingsFails(t *testing.T) {
	e := SendReport(context.Background(), config.Settings{}, "subject", "body", writeAttachment(t))
	assert.NotNil(t, e)
}

func TestSendReportSMTPConnectionFailure(t *testing.T) {
	e := SendReport(context.Background(), smtpSettings(), "subject", "body", writeAttachment(t))
	assert.NotNil(t, e)
}

func TestBuildMIME(t *testing.T) {
	attachment := writeAttachment(t)
	msg, e := BuildMIME(Message{
		From:        "reports@example.com",
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Sales report 2025-01-01 to 2025-01-07",
		Text:        "Total orders: 3",
		Attachments: []string{attachment},
	})
	require.Nil(t, e)

	var raw bytes.Buffer
	_, err := msg.WriteTo(&raw)
	require.NoError(t, err)

	rendered := raw.String()
	assert.Contains(t, rendered, "Sales report 2025-01-01 to 2025-01-07")
	assert.Contains(t, rendered, "a@example.com")
	assert.Contains(t, rendered, "b@example.com")
	assert.Contains(t, rendered, "Total orders: 3")
	assert.Contains(t, rendered, xlsxContentType)
	assert.Contains(t, rendered, filepath.Base(attachment))
	assert.Contains(t, rendered, base64.StdEncoding.EncodeToString([]byte("fake workbook")))
}

func TestBuildMIMERejectsBadSender(t *testing.T) {
	_, e := BuildMIME(Message{From: "not an address", To: []string{"a@example.com"}})
	assert.NotNil(t, e)
}

func TestBuildSendGridMessage(t *testing.T) {
	attachment := writeAttachment(t)
	sgMessage, e := buildSendGridMessage(Message{
		From:        "reports@example.com",
		To:          []string{"a@example.com", "b@example.com"},
		Subject:     "Weekly sales",
		Text:        "body",
		Attachments: []string{attachment},
	})
	require.Nil(t, e)

	assert.Equal(t, "Weekly sales", sgMessage.Subject)
	require.Len(t, sgMessage.Personalizations, 1)
	assert.Len(t, sgMessage.Personalizations[0].To, 2)
	require.Len(t, sgMessage.Attachments, 1)
	assert.Equal(t, xlsxContentType, sgMessage.Attachments[0].Type)
	assert.Equal(t, filepath.Base(attachment), sgMessage.Attachments[0].Filename)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("fake workbook")), sgMessage.Attachments[0].Content)
}

func TestBuildSendGridMessageMissingAttachment(t *testing.T) {
	_, e := buildSendGridMessage(Message{
		From:        "reports@example.com",
		To:          []string{"a@example.com"},
		Attachments: []string{filepath.Join(t.TempDir(), "missing.xlsx")},
	})
	assert.NotNil(t, e)
}

func TestCheckSendGridResponse(t *testing.T) {
	assert.Nil(t, checkSendGridResponse(&rest.Response{StatusCode: 202}))
	assert.NotNil(t, checkSendGridResponse(&rest.Response{StatusCode: 401, Body: `{"errors":[]}`}))
}
