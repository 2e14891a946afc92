package email

import (
	"context"
	"path/filepath"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"github.com/wneessen/go-mail"

	"sales-report/src/pkg/config"
)

/*
BuildMIME turns message into a go-mail message.

The text part is the body, HTML (if any) becomes an alternative part and every
attachment is attached with a content type guessed from its extension.
*/
func BuildMIME(message Message) (msg *mail.Msg, e *xerr.Error) {
	msg = mail.NewMsg()

	err := msg.From(message.From)
	if err != nil {
		return nil, xerr.NewError(err, "Invalid sender address", message.From)
	}
	err = msg.To(message.To...)
	if err != nil {
		return nil, xerr.NewError(err, "Invalid recipient address", message.To)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.Text)
	if message.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTML)
	}

	for _, path := range message.Attachments {
		msg.AttachFile(
			path,
			mail.WithFileName(filepath.Base(path)),
			mail.WithFileContentType(mail.ContentType(AttachmentContentType(path))),
		)
	}

	return msg, nil
}

// sendSMTP delivers over SMTP with mandatory STARTTLS and PLAIN auth.
func sendSMTP(ctx context.Context, settings config.Settings, message Message) (e *xerr.Error) {
	msg, e := BuildMIME(message)
	if e != nil {
		return e
	}

	client, err := mail.NewClient(
		settings.SMTPHost,
		mail.WithPort(settings.SMTPPort),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(settings.SMTPUsername),
		mail.WithPassword(settings.SMTPPassword),
		mail.WithTimeout(SendTimeout),
	)
	if err != nil {
		return xerr.NewError(err, "Unable to create SMTP client", settings.SMTPHost)
	}

	tl.Log(tl.Verbose, palette.CyanDim, "Dialing %s:%v as '%s'", settings.SMTPHost, settings.SMTPPort, settings.SMTPUsername)
	err = client.DialAndSendWithContext(ctx, msg)
	if err != nil {
		return xerr.NewErrorECOL(err, "Unable to send email over SMTP", "attachments", attachmentNames(message.Attachments))
	}
	return nil
}
