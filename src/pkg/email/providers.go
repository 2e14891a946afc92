package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/mailgun/mailgun-go/v4"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/config"
)

func sendMailgun(ctx context.Context, settings config.Settings, message Message) (e *xerr.Error) {
	mg := mailgun.NewMailgun(settings.MailgunDomain, settings.MailgunAPIKey)

	mgMessage := mg.NewMessage(message.From, message.Subject, message.Text, message.To...)
	if message.HTML != "" {
		mgMessage.SetHtml(message.HTML)
	}
	for _, path := range message.Attachments {
		mgMessage.AddAttachment(path)
	}

	response, id, err := mg.Send(ctx, mgMessage)
	if err != nil {
		return xerr.NewErrorEC(err, "Unable to send email via mailgun", "domain", settings.MailgunDomain, false)
	}

	tl.Log(tl.Verbose, palette.GreenDim, "Mailgun accepted message '%s': %s", id, response)
	return nil
}

func sendSendGrid(ctx context.Context, settings config.Settings, message Message) (e *xerr.Error) {
	sgMessage, e := buildSendGridMessage(message)
	if e != nil {
		return e
	}

	client := sendgrid.NewSendClient(settings.SendGridAPIKey)
	response, err := client.SendWithContext(ctx, sgMessage)
	if err != nil {
		return xerr.NewError(err, "Unable to send email via sendgrid", message.To)
	}
	return checkSendGridResponse(response)
}

func buildSendGridMessage(message Message) (sgMessage *sgmail.SGMailV3, e *xerr.Error) {
	sgMessage = sgmail.NewV3Mail()
	sgMessage.SetFrom(sgmail.NewEmail("", message.From))
	sgMessage.Subject = message.Subject

	personalization := sgmail.NewPersonalization()
	for _, address := range message.To {
		personalization.AddTos(sgmail.NewEmail("", address))
	}
	sgMessage.AddPersonalizations(personalization)

	sgMessage.AddContent(sgmail.NewContent("text/plain", message.Text))
	if message.HTML != "" {
		sgMessage.AddContent(sgmail.NewContent("text/html", message.HTML))
	}

	for _, path := range message.Attachments {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, xerr.NewError(err, "Unable to read attachment", path)
		}

		attachment := sgmail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(content))
		attachment.SetType(AttachmentContentType(path))
		attachment.SetFilename(filepath.Base(path))
		attachment.SetDisposition("attachment")
		sgMessage.AddAttachment(attachment)
	}

	return sgMessage, nil
}

func checkSendGridResponse(response *rest.Response) (e *xerr.Error) {
	if response.StatusCode < 200 || response.StatusCode > 299 {
		err := fmt.Errorf("sendgrid status is %d", response.StatusCode)
		return xerr.NewError(err, "SendGrid rejected the message", response.Body)
	}
	tl.Log(tl.Verbose, palette.GreenDim, "SendGrid accepted message with status %v", response.StatusCode)
	return nil
}

/*
sendSES sends the go-mail MIME message as a raw SESv2 email.

Credentials and region come from the default AWS chain (AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY, AWS_REGION, shared config).
*/
func sendSES(ctx context.Context, message Message) (e *xerr.Error) {
	msg, e := BuildMIME(message)
	if e != nil {
		return e
	}

	var raw bytes.Buffer
	_, err := msg.WriteTo(&raw)
	if err != nil {
		return xerr.NewError(err, "Unable to render MIME message", attachmentNames(message.Attachments))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return xerr.NewError(err, "Unable to load AWS configuration", nil)
	}

	client := sesv2.NewFromConfig(awsCfg)
	output, err := client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(message.From),
		Destination:      &sestypes.Destination{ToAddresses: message.To},
		Content: &sestypes.EmailContent{
			Raw: &sestypes.RawMessage{Data: raw.Bytes()},
		},
	})
	if err != nil {
		return xerr.NewErrorEC(err, "Unable to send email via ses", "region", awsCfg.Region, false)
	}

	tl.Log(tl.Verbose, palette.GreenDim, "SES accepted message '%s'", aws.ToString(output.MessageId))
	return nil
}
