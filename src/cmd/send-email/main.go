// in case you need to create an entrypoint with multiple subprograms
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/config"
	"sales-report/src/pkg/email"
	"sales-report/src/pkg/util"
)

/*
Pick provider and use it to send a test email with an attachment (an existing report for example).
Sender and recipients default to EMAIL_FROM and EMAIL_TO.
*/
func testProvider(subprogram string, flags []string) {
	config.LoadDotEnv()
	config.CheckIfEnvVarsPresent(
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", // amazon ses
		config.EnvMailgunDomain, config.EnvMailgunAPIKey, // mailgun
		config.EnvSendGridAPIKey, // sendgrid
		config.EnvSMTPHost, config.EnvSMTPUsername, config.EnvSMTPPassword, // smtp
	)

	// common flags
	subprogramCmd := flag.NewFlagSet(subprogram, flag.ExitOnError)
	configPath := subprogramCmd.String("config", "./cfg/config.json", "Path to your configuration file.")

	// custom flags
	provider := subprogramCmd.String("provider", "", "Provider to use when sending emails. Defaults to EMAIL_PROVIDER.")
	senderAddress := subprogramCmd.String("sender", "", "Sender's address. Defaults to EMAIL_FROM.")
	recipientAddress := subprogramCmd.String("recipient", "", "Comma separated recipients. Defaults to EMAIL_TO.")
	subject := subprogramCmd.String("subject", "Test subject", "Subject of an email")
	emailTextFilePath := subprogramCmd.String("text", "", "Plain text body file. Empty sends a short default body.")
	attachmentPath := subprogramCmd.String("attachment", "", "File to attach, e.g. outputs/sales-report_2025-01-01_to_2025-01-07.xlsx")

	// parse and init config
	xerr.QuitIfError(subprogramCmd.Parse(flags), "Unable to subprogramCmd.Parse")
	config.InitializeConfig(*configPath).QuitIf("error")

	settings, err := config.LoadEmailSettings()
	xerr.QuitIfError(err, "Unable to load email settings")
	if *provider != "" {
		settings.EmailProvider = *provider
	}
	if *senderAddress != "" {
		settings.EmailFrom = *senderAddress
	}
	if *recipientAddress != "" {
		settings.EmailTo = *recipientAddress
	}

	util.RequiredFlag(&settings.EmailFrom, "sender")
	util.RequiredFlag(&settings.EmailTo, "recipient")
	util.RequiredFlag(attachmentPath, "attachment")
	util.EnsureFlags()

	body := "Test email from sales-report send-email.\n"
	if *emailTextFilePath != "" {
		textFileContentBytes, err := os.ReadFile(*emailTextFilePath)
		xerr.QuitIfError(err, fmt.Sprintf("Unable to read file '%s'", *emailTextFilePath))
		body = string(textFileContentBytes)
	}
	tl.Log(tl.Verbose, palette.BlueDim, "Full Email:\n```\n%s\n```", body)

	// send email here
	e := email.SendReport(context.Background(), settings, *subject, body, *attachmentPath)
	e.QuitIf("error")
}

func main() {
	// Check if there are enough arguments
	if len(os.Args) < 2 {
		tl.Log(tl.Error, palette.Red, "Usage: %s", "go run src/cmd/send-email/main.go subprogram_name(for example test-provider)")
		os.Exit(1)
	}
	subprogram := os.Args[1]
	flags := os.Args[2:]

	// Switch subprogram based on the first argument
	switch subprogram {
	case "test-provider":
		testProvider(subprogram, flags)
	default:
		tl.Log(tl.Error, palette.Red, "Unknown subprogram: %s", subprogram)
		os.Exit(1)
	}
}
