package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saladoop/shift-report-backend/pkg/notification"
	smtp_client "github.com/saladoop/shift-report-backend/pkg/smtp-client"
)

const (
	RENDER_FORMAT_SLACK = "slack"
	RENDER_FORMAT_HTML  = "html"
	RENDER_FORMAT_TEXT  = "text"
	RENDER_FORMAT_EML   = "eml"
)

func renderCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render <report-id>",
		Short: "Print the notification of a stored report without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportsDBService, closeDB, err := connectReportsDB()
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := reportsDBService.GetReportByID(args[0])
			if err != nil {
				return err
			}

			relay := notification.NewRelay(notification.RelayOptions{CountOnlyPhotos: conf.Relay.CountOnlyPhotos})
			rendered, err := relay.Render(notification.PayloadFromReport(report))
			if err != nil {
				return err
			}
			return writeRendered(cmd.OutOrStdout(), rendered, format, conf.Relay.SmtpServers.From, conf.Relay.BossEmail)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", RENDER_FORMAT_SLACK, "output format: slack, html, text or eml")
	return cmd
}

func writeRendered(w io.Writer, rendered *notification.RenderedReport, format string, from string, to string) error {
	switch format {
	case RENDER_FORMAT_SLACK:
		_, err := fmt.Fprintln(w, string(rendered.SlackBody))
		return err
	case RENDER_FORMAT_HTML:
		_, err := io.WriteString(w, rendered.Email.HTML)
		return err
	case RENDER_FORMAT_TEXT:
		_, err := io.WriteString(w, rendered.Email.Text)
		return err
	case RENDER_FORMAT_EML:
		if from == "" || to == "" {
			return fmt.Errorf("eml output needs relay.smtp_servers.from and relay.boss_email")
		}
		if !strings.Contains(from, "<") {
			from = notification.SenderAddress(from)
		}
		msg, err := smtp_client.BuildMessage(from, []string{to}, rendered.Email.Subject, rendered.Email.HTML, rendered.Email.Text)
		if err != nil {
			return err
		}
		_, err = w.Write(msg)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
