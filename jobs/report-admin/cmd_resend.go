package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saladoop/shift-report-backend/pkg/notification"
)

func resendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend <report-id>",
		Short: "Reset the notification state of a report and deliver it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportsDBService, closeDB, err := connectReportsDB()
			if err != nil {
				return err
			}
			defer closeDB()

			reportID := args[0]
			if err := reportsDBService.ResetNotificationState(reportID); err != nil {
				return err
			}

			relay, closeRelay := notification.NewRelayFromConfig(conf.Relay)
			defer closeRelay()

			notifier := notification.NewNotifier(reportsDBService, relay, 0)
			if err := notifier.NotifyReport(cmd.Context(), reportID); err != nil {
				return err
			}

			report, err := reportsDBService.GetReportByID(reportID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.Notification.Slack != nil {
				fmt.Fprintf(out, "slack: %s %s\n", report.Notification.Slack.Status, report.Notification.Slack.Error)
			}
			if report.Notification.Email != nil {
				fmt.Fprintf(out, "email: %s %s\n", report.Notification.Email.Status, report.Notification.Email.Error)
			}
			return nil
		},
	}
}
