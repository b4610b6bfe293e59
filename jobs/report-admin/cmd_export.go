package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

type ReportIterator interface {
	FindAndExecuteOnReports(ctx context.Context, scope reportsDB.Scope, fn func(report reportTypes.Report, args ...interface{}) error, args ...interface{}) error
}

// ExportedReport is one line of the export. Unlike the API it includes the relay bookkeeping.
type ExportedReport struct {
	reportTypes.Report
	ChecklistDetails []reportTypes.ChecklistDetail `json:"checklist_details"`
	Notification     reportTypes.NotificationState `json:"notification"`
}

func exportCmd() *cobra.Command {
	var (
		uid     string
		outPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write reports as JSON lines, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			reportsDBService, closeDB, err := connectReportsDB()
			if err != nil {
				return err
			}
			defer closeDB()

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			scope := reportsDB.PrivilegedScope()
			if uid != "" {
				scope = reportsDB.OwnerScope(uid)
			}
			count, err := exportReports(cmd.Context(), w, reportsDBService, scope)
			if err != nil {
				return err
			}
			slog.Info("export finished", slog.Int("count", count))
			return nil
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "", "only reports of this reporter")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, stdout if empty")
	return cmd
}

func exportReports(ctx context.Context, w io.Writer, reports ReportIterator, scope reportsDB.Scope) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	count := 0
	err := reports.FindAndExecuteOnReports(ctx, scope, func(report reportTypes.Report, args ...interface{}) error {
		line := ExportedReport{
			Report:           report,
			ChecklistDetails: reportTypes.ChecklistDetails(report.ShiftStage, report.Checklist),
			Notification:     report.Notification,
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("export reports: %w", err)
	}
	return count, nil
}
