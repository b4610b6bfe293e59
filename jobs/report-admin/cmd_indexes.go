package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

const (
	DropIndexesModeNone     = "none"
	DropIndexesModeDefaults = "defaults"
	DropIndexesModeAll      = "all"
)

func createIndexesCmd() *cobra.Command {
	var dropMode string

	cmd := &cobra.Command{
		Use:   "create-indexes",
		Short: "Create the default indexes of the reports database",
		RunE: func(cmd *cobra.Command, args []string) error {
			reportsDBService, closeDB, err := connectReportsDB()
			if err != nil {
				return err
			}
			defer closeDB()

			switch dropMode {
			case DropIndexesModeAll:
				reportsDBService.DropIndexForReportsCollection(true)
				reportsDBService.DropIndexForRateLimitHitsCollection(true)
			case DropIndexesModeDefaults:
				reportsDBService.DropIndexForReportsCollection(false)
				reportsDBService.DropIndexForRateLimitHitsCollection(false)
			case DropIndexesModeNone:
			default:
				return fmt.Errorf("unknown drop mode %q", dropMode)
			}

			reportsDBService.CreateDefaultIndexesForReportsCollection()
			reportsDBService.CreateDefaultIndexesForRateLimitHitsCollection()

			indexes, err := reportsDBService.ListReportIndexes(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(indexes)
		},
	}
	cmd.Flags().StringVar(&dropMode, "drop", DropIndexesModeNone, "drop indexes first: none, defaults or all")
	return cmd
}
