package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	jwthandling "github.com/saladoop/shift-report-backend/pkg/jwt-handling"
	"github.com/saladoop/shift-report-backend/pkg/utils"
)

type tokenOptions struct {
	UID       string
	Email     string
	Name      string
	Avatar    string
	ExpiresIn string
}

func issueTokenCmd() *cobra.Command {
	opts := tokenOptions{}

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue a reporter token, e.g. for a kiosk device or for testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return issueToken(cmd.OutOrStdout(), conf.ReporterJWTConfig.SignKey, opts)
		},
	}
	cmd.Flags().StringVar(&opts.UID, "uid", "", "reporter id (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "reporter email")
	cmd.Flags().StringVar(&opts.Name, "name", "", "reporter display name")
	cmd.Flags().StringVar(&opts.Avatar, "avatar", "", "reporter avatar URL")
	cmd.Flags().StringVar(&opts.ExpiresIn, "expires-in", "30d", "token lifetime, Go duration or number of days with a d suffix")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func issueToken(w io.Writer, signKey string, opts tokenOptions) error {
	if signKey == "" {
		return fmt.Errorf("reporter JWT sign key not configured")
	}
	expiresIn, err := utils.ParseDurationString(opts.ExpiresIn)
	if err != nil {
		return fmt.Errorf("invalid expires-in: %w", err)
	}
	if !utils.IsURLSafe(opts.UID) {
		return fmt.Errorf("uid %q contains characters not allowed in storage keys", opts.UID)
	}

	token, err := jwthandling.GenerateNewReporterToken(expiresIn, opts.UID, opts.Email, opts.Name, opts.Avatar, signKey)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}
