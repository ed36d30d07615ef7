package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title 政务热线智能助手API
// @version 1.0.0
// @description Government hotline ticket intake with model-assisted triage and trend alerts
// @BasePath /
func main() {
	root := &cobra.Command{
		Use:           "govhotline",
		Short:         "Government hotline ticket triage backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context())
			},
		},
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
