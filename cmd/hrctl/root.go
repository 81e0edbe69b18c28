package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hrportal/internal/app"
	"hrportal/internal/config"
	apperrors "hrportal/internal/errors"
	"hrportal/internal/logging"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "Operate the HR document portal stores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(
		newMigrateCmd(cfg),
		newUserCmd(cfg, &jsonOutput),
		newDocumentCmd(cfg, &jsonOutput),
	)
	return cmd
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and documents tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg, func(_ *app.App) error {
				return writePlain(cmd.OutOrStdout(), "record store %s is up to date\n", config.DefaultRecordStore)
			})
		},
	}
}

// withApp opens the stores for one command and closes them afterwards.
func withApp(cmd *cobra.Command, cfg *config.Config, fn func(a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return explain(fn(a))
}

// explain appends the remediation hint to store failures.
func explain(err error) error {
	if errors.Is(err, apperrors.ErrStoreUnavailable) {
		return fmt.Errorf("%w (%s)", err, apperrors.StoreHint)
	}
	return err
}

func exactArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
