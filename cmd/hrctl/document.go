package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hrportal/internal/app"
	"hrportal/internal/config"
	"hrportal/internal/model"
	"hrportal/internal/service"
)

// operator is the identity CLI commands act as.
var operator = &model.Identity{Name: "hrctl", Identifier: "hrctl", Admin: true}

func newDocumentCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Upload, list and retrieve documents",
	}
	cmd.AddCommand(newDocumentUploadCmd(cfg, jsonOutput))
	cmd.AddCommand(newDocumentListCmd(cfg, jsonOutput))
	cmd.AddCommand(newDocumentFetchCmd(cfg))
	cmd.AddCommand(newDocumentLinkCmd(cfg))
	return cmd
}

func newDocumentUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var owner, period string

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF for an employee",
		Args:  exactArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withApp(cmd, cfg, func(a *app.App) error {
				doc, err := a.Documents.Upload(cmd.Context(), service.Upload{
					Filename: filepath.Base(args[0]),
					Owner:    owner,
					Period:   period,
					Body:     f,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if *jsonOutput {
					return writeJSON(out, doc)
				}
				return writePlain(out, "uploaded %s for %s (%s) as %s\n", doc.Filename, doc.OwnerIdentifier, doc.PeriodLabel, doc.BlobRef)
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner identifier")
	cmd.Flags().StringVar(&period, "period", "", "period label, e.g. March/2025")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func newDocumentListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list <owner>",
		Short: "List an employee's documents",
		Args:  exactArgs(1, "owner identifier is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(a *app.App) error {
				docs, err := a.Documents.ListDocuments(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if *jsonOutput {
					return writeJSON(out, map[string]any{"count": len(docs), "documents": docs})
				}
				if len(docs) == 0 {
					return writePlain(out, "no documents\n")
				}
				if err := writePlain(out, "PERIOD\tFILENAME\tREF\n"); err != nil {
					return err
				}
				for _, doc := range docs {
					if err := writePlain(out, "%s\t%s\t%s\n", doc.PeriodLabel, doc.Filename, doc.BlobRef); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newDocumentFetchCmd(cfg *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <ref>",
		Short: "Write a document's content to a file or stdout",
		Args:  exactArgs(1, "blob reference is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(a *app.App) error {
				rc, doc, err := a.Documents.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				defer rc.Close()

				if output == "" {
					_, err = io.Copy(cmd.OutOrStdout(), rc)
					return err
				}

				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if _, err := io.Copy(f, rc); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %s)\n", output, doc.OwnerIdentifier, doc.PeriodLabel)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (default stdout)")
	return cmd
}

func newDocumentLinkCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "link <ref>",
		Short: "Print the link a document opens at",
		Args:  exactArgs(1, "blob reference is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(a *app.App) error {
				link, err := a.Documents.OpenLink(cmd.Context(), operator, args[0])
				if err != nil {
					return err
				}
				return writePlain(cmd.OutOrStdout(), "%s\n", link)
			})
		},
	}
}
