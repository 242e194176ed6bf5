// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - "chatledger export" command.

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/morganforge/chatledger/internal/config"
	"github.com/morganforge/chatledger/internal/export"
	"github.com/morganforge/chatledger/internal/model"
	"github.com/morganforge/chatledger/internal/storage"
)

// newExportCmd builds the "export" subcommand.
func newExportCmd(flags *rootFlags) *cobra.Command {
	var format string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation to Markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid conversation id %q", args[0])
			}

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return err
			}

			conv, err := store.Get(id)
			if err != nil {
				return err
			}

			path, err := exportConversation(conv, format, outputDir)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", renderConditional(commandStyle, "Exported:"), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "export format: md or json")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")

	return cmd
}

// exportConversation writes conv in the given format and returns the output
// path.
func exportConversation(conv *model.Conversation, format, outputDir string) (string, error) {
	opts := &export.Options{OutputDir: outputDir, IncludeMetadata: true}

	switch format {
	case "md", "markdown":
		return export.ExportMarkdown(conv, opts)
	case "json":
		return export.ExportJSON(conv, opts)
	default:
		return "", fmt.Errorf("unknown export format %q (use md or json)", format)
	}
}
