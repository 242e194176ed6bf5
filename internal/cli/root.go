// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Cobra command tree for chatledger.
//
// The root command runs the interactive session. Subcommands cover the
// non-interactive surface:
//
//   chatledger                 Start the interactive chat session
//   chatledger list            List stored conversations
//   chatledger export <id>     Export a conversation to Markdown or JSON

package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/morganforge/chatledger/internal/config"
)

// rootFlags holds the persistent flag values shared by all commands.
type rootFlags struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the chatledger command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "chatledger",
		Short: "Persistent chat sessions with per-conversation cost accounting",
		Long: `chatledger keeps numbered chat conversations on disk, sends each turn to
an OpenAI model and accounts the cost of every response in USD and PLN.

Running without a subcommand starts the interactive session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flags.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			return runSession(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.chatledger/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newListCmd(flags))
	rootCmd.AddCommand(newExportCmd(flags))

	return rootCmd
}

// Execute runs the command tree and reports failure via exit code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", renderConditional(errorStyle, "[Error]"), err)
		os.Exit(1)
	}
}

// setupLogging configures the package-level zerolog logger. Warnings and
// errors only by default; --verbose lowers the threshold to debug.
func setupLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
