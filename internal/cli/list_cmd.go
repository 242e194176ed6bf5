// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// list_cmd.go - "chatledger list" command.

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/morganforge/chatledger/internal/config"
	"github.com/morganforge/chatledger/internal/storage"
)

// newListCmd builds the "list" subcommand.
func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}

			store, err := storage.New(cfg.DataDir)
			if err != nil {
				return err
			}

			metas, err := store.List()
			if err != nil {
				return err
			}

			currentID, err := store.CurrentID()
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				var decodeErr *storage.DecodeError
				if !errors.As(err, &decodeErr) {
					return err
				}
				currentID = 0
			}

			fmt.Print(formatConversationTable(metas, currentID))
			return nil
		},
	}
}

// formatConversationTable renders conversation metadata as an aligned table.
// The current conversation is marked with an asterisk. Column widths use
// runewidth so names with wide characters stay aligned.
func formatConversationTable(metas []storage.Meta, currentID int) string {
	if len(metas) == 0 {
		return renderConditional(infoStyle, "No conversations yet.") + "\n"
	}

	nameWidth := len("Name")
	for _, meta := range metas {
		if w := runewidth.StringWidth(meta.Name); w > nameWidth {
			nameWidth = w
		}
	}

	var sb strings.Builder
	sb.WriteString(renderConditional(headerStyle, fmt.Sprintf("   %4s  %s  %s",
		"ID", runewidth.FillRight("Name", nameWidth), "Messages")))
	sb.WriteString("\n")

	for _, meta := range metas {
		marker := "  "
		line := fmt.Sprintf("%4s  %s  %8d",
			strconv.Itoa(meta.ID),
			runewidth.FillRight(meta.Name, nameWidth),
			meta.MessageCount)

		if meta.ID == currentID {
			marker = renderConditional(activeStyle, "* ")
			line = renderConditional(activeStyle, line)
		}

		sb.WriteString(" " + marker + line + "\n")
	}

	return sb.String()
}
