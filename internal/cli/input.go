// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// input.go - Line input with history for the interactive session.

package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// historyFileName is the input history file under the data directory.
const historyFileName = "input_history"

// InputReader provides line editing and input history for the REPL.
// Arrow keys navigate history; Ctrl+C aborts the prompt.
type InputReader struct {
	line        *liner.State
	historyFile string
}

// NewInputReader creates an input reader whose history persists under
// dataDir.
func NewInputReader(dataDir string) *InputReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &InputReader{
		line:        line,
		historyFile: filepath.Join(dataDir, historyFileName),
	}
	r.loadHistory()
	return r
}

// loadHistory loads input history from file.
func (r *InputReader) loadHistory() {
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-empty input is
// appended to history.
func (r *InputReader) ReadInput(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}

	return input, nil
}

// saveHistory persists input history with owner-only permissions.
func (r *InputReader) saveHistory() {
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	r.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (r *InputReader) Close() {
	r.saveHistory()
	r.line.Close()
}
