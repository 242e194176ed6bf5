// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive chat session for chatledger.
//
// Handles the default "chatledger" invocation: a liner-based REPL over the
// active conversation. Plain input goes to the model; slash commands drive
// the conversation lifecycle.
//
// Interactive commands:
//   /help               Show available commands
//   /new                Start a new conversation
//   /list               List stored conversations
//   /switch <id>        Make another conversation current
//   /delete [<id>]      Delete a conversation (default: current)
//   /rename <name>      Rename the current conversation
//   /personality [text] Show or set the system-prompt personality
//   /model [name]       Show or switch model
//   /attach <path>      Attach a document (txt, pdf, docx)
//   /detach             Remove the attached document
//   /cost               Show conversation cost in USD and PLN
//   /export [md|json]   Export the current conversation
//   /dismiss            Clear the error banner
//   /quit               Exit
//   Ctrl+C, Ctrl+D      Exit

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/morganforge/chatledger/internal/chat"
	"github.com/morganforge/chatledger/internal/config"
	"github.com/morganforge/chatledger/internal/document"
	"github.com/morganforge/chatledger/internal/exchange"
	"github.com/morganforge/chatledger/internal/model"
	"github.com/morganforge/chatledger/internal/pricing"
	"github.com/morganforge/chatledger/internal/session"
	"github.com/morganforge/chatledger/internal/storage"
)

// =============================================================================
// SESSION STATE
// =============================================================================

// App holds the state for an interactive session.
type App struct {
	cfg     *config.Config
	manager *session.Manager
	orch    *chat.Orchestrator
	rates   *exchange.Client
	prices  pricing.Table
	input   *InputReader

	// Attached document, sent with every turn until detached.
	documentText string
	documentName string
}

// newApp wires the session dependencies from configuration.
func newApp(cfg *config.Config) (*App, error) {
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening conversation store: %w", err)
	}

	manager := session.NewManager(store)
	if err := manager.Bootstrap(); err != nil {
		return nil, err
	}

	orch := chat.NewOrchestrator(openai.NewClient(cfg.APIKey), chat.Options{
		Model:             cfg.DefaultModel,
		Temperature:       float32(cfg.Temperature),
		MaxResponseTokens: cfg.MaxResponseTokens,
	})

	rates := exchange.NewClientWithConfig(&exchange.ClientConfig{
		CacheTTL: cfg.RateTTL(),
		Fallback: cfg.FallbackUSDPLN,
	})

	return &App{
		cfg:     cfg,
		manager: manager,
		orch:    orch,
		rates:   rates,
		prices:  cfg.PricingTable(),
		input:   NewInputReader(cfg.DataDir),
	}, nil
}

// =============================================================================
// REPL LOOP
// =============================================================================

// runSession runs the interactive session until the user exits.
func runSession(ctx context.Context, cfg *config.Config) error {
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.input.Close()

	app.printWelcome()

	for {
		app.printErrorBanner()

		// Ctrl+C (ErrPromptAborted) and Ctrl+D (EOF) both exit.
		input, err := app.input.ReadInput(app.prompt())
		if err != nil {
			fmt.Println()
			fmt.Println(renderConditional(infoStyle, "Goodbye!"))
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := app.handleSlashCommand(ctx, input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", renderConditional(errorStyle, "[Error]"), err)
			}
			if !shouldContinue {
				fmt.Println(renderConditional(infoStyle, "Goodbye!"))
				return nil
			}
			continue
		}

		if err := app.processTurn(ctx, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", renderConditional(errorStyle, "[Error]"), err)
		}
	}
}

// prompt renders the REPL prompt with the active conversation id.
func (a *App) prompt() string {
	text := fmt.Sprintf("chatledger[%d]> ", a.manager.Active().ID)
	return renderConditional(promptStyle, text)
}

// printErrorBanner shows the retained model-call error, if any, before the
// next prompt.
func (a *App) printErrorBanner() {
	if lastErr := a.orch.LastError(); lastErr != "" {
		fmt.Fprintf(os.Stderr, "%s %s %s\n",
			renderConditional(errorStyle, "[Model error]"),
			lastErr,
			renderConditional(infoStyle, "(/dismiss to clear)"))
	}
}

// printWelcome prints the session banner.
func (a *App) printWelcome() {
	conv := a.manager.Active()

	fmt.Println()
	fmt.Println(renderConditional(headerStyle, "chatledger interactive chat"))
	fmt.Println(renderConditional(infoStyle, strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		renderConditional(infoStyle, "Model:"),
		renderConditional(commandStyle, a.orch.Model()))
	fmt.Printf("%s %s (#%d, %d messages)\n",
		renderConditional(infoStyle, "Conversation:"),
		renderConditional(commandStyle, conv.Name),
		conv.ID,
		conv.MessageCount())
	fmt.Println()
	fmt.Println(renderConditional(infoStyle, "Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// =============================================================================
// TURN PROCESSING
// =============================================================================

// processTurn sends one user message through the orchestrator and persists
// both sides of the exchange.
func (a *App) processTurn(ctx context.Context, input string) error {
	conv := a.manager.Active()

	// The context window is taken before the new user turn is appended; the
	// orchestrator adds the user turn itself.
	history := conv.Window(a.cfg.HistoryWindow)
	reply := a.orch.Reply(ctx, conv.Personality, input, history, a.documentText)

	if err := a.manager.AppendMessage(model.NewUserMessage(input)); err != nil {
		return err
	}
	if err := a.manager.AppendMessage(reply); err != nil {
		return err
	}

	fmt.Println()
	displayResponse(reply.Content)
	fmt.Println()

	if reply.HasUsage() {
		fmt.Fprintf(os.Stderr, "%s %d tokens (%d in / %d out) | %.2fs\n",
			renderConditional(infoStyle, "[Stats]"),
			reply.Usage.TotalTokens,
			reply.Usage.PromptTokens,
			reply.Usage.CompletionTokens,
			reply.Usage.ResponseTime)
	}

	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands. Returns (shouldContinue,
// error) where shouldContinue=false means exit.
func (a *App) handleSlashCommand(ctx context.Context, input string) (bool, error) {
	command, rest := splitCommand(input)

	switch command {
	case "/help", "/h", "/?", "/":
		a.printHelp()
		return true, nil

	case "/new", "/n":
		conv, err := a.manager.New()
		if err != nil {
			return true, err
		}
		fmt.Printf("%s Started %s (#%d)\n",
			renderConditional(commandStyle, "[OK]"), conv.Name, conv.ID)
		return true, nil

	case "/list", "/l":
		return true, a.handleList()

	case "/switch", "/s":
		return true, a.handleSwitch(rest)

	case "/delete", "/d":
		return true, a.handleDelete(rest)

	case "/rename":
		return true, a.handleRename(rest)

	case "/personality", "/p":
		return true, a.handlePersonality(rest)

	case "/model", "/m":
		return true, a.handleModel(rest)

	case "/attach", "/a":
		return true, a.handleAttach(rest)

	case "/detach":
		a.documentText = ""
		a.documentName = ""
		fmt.Println(renderConditional(commandStyle, "[OK] Document detached"))
		return true, nil

	case "/cost", "/c":
		return true, a.handleCost(ctx)

	case "/export", "/e":
		return true, a.handleExport(rest)

	case "/dismiss":
		a.orch.ClearLastError()
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// splitCommand separates the command word from its raw argument text.
// Multi-word arguments (/rename, /personality) keep their spacing.
func splitCommand(input string) (command, rest string) {
	command = input
	if idx := strings.IndexAny(input, " \t"); idx >= 0 {
		command = input[:idx]
		rest = strings.TrimSpace(input[idx:])
	}
	return strings.ToLower(command), rest
}

// handleList prints the conversation table with the current one marked.
func (a *App) handleList() error {
	metas, err := a.manager.List()
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(formatConversationTable(metas, a.manager.Active().ID))
	fmt.Println()
	return nil
}

// handleSwitch makes another conversation current.
func (a *App) handleSwitch(rest string) error {
	if rest == "" {
		return fmt.Errorf("usage: /switch <id>")
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q", rest)
	}

	before := a.manager.Active().ID
	if err := a.manager.Switch(id); err != nil {
		return err
	}

	conv := a.manager.Active()
	if conv.ID == before && id != before {
		fmt.Printf("%s Conversation %d does not exist\n",
			renderConditional(warningStyle, "[Warning]"), id)
		return nil
	}

	fmt.Printf("%s Switched to %s (#%d, %d messages)\n",
		renderConditional(commandStyle, "[OK]"), conv.Name, conv.ID, conv.MessageCount())
	return nil
}

// handleDelete deletes a conversation, defaulting to the current one.
func (a *App) handleDelete(rest string) error {
	id := a.manager.Active().ID
	if rest != "" {
		parsed, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("invalid conversation id %q", rest)
		}
		id = parsed
	}

	if err := a.manager.Delete(id); err != nil {
		return err
	}

	conv := a.manager.Active()
	fmt.Printf("%s Deleted conversation %d, now on %s (#%d)\n",
		renderConditional(commandStyle, "[OK]"), id, conv.Name, conv.ID)
	return nil
}

// handleRename renames the current conversation.
func (a *App) handleRename(rest string) error {
	if rest == "" {
		return fmt.Errorf("usage: /rename <name>")
	}
	if err := a.manager.Rename(rest); err != nil {
		return err
	}
	fmt.Printf("%s Renamed to %s\n", renderConditional(commandStyle, "[OK]"), rest)
	return nil
}

// handlePersonality shows or sets the system-prompt personality.
func (a *App) handlePersonality(rest string) error {
	if rest == "" {
		fmt.Println()
		fmt.Println(renderConditional(headerStyle, "Personality"))
		fmt.Println(a.manager.Active().Personality)
		fmt.Println()
		return nil
	}

	if err := a.manager.SetPersonality(rest); err != nil {
		return err
	}
	fmt.Println(renderConditional(commandStyle, "[OK] Personality updated"))
	return nil
}

// handleModel shows or switches the model. Only models present in the
// pricing table are accepted, so every response stays priceable.
func (a *App) handleModel(rest string) error {
	if rest == "" {
		fmt.Printf("%s %s\n",
			renderConditional(infoStyle, "Current model:"),
			renderConditional(commandStyle, a.orch.Model()))
		fmt.Printf("%s %s\n",
			renderConditional(infoStyle, "Available:"),
			strings.Join(a.prices.Models(), ", "))
		return nil
	}

	if !a.prices.Has(rest) {
		return fmt.Errorf("unknown model %q (available: %s)", rest, strings.Join(a.prices.Models(), ", "))
	}

	a.orch.SetModel(rest)
	fmt.Printf("%s Switched to model: %s\n", renderConditional(commandStyle, "[OK]"), rest)
	return nil
}

// handleAttach extracts an attachment and keeps its text for later turns.
func (a *App) handleAttach(rest string) error {
	if rest == "" {
		return fmt.Errorf("usage: /attach <path> (supported: %s)",
			strings.Join(document.SupportedExtensions, ", "))
	}

	text, err := document.Extract(rest)
	if err != nil {
		return err
	}

	a.documentText = text
	a.documentName = filepath.Base(rest)
	fmt.Printf("%s Attached %s (%d characters)\n",
		renderConditional(commandStyle, "[OK]"), a.documentName, len([]rune(text)))
	return nil
}

// handleCost prints the conversation cost in USD and PLN with token and time
// totals.
func (a *App) handleCost(ctx context.Context) error {
	conv := a.manager.Active()

	modelPricing, ok := a.prices[a.orch.Model()]
	if !ok {
		return fmt.Errorf("no pricing for model %q", a.orch.Model())
	}

	costUSD, seconds := pricing.CostAndTime(conv.Messages, modelPricing)
	tokens := pricing.TotalTokens(conv.Messages)
	rate := a.rates.USDPLN(ctx)

	fmt.Println()
	fmt.Println(renderConditional(headerStyle, "Conversation Cost"))
	fmt.Println(renderConditional(infoStyle, strings.Repeat("─", 20)))
	fmt.Printf("  %s $%.6f\n", renderConditional(infoStyle, "USD:"), costUSD)
	if rate.Date != "" {
		fmt.Printf("  %s %.4f zł (1 USD = %.4f PLN, %s)\n",
			renderConditional(infoStyle, "PLN:"), costUSD*rate.Value, rate.Value, rate.Date)
	} else {
		fmt.Printf("  %s %.4f zł (1 USD = %.4f PLN, fallback rate)\n",
			renderConditional(infoStyle, "PLN:"), costUSD*rate.Value, rate.Value)
	}
	fmt.Printf("  %s %d\n", renderConditional(infoStyle, "Tokens:"), tokens)
	fmt.Printf("  %s %.2fs\n", renderConditional(infoStyle, "Model time:"), seconds)
	fmt.Println()
	return nil
}

// handleExport exports the current conversation.
func (a *App) handleExport(rest string) error {
	format := rest
	if format == "" {
		format = "md"
	}

	path, err := exportConversation(a.manager.Active(), format, ".")
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", renderConditional(commandStyle, "Exported:"), path)
	return nil
}

// printHelp prints the available commands.
func (a *App) printHelp() {
	fmt.Println()
	fmt.Println(renderConditional(headerStyle, "Available Commands"))
	fmt.Println(renderConditional(infoStyle, strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new, /n", "Start a new conversation"},
		{"/list, /l", "List stored conversations"},
		{"/switch <id>", "Make another conversation current"},
		{"/delete [<id>]", "Delete a conversation (default: current)"},
		{"/rename <name>", "Rename the current conversation"},
		{"/personality [text]", "Show or set the personality"},
		{"/model [name]", "Show or switch model"},
		{"/attach <path>", "Attach a document (txt, pdf, docx)"},
		{"/detach", "Remove the attached document"},
		{"/cost, /c", "Show conversation cost (USD and PLN)"},
		{"/export [md|json]", "Export the current conversation"},
		{"/dismiss", "Clear the error banner"},
		{"/quit, /q", "Exit"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			renderConditional(commandStyle, fmt.Sprintf("%-21s", c.cmd)),
			renderConditional(infoStyle, c.desc))
	}

	if a.documentName != "" {
		fmt.Println()
		fmt.Printf("%s %s\n", renderConditional(infoStyle, "Attached document:"), a.documentName)
	}

	fmt.Println()
}
