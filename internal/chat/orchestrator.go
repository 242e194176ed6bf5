// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat assembles model requests and normalizes responses.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/morganforge/chatledger/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// documentPreamble introduces attached document text inside the system
// prompt.
const documentPreamble = "\n\nYou have also received the following document for analysis:\n\n"

// TruncationNotice is appended to assistant content when the model stopped
// because it hit the output token limit. This is a content-augmentation
// policy, not an error.
const TruncationNotice = "\n\n⚠️ **Response was truncated** - the token limit was reached. " +
	"Increase `max_response_tokens` to get the full response."

// errorPrefix and errorSuffix frame the failure description in the assistant
// message produced for a failed call.
const (
	errorPrefix = "Sorry, an error occurred while generating the response.\n\n**Error details:**\n"
	errorSuffix = "\n\nTry again or check your settings."
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// CompletionClient is the part of the OpenAI client the orchestrator needs.
// *openai.Client satisfies it.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configures the model invocation.
type Options struct {
	// Model is the model name sent with every request.
	Model string

	// Temperature is the sampling temperature.
	Temperature float32

	// MaxResponseTokens caps the completion length.
	MaxResponseTokens int
}

// Orchestrator turns a user utterance plus conversation history into a
// priced model invocation. A failed call never raises to the caller: it
// produces an assistant message carrying the error template and no usage,
// and retains the failure description for the error banner.
type Orchestrator struct {
	client  CompletionClient
	opts    Options
	lastErr string
}

// NewOrchestrator creates an orchestrator over the given completion client.
func NewOrchestrator(client CompletionClient, opts Options) *Orchestrator {
	return &Orchestrator{client: client, opts: opts}
}

// SetModel changes the model used for subsequent requests.
func (o *Orchestrator) SetModel(name string) {
	o.opts.Model = name
}

// Model returns the model used for requests.
func (o *Orchestrator) Model() string {
	return o.opts.Model
}

// LastError returns the retained description of the most recent failed call,
// or "" when the last call succeeded or no call was made.
func (o *Orchestrator) LastError() string {
	return o.lastErr
}

// ClearLastError dismisses the retained error.
func (o *Orchestrator) ClearLastError() {
	o.lastErr = ""
}

// =============================================================================
// REPLY
// =============================================================================

// Reply invokes the model with one system message (the personality, with the
// document text appended when present), the supplied history window in
// original order, and the new user turn. It blocks until the call returns.
//
// On success the returned assistant message carries the response content
// (with the truncation notice appended when the output hit the length limit)
// and a usage record including the wall-clock response time. On failure it
// carries the error template and no usage, so the turn prices at zero.
func (o *Orchestrator) Reply(ctx context.Context, personality, userText string, history []model.Message, documentText string) model.Message {
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Str("model", o.opts.Model).Logger()

	systemContent := personality
	if documentText != "" {
		systemContent += documentPreamble + documentText
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemContent,
	})
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	req := openai.ChatCompletionRequest{
		Model:       o.opts.Model,
		Messages:    messages,
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxResponseTokens,
	}

	logger.Debug().Int("history", len(history)).Bool("document", documentText != "").Msg("sending chat completion request")

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		logger.Error().Err(err).Msg("chat completion failed")
		o.lastErr = err.Error()
		return model.NewAssistantMessage(errorPrefix+err.Error()+errorSuffix, nil)
	}
	if len(resp.Choices) == 0 {
		logger.Error().Msg("chat completion returned no choices")
		o.lastErr = "model returned an empty response"
		return model.NewAssistantMessage(errorPrefix+o.lastErr+errorSuffix, nil)
	}

	o.lastErr = ""

	choice := resp.Choices[0]
	content := choice.Message.Content
	if choice.FinishReason == openai.FinishReasonLength {
		logger.Warn().Msg("response truncated by token limit")
		content += TruncationNotice
	}

	// A response without token counts stores no usage at all, so the turn
	// prices at zero instead of carrying a record with only elapsed time.
	var usage *model.Usage
	if resp.Usage.PromptTokens != 0 || resp.Usage.CompletionTokens != 0 || resp.Usage.TotalTokens != 0 {
		usage = &model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
			ResponseTime:     elapsed,
		}
	}

	logger.Debug().
		Bool("usage", usage != nil).
		Float64("response_time", elapsed).
		Msg("chat completion succeeded")

	return model.NewAssistantMessage(content, usage)
}
