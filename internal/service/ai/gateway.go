// Package ai wraps the opaque inference capability behind two exchanges:
// a free-form chat completion and a tool-calling extraction. The model's
// reasoning quality is out of scope; only the shape of the exchange and
// the normalization of its result are specified here.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/pennyledger/backend/internal/config"
	"github.com/pennyledger/backend/internal/model/convo"
)

// Result is the normalized outcome of one model exchange: free text,
// tool invocations, or both.
type Result struct {
	Content   string
	ToolCalls []schema.ToolCall
}

// Text returns the result's free-text content, which may be empty when
// the model chose a tool call instead.
func (r Result) Text() string {
	return r.Content
}

// ToolCall finds the first invocation of the named tool.
func (r Result) ToolCall(name string) (schema.ToolCall, bool) {
	for _, call := range r.ToolCalls {
		if call.Function.Name == name {
			return call, true
		}
	}
	return schema.ToolCall{}, false
}

// Service is the model gateway.
type Service struct {
	chatModel model.ChatModel
	toolModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the gateway. Two model instances are held: one
// compiled into the chat chain, and one with the addTransaction tool
// bound for the structured add exchange.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	toolModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create tool model: %w", err)
	}
	if err := toolModel.BindTools([]*schema.ToolInfo{addTransactionTool()}); err != nil {
		return nil, fmt.Errorf("bind addTransaction tool: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		toolModel: toolModel,
		chain:     runnable,
	}, nil
}

// GenerateReply runs the chat exchange: system framing, the session's
// history, then the new message as the final user turn.
func (s *Service) GenerateReply(ctx context.Context, history []convo.Entry, message string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":  chatSystemPrompt,
		"history": historyMessages(history),
		"query":   message,
	})
	if err != nil {
		return "", fmt.Errorf("run chat chain: %w", err)
	}

	slog.InfoContext(ctx, "chat reply generated", "length", len(response.Content))
	return response.Content, nil
}

// ExtractTransaction runs the structured add exchange with the
// addTransaction tool declared, returning whatever the model produced:
// a tool invocation, free text asking for missing fields, or both.
func (s *Service) ExtractTransaction(ctx context.Context, history []convo.Entry, instruction string) (Result, error) {
	messages := BuildMessages(addSystemPrompt, history, instruction)

	response, err := s.toolModel.Generate(ctx, messages)
	if err != nil {
		return Result{}, fmt.Errorf("run tool exchange: %w", err)
	}

	slog.InfoContext(ctx, "add exchange completed", "tool_calls", len(response.ToolCalls))
	return resultFromMessage(response), nil
}

func resultFromMessage(msg *schema.Message) Result {
	if msg == nil {
		return Result{}
	}
	return Result{Content: msg.Content, ToolCalls: msg.ToolCalls}
}
