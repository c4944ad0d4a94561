package llmclient

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ragcore/internal/apperr"
	"ragcore/internal/config"
	"ragcore/internal/observability"
)

// ChatComplete sends a single-turn system+user prompt to the chat-completion
// provider selected by model's prefix and returns the raw text response.
// Model identifiers starting with "claude" route to Anthropic; everything
// else routes to the OpenAI-compatible chat completions endpoint.
func ChatComplete(ctx context.Context, cfg config.ModelsConfig, model, systemPrompt, userPrompt string) (string, error) {
	if strings.HasPrefix(strings.ToLower(model), "claude") {
		return anthropicChat(ctx, cfg, model, systemPrompt, userPrompt)
	}
	return openAIChat(ctx, cfg, model, systemPrompt, userPrompt)
}

func openAIChat(ctx context.Context, cfg config.ModelsConfig, model, systemPrompt, userPrompt string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey), option.WithHTTPClient(observability.NewHTTPClient(nil))}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := sdk.NewClient(opts...)
	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(systemPrompt),
			sdk.UserMessage(userPrompt),
		},
	}
	comp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llmclient: %w: openai chat: %v", apperr.ErrInference, err)
	}
	if len(comp.Choices) == 0 {
		return "", fmt.Errorf("llmclient: %w: openai chat: no choices returned", apperr.ErrInference)
	}
	return comp.Choices[0].Message.Content, nil
}

func anthropicChat(ctx context.Context, cfg config.ModelsConfig, model, systemPrompt, userPrompt string) (string, error) {
	opts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(cfg.AnthropicAPIKey), anthropicoption.WithHTTPClient(observability.NewHTTPClient(nil))}
	if cfg.AnthropicBaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.AnthropicBaseURL))
	}
	client := anthropic.NewClient(opts...)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt))},
	}
	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llmclient: %w: anthropic chat: %v", apperr.ErrInference, err)
	}
	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("llmclient: %w: anthropic chat: empty response", apperr.ErrInference)
	}
	return sb.String(), nil
}
