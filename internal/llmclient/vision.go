package llmclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"google.golang.org/genai"

	"ragcore/internal/apperr"
	"ragcore/internal/config"
	"ragcore/internal/observability"
)

// CaptionVerdict is the vision model's embed decision for one rasterized
// page: a description to store, whether the page is worth embedding at all,
// and why. This is the VLM's only contract with callers — there is no
// "caption string" API beneath it, so a caller can never accidentally store
// an image the model itself flagged as not worth embedding.
type CaptionVerdict struct {
	Description string `json:"description"`
	ShouldEmbed bool   `json:"shouldEmbed"`
	Reason      string `json:"reason"`
}

const verdictInstruction = `Respond with strict JSON only, no Markdown fences, matching exactly: {"description": string, "shouldEmbed": bool, "reason": string}. "description" is two to three sentences describing diagrams, charts, tables, or photographs on the page (omit plain body text). Set "shouldEmbed" to false, with a one-sentence "reason", when the page has no diagram, chart, table, or photograph worth retrieving later (e.g. it is blank, a cover page, or plain body text only).`

// CaptionImage sends a single image plus a text prompt to the vision
// provider selected by model's prefix, and parses its response as a
// CaptionVerdict. prompt should describe what to look at (e.g. surrounding
// document context); the strict-JSON response format itself is appended
// here so every caller gets the same contract. Model identifiers starting
// with "gemini" route to the Gemini-family VLM via genai; everything else
// routes through the OpenAI-compatible image-content-part format. Anthropic
// is not a vision target here: nothing in the retrieved stack demonstrates
// an Anthropic image content block, so captioning never dispatches to it.
func CaptionImage(ctx context.Context, cfg config.ModelsConfig, model, prompt, mimeType string, data []byte) (CaptionVerdict, error) {
	fullPrompt := prompt + "\n\n" + verdictInstruction

	var raw string
	var err error
	if strings.HasPrefix(strings.ToLower(model), "gemini") {
		raw, err = geminiCaption(ctx, cfg, model, fullPrompt, mimeType, data)
	} else {
		raw, err = openAICaption(ctx, cfg, model, fullPrompt, mimeType, data)
	}
	if err != nil {
		return CaptionVerdict{}, err
	}

	var verdict CaptionVerdict
	if jerr := json.Unmarshal([]byte(ExtractJSON(raw)), &verdict); jerr != nil {
		// The model didn't return parseable JSON despite the instruction.
		// Rather than discard a caption the model clearly produced, fall
		// back to the raw text as the description and default to
		// embedding it.
		return CaptionVerdict{Description: strings.TrimSpace(raw), ShouldEmbed: true, Reason: "fallback: response was not valid JSON"}, nil
	}
	return verdict, nil
}

func openAICaption(ctx context.Context, cfg config.ModelsConfig, model, prompt, mimeType string, data []byte) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey), option.WithHTTPClient(observability.NewHTTPClient(nil))}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := sdk.NewClient(opts...)
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(model),
		Messages: []sdk.ChatCompletionMessageParamUnion{
			{
				OfUser: &sdk.ChatCompletionUserMessageParam{
					Content: sdk.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []sdk.ChatCompletionContentPartUnionParam{
							{OfText: &sdk.ChatCompletionContentPartTextParam{Text: prompt}},
							{OfImageURL: &sdk.ChatCompletionContentPartImageParam{ImageURL: sdk.ChatCompletionContentPartImageImageURLParam{URL: dataURL}}},
						},
					},
				},
			},
		},
	}
	comp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llmclient: %w: openai vision: %v", apperr.ErrInference, err)
	}
	if len(comp.Choices) == 0 {
		return "", fmt.Errorf("llmclient: %w: openai vision: no choices returned", apperr.ErrInference)
	}
	return comp.Choices[0].Message.Content, nil
}

func geminiCaption(ctx context.Context, cfg config.ModelsConfig, model, prompt, mimeType string, data []byte) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GoogleAPIKey, HTTPClient: observability.NewHTTPClient(nil)})
	if err != nil {
		return "", fmt.Errorf("llmclient: %w: init gemini client: %v", apperr.ErrInference, err)
	}
	content := genai.NewContentFromParts([]*genai.Part{
		{Text: prompt},
		{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}},
	}, genai.RoleUser)
	resp, err := client.Models.GenerateContent(ctx, model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("llmclient: %w: gemini vision: %v", apperr.ErrInference, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llmclient: %w: gemini vision: empty response", apperr.ErrInference)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("llmclient: %w: gemini vision: empty text", apperr.ErrInference)
	}
	return sb.String(), nil
}
