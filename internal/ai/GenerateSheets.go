package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sheet_ai_server/internal/ai/prompts"
	"sheet_ai_server/internal/types"
	"sheet_ai_server/internal/utils"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GenerateSheets asks the model for a structured spreadsheet description of prompt and decodes it.
// Any failure (transport, empty answer, undecodable JSON) is retried once after a fixed delay;
// the error of the final attempt is returned.
func (g *Generator) GenerateSheets(ctx context.Context, prompt string) (*types.GenerationPayload, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.GetSheetGenerationPrompt(g.language)},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	var payload *types.GenerationPayload
	err := utils.Retry(ctx, g.attempts, g.retryDelay, func(attempt int) error {
		start := time.Now()
		p, err := g.generateOnce(ctx, req)
		if err != nil {
			g.logger.Warn("Sheet generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.attempts),
				zap.String("kind", string(types.KindOf(err))),
				zap.Int("upstream_status", utils.UpstreamStatus(err)),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return err
		}
		g.logger.Info("Sheet generation succeeded",
			zap.Int("attempt", attempt),
			zap.Int("sheets", len(p.Sheets)),
			zap.Duration("elapsed", time.Since(start)),
		)
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (g *Generator) generateOnce(ctx context.Context, req openai.ChatCompletionRequest) (*types.GenerationPayload, error) {
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, types.NewGenerationError(types.KindUpstream, fmt.Errorf("openai chat completion failed: %w", err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		g.logger.Debug("OpenAI usage for empty response", zap.Any("usage", resp.Usage))
		return nil, types.NewGenerationError(types.KindUpstream, errors.New("no content returned from the model"))
	}

	raw := resp.Choices[0].Message.Content
	g.logger.Debug("LLM raw output", zap.String("output", raw))
	return DecodePayload(raw)
}

// DecodePayload extracts the JSON object from raw model output and decodes it into a payload.
// Malformed JSON is a parse error; well-formed JSON of the wrong shape is a payload error.
func DecodePayload(raw string) (*types.GenerationPayload, error) {
	text := ExtractJSON(raw)

	var generic any
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		return nil, &types.GenerationError{
			Kind: types.KindParse,
			Err:  fmt.Errorf("JSON parse error: %w", err),
			Raw:  raw,
		}
	}
	if _, ok := generic.(map[string]any); !ok {
		return nil, types.NewGenerationError(types.KindPayload, fmt.Errorf("model output is a JSON %T, not an object", generic))
	}

	var payload types.GenerationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, types.NewGenerationError(types.KindPayload, fmt.Errorf("model output does not match the sheet schema: %w", err))
	}
	return &payload, nil
}
