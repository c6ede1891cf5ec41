package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You score the market sentiment of Indian listed-company announcements. " +
	"Respond ONLY with compact JSON {\"score\": number} where score is in [-1, 1]: " +
	"-1 very negative for the share price, 0 neutral, 1 very positive."

// Options configure the chat completion used for scoring.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
	BaseURL     string // empty uses the OpenAI default
}

// Scorer asks a chat model for a sentiment score.
type Scorer struct {
	client *goopenai.Client
	opts   Options
}

func NewScorer(apiKey string, opts Options) (*Scorer, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Model == "" {
		opts.Model = goopenai.GPT4oMini
	}
	return &Scorer{client: goopenai.NewClientWithConfig(cfg), opts: opts}, nil
}

// Score returns the model's score clamped to [-1, 1].
func (s *Scorer) Score(ctx context.Context, text string) (float64, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: s.opts.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:      s.opts.MaxTokens,
		Temperature:    s.opts.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Choices) == 0 {
		return 0, errors.New("no choices")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	var r struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(out), &r); err != nil || r.Score == nil {
		return 0, fmt.Errorf("invalid model output %q", out)
	}
	return min(max(*r.Score, -1), 1), nil
}
