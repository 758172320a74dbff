package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time check.
var _ Client = (*OpenAIClient)(nil)

// OpenAIClient implements Client on the official openai-go SDK
// (chat completions).
type OpenAIClient struct {
	model       string
	temperature float64
	opts        []option.RequestOption
}

// NewOpenAIClient builds a client from settings. The API key and model are
// required; BaseURL is optional for OpenAI-compatible endpoints.
func NewOpenAIClient(cfg Settings) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		opts:        opts,
	}, nil
}

// Generate sends one chat completion request and returns the raw text of the
// first choice.
func (c *OpenAIClient) Generate(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(c.opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	temp := c.temperature
	if prompt.Temperature != 0 {
		temp = prompt.Temperature
	}
	if temp != 0 {
		params.Temperature = openai.Float(temp)
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
