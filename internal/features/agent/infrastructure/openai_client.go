package infrastructure

import (
	"context"
	"encoding/base64"
	"os"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
)

// openAIClient is the chat completions implementation of AIClient.
type openAIClient struct {
	client       *openai.Client
	defaultModel string
}

// NewOpenAIClient creates a new OpenAI client, requires OPENAI_API_KEY env var.
// OPENAI_BASE_URL points it at any OpenAI-compatible endpoint.
func NewOpenAIClient(defaultModel string) (AIClient, error) {
	apiKey := strings.TrimSpace(os.Getenv(EnvOpenAIKey))
	if apiKey == "" {
		return nil, errors.New(EnvOpenAIKey + " environment variable not set")
	}
	return NewOpenAIClientWithBaseURL(apiKey, os.Getenv(EnvOpenAIBaseURL), defaultModel), nil
}

// NewOpenAIClientWithBaseURL creates a client for an explicit endpoint. An
// empty baseURL uses the public OpenAI API.
func NewOpenAIClientWithBaseURL(apiKey, baseURL, defaultModel string) AIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &openAIClient{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}
}

func (c *openAIClient) Model() string {
	return c.defaultModel
}

// Generate sends the prompt, notes and images as a single user message.
func (c *openAIClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	model := req.Params.Model
	if model == "" {
		model = c.defaultModel
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 && len(req.Notes) == 0 {
		msg.Content = req.Prompt
	} else {
		msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		})
		for _, note := range req.Notes {
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: note,
			})
		}
		for _, img := range req.Images {
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL(img.ContentType, img.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}

	log.WithFields(log.Fields{
		"model":  model,
		"images": len(req.Images),
	}).Debug("creating chat completion")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: float32(req.Params.Temperature),
		MaxTokens:   req.Params.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model didn't return any content choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
