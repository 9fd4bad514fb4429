package domain

import "errors"

var ErrModelNotConfigured = errors.New("model not configured")

// ModelParams defines the parameters for the AI model.
type ModelParams struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// AgentConfig is the persona agent configuration.
type AgentConfig struct {
	// PromptTemplate is a text/template rendered with a PersonaPrompt.
	PromptTemplate string      `json:"prompt_template"`
	ModelParams    ModelParams `json:"model_params"`
}

// PersonaPrompt holds the text inputs the agent responds to.
type PersonaPrompt struct {
	UserPrompt      string `json:"user_prompt" binding:"required"`
	BrandContext    string `json:"brand_context"`
	AudienceSummary string `json:"audience_summary" binding:"required"`
}

// Media is an image or video handed to the model alongside the prompt.
type Media struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ChatResponse contains the persona's reply.
type ChatResponse struct {
	AgentResponse string `json:"agent_response"`
}
