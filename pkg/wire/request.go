package wire

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Fixed model parameters sent with every chat request. The backend forwards
// them verbatim to Bedrock, so the kwarg names follow the Titan text API.
const (
	DefaultModelID     = "amazon.titan-text-express-v1"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1024
	DefaultTimeoutMs   = 15000
	DefaultStyle       = "concise"
)

// ModelKwargs are the generation parameters passed through to the model.
type ModelKwargs struct {
	Temperature     float64 `json:"temperature"`
	MaxTokenCount   int     `json:"maxTokenCount"`
	TimeoutInMillis int     `json:"timeoutInMillis"`
}

// ChatRequest is the outbound frame for one user prompt.
type ChatRequest struct {
	SessionID      string      `json:"session_id"`
	Prompt         string      `json:"prompt"`
	BedrockModelID string      `json:"bedrock_model_id"`
	ModelKwargs    ModelKwargs `json:"model_kwargs"`
	ResponseStyle  string      `json:"response_style"`
}

// NewChatRequest composes a prompt with the fixed model parameters. An empty
// modelID falls back to DefaultModelID.
func NewChatRequest(sessionID, prompt, modelID string) ChatRequest {
	if modelID == "" {
		modelID = DefaultModelID
	}
	return ChatRequest{
		SessionID:      sessionID,
		Prompt:         prompt,
		BedrockModelID: modelID,
		ModelKwargs: ModelKwargs{
			Temperature:     DefaultTemperature,
			MaxTokenCount:   DefaultMaxTokens,
			TimeoutInMillis: DefaultTimeoutMs,
		},
		ResponseStyle: DefaultStyle,
	}
}

// Encode serializes the request to its wire form.
func (r ChatRequest) Encode() ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "encode chat request")
	}
	return b, nil
}
