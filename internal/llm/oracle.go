package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"go-onboard/internal/config"
)

// Oracle is the production Completer: an OpenAI-compatible chat completions
// endpoint reached through the request queue.
type Oracle struct {
	client *Client
	url    string
	model  string
}

// NewOracle creates a queue-backed completer for the configured endpoint
func NewOracle(client *Client, oc config.OracleConfig) *Oracle {
	return &Oracle{
		client: client,
		url:    oc.URL,
		model:  oc.Model,
	}
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-message chat completion and returns the assistant text.
// Temperature and token cap match the onboarding prompts' expectations: short,
// mildly creative conversational output.
func (o *Oracle) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  1000,
	}

	body, err := o.client.Call(ctx, o.url, payload)
	if err != nil {
		return "", err
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
