package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured JSON document per call.
type Provider interface {
	// Generate sends the request and returns the model output. When
	// req.Schema is set the returned Content has already been validated
	// against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System   string
	Messages []Message
	// Schema, when set, switches the provider to JSON output and is
	// used to validate the result.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt is shorthand for a single-turn request.
func UserPrompt(system, prompt string, schema *Schema, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Schema:      schema,
		Temperature: temperature,
	}
}
