package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the cloud model used unless overridden.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGateway talks to the Gemini API through the official Go SDK.
type GeminiGateway struct {
	client *genai.Client
	model  string
	log    *Logger
}

// NewGeminiGateway builds a gateway against the Gemini API. The key
// comes from configuration; an empty model falls back to the default.
func NewGeminiGateway(ctx context.Context, apiKey, model string, log *Logger) (*GeminiGateway, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGateway{client: client, model: model, log: log}, nil
}

func (g *GeminiGateway) GenerateSimple(ctx context.Context, prompt string, atts []Attachment) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(prompt, atts), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate", ErrBadResponse)
	}
	return text, nil
}

func (g *GeminiGateway) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(schema),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, geminiContents(prompt, nil), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty candidate", ErrBadResponse)
	}
	return json.RawMessage(text), nil
}

func (g *GeminiGateway) GenerateStream(ctx context.Context, prompt string, atts []Attachment, onChunk func(total string)) (string, error) {
	var total strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, geminiContents(prompt, atts), nil) {
		if err != nil {
			return total.String(), fmt.Errorf("%w: %v", ErrTransport, err)
		}
		delta := resp.Text()
		if delta == "" {
			continue
		}
		total.WriteString(delta)
		if onChunk != nil {
			onChunk(total.String())
		}
	}
	if total.Len() == 0 {
		return "", fmt.Errorf("%w: empty stream", ErrBadResponse)
	}
	return total.String(), nil
}

// geminiContents assembles a single user turn of text plus inline blobs.
// Attachments whose payload fails to decode are skipped; the model still
// sees the text.
func geminiContents(prompt string, atts []Attachment) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, a := range atts {
		data, err := base64.StdEncoding.DecodeString(a.Payload)
		if err != nil {
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, a.MIMEType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func geminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		Items:       geminiSchema(s.Items),
	}
	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = geminiSchema(v)
		}
	}
	return out
}
