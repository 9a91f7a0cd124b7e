package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultLocalURL is where an Ollama-compatible server usually listens.
const DefaultLocalURL = "http://localhost:11434"

// DefaultLocalModel is used when the config does not pick one.
const DefaultLocalModel = "llama3.2"

// LocalGateway talks to an Ollama-compatible HTTP server. Structured
// output uses the server's JSON format mode; there is no schema
// enforcement beyond that, so callers validate what comes back.
type LocalGateway struct {
	baseURL string
	model   string
	client  *http.Client
	log     *Logger
}

func NewLocalGateway(baseURL, model string, log *Logger) *LocalGateway {
	if baseURL == "" {
		baseURL = DefaultLocalURL
	}
	if model == "" {
		model = DefaultLocalModel
	}
	return &LocalGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Format string   `json:"format,omitempty"`
	Images []string `json:"images,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (g *LocalGateway) GenerateSimple(ctx context.Context, prompt string, atts []Attachment) (string, error) {
	out, err := g.generate(ctx, generateRequest{
		Model:  g.model,
		Prompt: localPrompt(prompt, atts),
		Images: localImages(atts),
	})
	if err != nil {
		return "", err
	}
	if out.Response == "" {
		return "", fmt.Errorf("%w: empty response", ErrBadResponse)
	}
	return out.Response, nil
}

func (g *LocalGateway) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error) {
	// The server only knows "give me JSON"; the schema is restated in
	// the prompt so the model knows the shape.
	full := prompt + "\n\nRespond with a single JSON object of this shape:\n" + schemaHint(schema)
	out, err := g.generate(ctx, generateRequest{Model: g.model, Prompt: full, Format: "json"})
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(out.Response)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty response", ErrBadResponse)
	}
	return json.RawMessage(trimmed), nil
}

func (g *LocalGateway) GenerateStream(ctx context.Context, prompt string, atts []Attachment, onChunk func(total string)) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  g.model,
		Prompt: localPrompt(prompt, atts),
		Stream: true,
		Images: localImages(atts),
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: local backend returned %s", ErrTransport, resp.Status)
	}

	var total strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, rerr := reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var chunk generateResponse
			if err := json.Unmarshal(bytes.TrimSpace(line), &chunk); err != nil {
				return total.String(), fmt.Errorf("%w: bad stream line: %v", ErrBadResponse, err)
			}
			if chunk.Response != "" {
				total.WriteString(chunk.Response)
				if onChunk != nil {
					onChunk(total.String())
				}
			}
			if chunk.Done {
				break
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total.String(), fmt.Errorf("%w: %v", ErrTransport, rerr)
		}
	}
	if total.Len() == 0 {
		return "", fmt.Errorf("%w: empty stream", ErrBadResponse)
	}
	return total.String(), nil
}

// ListModels returns the names of the models the local server has pulled.
func (g *LocalGateway) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: local backend returned %s", ErrTransport, resp.Status)
	}
	var payload struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	names := make([]string, 0, len(payload.Models))
	for _, m := range payload.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Healthy reports whether the local server answers its tags endpoint.
func (g *LocalGateway) Healthy(ctx context.Context) bool {
	_, err := g.ListModels(ctx)
	return err == nil
}

func (g *LocalGateway) generate(ctx context.Context, reqBody generateRequest) (generateResponse, error) {
	var out generateResponse
	body, err := json.Marshal(reqBody)
	if err != nil {
		return out, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("%w: local backend returned %s", ErrTransport, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return out, nil
}

// localPrompt appends attachment names for types the local server cannot
// take as blobs, so the model at least knows what was provided.
func localPrompt(prompt string, atts []Attachment) string {
	var names []string
	for _, a := range atts {
		if !strings.HasPrefix(a.MIMEType, "image/") {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return prompt
	}
	return prompt + "\n\n[Attached files, content unavailable to this backend: " + strings.Join(names, ", ") + "]"
}

func localImages(atts []Attachment) []string {
	var images []string
	for _, a := range atts {
		if strings.HasPrefix(a.MIMEType, "image/") {
			images = append(images, a.Payload)
		}
	}
	return images
}

// schemaHint renders a compact JSON sketch of the schema for prompt
// embedding.
func schemaHint(s *Schema) string {
	if s == nil {
		return "{}"
	}
	var render func(s *Schema) any
	render = func(s *Schema) any {
		switch s.Type {
		case "object":
			obj := make(map[string]any, len(s.Properties))
			for k, v := range s.Properties {
				obj[k] = render(v)
			}
			return obj
		case "array":
			if s.Items != nil {
				return []any{render(s.Items)}
			}
			return []any{}
		default:
			if s.Description != "" {
				return fmt.Sprintf("<%s: %s>", s.Type, s.Description)
			}
			return "<" + s.Type + ">"
		}
	}
	b, err := json.MarshalIndent(render(s), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
