package app

import (
	"context"
	"encoding/json"
	"fmt"
)

// Gateway abstracts a generative model backend. Implementations must not
// retry: transient failures surface as ErrTransport-wrapped errors and
// the caller decides what to do.
type Gateway interface {
	// GenerateSimple returns the complete text for a prompt, with
	// attachments delivered to the backend where it supports them.
	GenerateSimple(ctx context.Context, prompt string, atts []Attachment) (string, error)

	// GenerateJSON asks the backend for a response constrained to the
	// given schema and returns the raw JSON bytes.
	GenerateJSON(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error)

	// GenerateStream streams a response, invoking onChunk with the
	// cumulative text after every delta, and returns the final text.
	// Chunks arrive in order; a stream that errors mid-way returns the
	// error with whatever text had accumulated.
	GenerateStream(ctx context.Context, prompt string, atts []Attachment, onChunk func(total string)) (string, error)
}

// Schema is a backend-neutral subset of JSON Schema, translated by each
// gateway into its native representation.
type Schema struct {
	Type        string
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	Minimum     *float64
	Maximum     *float64
}

func floatPtr(v float64) *float64 { return &v }

// GenerateValidated runs a structured call, decodes it into T and applies
// the validator. Decode or validation failures come back wrapped in
// ErrBadResponse.
func GenerateValidated[T any](ctx context.Context, g Gateway, prompt string, schema *Schema, validate func(T) error) (T, error) {
	var out T
	raw, err := g.GenerateJSON(ctx, prompt, schema)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if validate != nil {
		if err := validate(out); err != nil {
			return out, fmt.Errorf("%w: %v", ErrBadResponse, err)
		}
	}
	return out, nil
}
