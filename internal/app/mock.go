package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
)

// MockGateway simulates a model backend for testing and for running the
// app offline with --mock. Behavior is overridable per call through the
// function fields; the defaults produce a deterministic but plausible
// pipeline run.
type MockGateway struct {
	SimpleFn func(ctx context.Context, prompt string, atts []Attachment) (string, error)
	JSONFn   func(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error)
	StreamFn func(ctx context.Context, prompt string, atts []Attachment, onChunk func(string)) (string, error)

	calls atomic.Int64
}

func NewMockGateway() *MockGateway { return &MockGateway{} }

// Calls reports how many gateway methods have been invoked.
func (m *MockGateway) Calls() int64 { return m.calls.Load() }

func (m *MockGateway) GenerateSimple(ctx context.Context, prompt string, atts []Attachment) (string, error) {
	m.calls.Add(1)
	if m.SimpleFn != nil {
		return m.SimpleFn(ctx, prompt, atts)
	}
	return "Act as a senior domain specialist. Produce a precise, structured answer for the stated goal.", nil
}

func (m *MockGateway) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (json.RawMessage, error) {
	m.calls.Add(1)
	if m.JSONFn != nil {
		return m.JSONFn(ctx, prompt, schema)
	}
	if strings.Contains(prompt, "clarity") || schemaHasKey(schema, "clarity") {
		return json.RawMessage(`{"clarity":8,"efficiency":7,"robustness":9,"summary":"Clear scope, strong constraints, minor redundancy."}`), nil
	}
	// Tailored architecture descriptions keyed by catalog key.
	desc := make(map[string]string, len(Architectures))
	for key := range Architectures {
		desc[key] = "Tailored for your goal: " + key
	}
	return json.Marshal(desc)
}

func (m *MockGateway) GenerateStream(ctx context.Context, prompt string, atts []Attachment, onChunk func(string)) (string, error) {
	m.calls.Add(1)
	if m.StreamFn != nil {
		return m.StreamFn(ctx, prompt, atts, onChunk)
	}
	// The dossier prompt also embeds the champion marker, so refinement
	// requests are recognized by their instruction text instead.
	text := mockDossier
	if strings.Contains(prompt, "nine refinement steps") {
		text = mockRefinement
	}
	var total strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		total.WriteString(line)
		if onChunk != nil {
			onChunk(total.String())
		}
	}
	return total.String(), nil
}

func schemaHasKey(s *Schema, key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Properties[key]
	return ok
}

var mockDossier = fmt.Sprintf(`# Prompt Engineering Dossier

## Phase 1: Distilled Base Prompt

A focused restatement of the goal.

## Phase 3: Evolved Candidates

Candidate A and candidate B, compared.

%s

`+"```"+`
You are a senior specialist. Given the goal below, respond with a
numbered plan followed by the final deliverable.
`+"```"+`
`, championMarker)

var mockRefinement = fmt.Sprintf(`## Refinement Report

Nine refinement steps were applied.

%s

`+"```"+`
You are a senior specialist. Restate the goal, list assumptions,
then deliver the answer in the requested format. Refuse out-of-scope
requests.
`+"```"+`
`, championMarker)
