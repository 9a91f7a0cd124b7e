package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalGatewayStreamsNDJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, chunk := range []generateResponse{
			{Response: "Hello"},
			{Response: ", world"},
			{Done: true},
		} {
			require.NoError(t, json.NewEncoder(w).Encode(chunk))
		}
	}))
	defer srv.Close()

	g := NewLocalGateway(srv.URL, "test-model", nil)
	var totals []string
	final, err := g.GenerateStream(context.Background(), "hi", nil, func(total string) {
		totals = append(totals, total)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", final)
	assert.Equal(t, []string{"Hello", "Hello, world"}, totals)
}

func TestLocalGatewayGenerateSimple(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "answer", Done: true})
	}))
	defer srv.Close()

	g := NewLocalGateway(srv.URL, "test-model", nil)
	out, err := g.GenerateSimple(context.Background(), "question", nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
}

func TestLocalGatewayJSONModeAndSchemaHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req.Format)
		assert.Contains(t, req.Prompt, "clarity")
		_ = json.NewEncoder(w).Encode(generateResponse{
			Response: `{"clarity":7,"efficiency":6,"robustness":8,"summary":"solid"}`,
			Done:     true,
		})
	}))
	defer srv.Close()

	g := NewLocalGateway(srv.URL, "m", nil)
	eval, err := GenerateValidated[Evaluation](context.Background(), g,
		BuildEvaluationPrompt("p"), EvaluationSchema(), ValidateEvaluation)
	require.NoError(t, err)
	assert.Equal(t, 7, eval.Clarity)
	assert.Equal(t, "solid", eval.Summary)
}

func TestLocalGatewayListModelsAndHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2"},{"name":"mistral"}]}`))
	}))
	defer srv.Close()

	g := NewLocalGateway(srv.URL, "", nil)
	names, err := g.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2", "mistral"}, names)
	assert.True(t, g.Healthy(context.Background()))

	srv.Close()
	assert.False(t, g.Healthy(context.Background()))
}

func TestLocalGatewayTransportErrors(t *testing.T) {
	g := NewLocalGateway("http://127.0.0.1:1", "m", nil)
	_, err := g.GenerateSimple(context.Background(), "q", nil)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestGenerateValidatedRejectsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{
			Response: `{"clarity":99,"efficiency":6,"robustness":8,"summary":"x"}`,
			Done:     true,
		})
	}))
	defer srv.Close()

	g := NewLocalGateway(srv.URL, "m", nil)
	_, err := GenerateValidated[Evaluation](context.Background(), g,
		"p", EvaluationSchema(), ValidateEvaluation)
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestLocalPromptMentionsNonImageAttachments(t *testing.T) {
	atts := []Attachment{
		{Name: "pic.png", MIMEType: "image/png", Payload: "aaa"},
		{Name: "doc.pdf", MIMEType: "application/pdf", Payload: "bbb"},
	}
	p := localPrompt("goal", atts)
	assert.Contains(t, p, "doc.pdf")
	assert.NotContains(t, p, "pic.png")
	assert.Equal(t, []string{"aaa"}, localImages(atts))
}
