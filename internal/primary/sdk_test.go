package primary

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const candidateJSON = `{"domain":"electrical","diagram_type":"timing_diagram","ai_suitable":false,"confidence":0.88,"reasoning":"clock cycles"}`

var timingQuestion = diagram.Request{Question: "draw timing diagrams for 8 clock cycles"}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

// jsonServer answers every request with body and counts the calls.
func jsonServer(t *testing.T, status int, body any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func slowServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func anthropicReply(text string) map[string]any {
	return map[string]any{
		"id":          "msg_01",
		"type":        "message",
		"role":        "assistant",
		"model":       DefaultAnthropicModel,
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 10},
	}
}

func openaiReply(text string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   DefaultOpenAIModel,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": text},
		}},
	}
}

func geminiReply(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	}
}

func assertTimingCandidate(t *testing.T, c *Candidate) {
	t.Helper()
	require.NotNil(t, c)
	assert.Equal(t, "electrical", c.Domain)
	assert.Equal(t, "timing_diagram", c.DiagramType)
	require.NotNil(t, c.AISuitable)
	assert.False(t, *c.AISuitable)
	require.NotNil(t, c.Confidence)
	assert.InDelta(t, 0.88, *c.Confidence, 1e-9)
}

func TestAnthropic_Success(t *testing.T) {
	srv, calls := jsonServer(t, http.StatusOK, anthropicReply(candidateJSON))
	a := NewAnthropic(mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())

	c, err := a.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.NoError(t, err)
	assertTimingCandidate(t, c)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropic_ServerErrorIsNotRetried(t *testing.T) {
	srv, calls := jsonServer(t, http.StatusInternalServerError, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "api_error", "message": "boom"},
	})
	a := NewAnthropic(mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())

	_, err := a.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropic_Timeout(t *testing.T) {
	srv := slowServer(t)
	a := NewAnthropic(mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())

	_, err := a.Classify(context.Background(), timingQuestion, 100*time.Millisecond)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestAnthropic_MalformedText(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusOK, anthropicReply("It is a timing diagram."))
	a := NewAnthropic(mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())

	_, err := a.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestOpenAI_Success(t *testing.T) {
	srv, calls := jsonServer(t, http.StatusOK, openaiReply("```json\n"+candidateJSON+"\n```"))
	o := NewOpenAI(mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())

	c, err := o.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.NoError(t, err)
	assertTimingCandidate(t, c)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAI_NoChoices(t *testing.T) {
	reply := openaiReply("")
	reply["choices"] = []any{}
	srv, _ := jsonServer(t, http.StatusOK, reply)
	o := NewOpenAI(mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())

	_, err := o.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestOpenAI_Unauthorized(t *testing.T) {
	srv, calls := jsonServer(t, http.StatusUnauthorized, map[string]any{
		"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
	})
	o := NewOpenAI(mustCatalog(t), Settings{APIKey: "wrong", BaseURL: srv.URL}, discardLogger())

	_, err := o.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGemini_Success(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusOK, geminiReply(candidateJSON))
	g, err := NewGemini(context.Background(), mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())
	require.NoError(t, err)

	c, err := g.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.NoError(t, err)
	assertTimingCandidate(t, c)
}

func TestGemini_NoCandidates(t *testing.T) {
	srv, _ := jsonServer(t, http.StatusOK, map[string]any{"candidates": []any{}})
	g, err := NewGemini(context.Background(), mustCatalog(t), Settings{APIKey: "test", BaseURL: srv.URL}, discardLogger())
	require.NoError(t, err)

	_, err = g.Classify(context.Background(), timingQuestion, 5*time.Second)
	require.ErrorIs(t, err, ErrMalformed)
}
