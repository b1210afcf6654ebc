package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/llm"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completion(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return b
}

func TestExtract_SanitizesModelOutput(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completion("```json\n" + `{
			"planhead": " CE/123/2024 ",
			"work_name": null,
			"confidence": 0.9,
			"right_side_flow": [
				{"designation": "SR. DFM/JU", "date": "02/01/2024", "time": 1030},
				"garbage",
				{"designation": "DRM/JU", "date": "05/01/2024", "note": "x"}
			]
		}` + "\n```"))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, quietLogger())
	out, raw, err := c.Extract(context.Background(), llm.ExtractRequest{
		Kind:   constants.FinanceFlow,
		Prompt: "Read the vetting sheet.",
		Text:   "PLAN HEAD CE/123/2024",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
	require.Len(t, got.Messages, 3)
	assert.Contains(t, got.Messages[1].Content, "Read the vetting sheet.")
	assert.Contains(t, got.Messages[1].Content, "OCR TEXT:\nPLAN HEAD CE/123/2024")

	assert.Equal(t, "CE/123/2024", out.PlanHead)
	assert.Equal(t, "", out.WorkName)
	require.Len(t, out.RightSideFlow, 2)
	assert.Equal(t, llm.FlowEntry{Designation: "SR. DFM/JU", Date: "02/01/2024", Time: "1030"}, out.RightSideFlow[0])
	assert.Equal(t, llm.FlowEntry{Designation: "DRM/JU", Date: "05/01/2024"}, out.RightSideFlow[1])
}

func TestExtract_ApprovalPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completion(`{"plan_head":"P","work_name":"W","gm_approval_date":"10.01.2024","right_side_flow":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL + "/"}, quietLogger())
	out, _, err := c.Extract(context.Background(), llm.ExtractRequest{Kind: constants.Approval, Prompt: "ignored", Text: "GM approved"})
	require.NoError(t, err)
	assert.Equal(t, "10.01.2024", out.GMApprovalDate)
	assert.Empty(t, out.RightSideFlow)
	assert.NotContains(t, got.Messages[1].Content, "ignored")
	assert.Contains(t, got.Messages[1].Content, "gm_approval_date")
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   []byte
		errMsg string
	}{
		{"status", http.StatusTooManyRequests, []byte(`{"error":{"message":"rate limited"}}`), "openai status 429"},
		{"no choices", http.StatusOK, []byte(`{"choices":[]}`), "no choices"},
		{"not json", http.StatusOK, completion("I could not read the document."), "sanitize failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, quietLogger())
			_, _, err := c.Extract(context.Background(), llm.ExtractRequest{Kind: constants.FinanceFlow, Text: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}
