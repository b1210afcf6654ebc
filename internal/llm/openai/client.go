package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vetting-tracker/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format"`
	Messages       []chatMessage  `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract implements llm.StructuredExtractor using text-only chat/completions.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (llm.FlowExtraction, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"kind", req.Kind,
		"text_len", len(req.Text),
		"has_prompt", strings.TrimSpace(req.Prompt) != "",
	)

	schema := llm.BuildFlowJSONSchema()
	body := chatRequest{
		Model:          c.cfg.Model,
		Temperature:    c.cfg.Temperature,
		ResponseFormat: map[string]any{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.BuildPrompt(req)},
			{Role: "system", Content: "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	var cc chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&cc).
		Post("/chat/completions")
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FlowExtraction{}, nil, fmt.Errorf("openai http error: %w", err)
	}
	if resp.IsError() {
		c.log.Error("llm.extract.http_status",
			"req_id", rid, "status", resp.StatusCode(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FlowExtraction{}, resp.Body(), fmt.Errorf("openai status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw_bytes", len(resp.Body()),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FlowExtraction{}, resp.Body(), fmt.Errorf("no choices in openai response")
	}

	content := []byte(stripCodeFence(cc.Choices[0].Message.Content))
	cleaned, _, err := llm.NormalizeAndSanitizeJSON(content, c.log)
	if err != nil {
		c.log.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FlowExtraction{}, content, fmt.Errorf("sanitize failed: %w", err)
	}
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FlowExtraction{}, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}

	var out llm.FlowExtraction
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.FlowExtraction{}, cleaned, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"plan_head", out.PlanHead,
		"work_name", out.WorkName,
		"flow_rows", len(out.RightSideFlow),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite json mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
