package llm

// BuildFlowJSONSchema returns the JSON Schema for FlowExtraction as a generic map.
// It is sent to the model as a structured output constraint and used locally to validate.
// Every field is a string; missing values are sanitized to "" before validation.
func BuildFlowJSONSchema() map[string]any {
	str := map[string]any{"type": "string"}

	entry := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"designation": str,
			"date":        str,
			"time":        str,
		},
		"required":             []string{"designation", "date", "time"},
		"additionalProperties": false,
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"plan_head":        str,
			"work_name":        str,
			"gm_approval_date": str,
			"right_side_flow": map[string]any{
				"type":  "array",
				"items": entry,
			},
		},
		"required":             []string{"plan_head", "work_name", "right_side_flow"},
		"additionalProperties": false,
	}
}
