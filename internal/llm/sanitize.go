package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

var (
	topLevelKeys = []string{"plan_head", "work_name", "gm_approval_date"}
	entryKeys    = []string{"designation", "date", "time"}
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (planhead -> plan_head, approval_flow -> right_side_flow)
// - Coerces every scalar field to a trimmed string; null and missing become ""
// - Drops flow entries that are not objects
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to the schema
	renamed("planhead", "plan_head")
	renamed("planHead", "plan_head")
	renamed("workname", "work_name")
	renamed("workName", "work_name")
	renamed("work_head", "work_name")
	renamed("approval_date", "gm_approval_date")
	renamed("approval_flow", "right_side_flow")
	renamed("flow", "right_side_flow")

	// 2) scalars -> strings
	for _, k := range topLevelKeys {
		s, note := coerceString(m[k])
		if note != "" {
			dropped = append(dropped, k+note)
		}
		m[k] = s
	}

	// 3) flow entries
	var entries []any
	switch t := m["right_side_flow"].(type) {
	case []any:
		entries = t
	case nil:
	default:
		dropped = append(dropped, "right_side_flow(type)")
	}
	flow := make([]any, 0, len(entries))
	for i, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("right_side_flow[%d](type)", i))
			continue
		}
		clean := make(map[string]any, len(entryKeys))
		for _, k := range entryKeys {
			s, note := coerceString(obj[k])
			if note != "" {
				dropped = append(dropped, fmt.Sprintf("right_side_flow[%d].%s%s", i, k, note))
			}
			clean[k] = s
		}
		flow = append(flow, clean)
	}
	m["right_side_flow"] = flow

	// 4) remove unknown keys
	allowed := map[string]struct{}{
		"plan_head": {}, "work_name": {}, "gm_approval_date": {}, "right_side_flow": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// coerceString returns the trimmed string form of v and a note when v was
// not already a string.
func coerceString(v any) (string, string) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), ""
	case nil:
		return "", ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), "(number)"
	case bool:
		return strconv.FormatBool(t), "(bool)"
	default:
		return "", "(type)"
	}
}
