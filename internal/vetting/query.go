package vetting

import (
	"fmt"
	"strings"
)

var (
	planheadKeys = []string{"planhead", "planHead"}
	workheadKeys = []string{"workhead", "workHead", "workname"}
)

// QueryFromSources reads a delay query from loosely keyed inputs such as a
// query string and a JSON body. Earlier sources win; within a source the first
// non-blank alias wins. Strict defaults to true.
func QueryFromSources(sources ...map[string]any) DelayQuery {
	q := DelayQuery{Strict: true}
	q.Planhead = firstString(sources, planheadKeys)
	q.Workname = firstString(sources, workheadKeys)
	for _, src := range sources {
		if v, ok := src["strict"]; ok && v != nil {
			q.Strict = strictValue(v)
			break
		}
	}
	return q
}

// ParseStrict reads a strict flag from user input. Only "false", "0" and "no"
// turn it off.
func ParseStrict(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "false", "0", "no":
		return false
	}
	return true
}

func firstString(sources []map[string]any, keys []string) string {
	for _, src := range sources {
		for _, k := range keys {
			if s, ok := src[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func strictValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return ParseStrict(t)
	default:
		return ParseStrict(fmt.Sprint(t))
	}
}
