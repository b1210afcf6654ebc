// Package matching resolves fuzzy plan-head / work-name identifiers against
// stored rows through an ordered cascade of strategies.
package matching

import (
	"strings"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/identity"
)

// Query is a pair of raw identifiers to resolve. Either may be empty.
type Query struct {
	Planhead string
	Workname string
}

// Empty reports whether neither identifier survives normalization, so a
// punctuation-only value such as "---" counts as absent.
func (q Query) Empty() bool {
	return identity.NormalizePlanhead(q.Planhead) == "" && identity.NormalizeWorkname(q.Workname) == ""
}

// Key holds the normalized forms of a Query or candidate.
type Key struct {
	RawPlanhead string
	Planhead    string
	Workname    string
	PlanheadKey string
}

// NewKey normalizes raw identifiers.
func NewKey(planhead, workname string) Key {
	return Key{
		RawPlanhead: planhead,
		Planhead:    identity.NormalizePlanhead(planhead),
		Workname:    identity.NormalizeWorkname(workname),
		PlanheadKey: identity.ExtractPlanheadKey(planhead),
	}
}

// Strategy is one tier of the cascade. Applies gates the tier on the query;
// Match tests a single candidate.
type Strategy struct {
	Name    constants.MatchStrategy
	Applies func(q Key) bool
	Match   func(q, c Key) bool
}

// Cascade is the tier order used for both flow headers and approval records.
var Cascade = []Strategy{
	{
		Name:    constants.StrategyExactBoth,
		Applies: func(q Key) bool { return q.Planhead != "" && q.Workname != "" },
		Match: func(q, c Key) bool {
			return c.Planhead == q.Planhead && c.Workname == q.Workname
		},
	},
	{
		Name:    constants.StrategyExactPlanhead,
		Applies: func(q Key) bool { return q.Planhead != "" },
		Match:   func(q, c Key) bool { return c.Planhead == q.Planhead },
	},
	{
		Name:    constants.StrategyExactWorkhead,
		Applies: func(q Key) bool { return q.Workname != "" },
		Match:   func(q, c Key) bool { return c.Workname == q.Workname },
	},
	{
		Name:    constants.StrategyPartialPlanhead,
		Applies: func(q Key) bool { return q.Planhead != "" },
		Match: func(q, c Key) bool {
			// Unlike a plain substring test, an empty candidate never matches.
			if c.Planhead == "" {
				return false
			}
			return strings.Contains(c.Planhead, q.Planhead) || strings.Contains(q.Planhead, c.Planhead)
		},
	},
	{
		Name:    constants.StrategyPlanheadKey,
		Applies: func(q Key) bool { return q.PlanheadKey != "" },
		Match: func(q, c Key) bool {
			return strings.Contains(strings.ToUpper(c.RawPlanhead), q.PlanheadKey)
		},
	},
}

// Select runs strategies in order over candidates (already sorted by
// preference, most recent first) and returns the index of the first candidate
// accepted by the first tier that accepts any, plus that tier's name.
// It returns -1 when nothing matches.
func Select[T any](strategies []Strategy, q Query, candidates []T, identify func(T) Query) (int, constants.MatchStrategy) {
	if len(candidates) == 0 {
		return -1, ""
	}
	qk := NewKey(q.Planhead, q.Workname)

	keys := make([]Key, len(candidates))
	for i, c := range candidates {
		id := identify(c)
		keys[i] = NewKey(id.Planhead, id.Workname)
	}

	for _, s := range strategies {
		if !s.Applies(qk) {
			continue
		}
		for i := range keys {
			if s.Match(qk, keys[i]) {
				return i, s.Name
			}
		}
	}
	return -1, ""
}
