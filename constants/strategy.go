package constants

// MatchStrategy names the cascade tier that selected a flow header or approval record.
type MatchStrategy string

const (
	StrategyExactBoth       MatchStrategy = "exact_both"
	StrategyExactPlanhead   MatchStrategy = "exact_planhead"
	StrategyExactWorkhead   MatchStrategy = "exact_workhead"
	StrategyPartialPlanhead MatchStrategy = "partial_planhead"
	StrategyPlanheadKey     MatchStrategy = "planhead_key"
	StrategyLatest          MatchStrategy = "latest"
	StrategyLatestDated     MatchStrategy = "latest_dated"
	StrategyStrictNoMatch   MatchStrategy = "strict_no_flow_match"
)

// Default scan windows for the matching cascade.
const (
	DefaultFlowScanWindow     = 1000
	DefaultApprovalScanWindow = 500
)
