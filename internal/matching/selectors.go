package matching

import (
	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/entity"
)

func headerIdentity(h *entity.FlowHeader) Query {
	return Query{Planhead: h.PlanheadString(), Workname: h.WorknameString()}
}

func approvalIdentity(a *entity.ApprovalRecord) Query {
	return Query{Planhead: a.PlanheadString(), Workname: a.WorknameString()}
}

// SelectFlow picks a flow header for the request. Headers must be ordered
// most recent first. With no identifiers the newest header wins.
func SelectFlow(req Query, headers []*entity.FlowHeader) (*entity.FlowHeader, constants.MatchStrategy) {
	if len(headers) == 0 {
		return nil, ""
	}
	if req.Empty() {
		return headers[0], constants.StrategyLatest
	}
	i, name := Select(Cascade, req, headers, headerIdentity)
	if i < 0 {
		return nil, ""
	}
	return headers[i], name
}

// SelectApproval picks the approval record belonging to a selected flow
// header, using the header's own identifiers rather than the caller's.
// Records must be ordered most recent first and carry an approval date.
func SelectApproval(header *entity.FlowHeader, records []*entity.ApprovalRecord) (*entity.ApprovalRecord, constants.MatchStrategy) {
	if header == nil || len(records) == 0 {
		return nil, ""
	}
	q := headerIdentity(header)
	if q.Empty() {
		return nil, ""
	}
	i, name := Select(Cascade, q, records, approvalIdentity)
	if i < 0 {
		return nil, ""
	}
	return records[i], name
}
