package pipeline

import (
	"strings"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/identity"
	"github.com/joseph-ayodele/vetting-tracker/internal/llm"
	"github.com/joseph-ayodele/vetting-tracker/internal/timeline"
)

// FlowRow is one extracted flow entry annotated for storage and reporting.
type FlowRow struct {
	SequenceNo           int    `json:"sequenceNo"`
	Designation          string `json:"designation"`
	DesignationCanonical string `json:"designationCanonical"`
	Department           string `json:"department,omitempty"`
	DesignationKey       string `json:"designationKey"`
	IsMatchedTarget      bool   `json:"isMatchedTarget"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	ActionDate           string `json:"actionDate,omitempty"` // YYYY-MM-DD
	ActionTime           string `json:"actionTime,omitempty"`
	DropReason           string `json:"dropReason,omitempty"`
}

// DateTimeEntry is a target-designation action as reported back to the caller.
type DateTimeEntry struct {
	Designation string `json:"designation"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// BuildFlowMetadata annotates every entry, in document order.
func BuildFlowMetadata(entries []llm.FlowEntry) []FlowRow {
	rows := make([]FlowRow, 0, len(entries))
	for i, e := range entries {
		designation, department := identity.SplitDesignationDepartment(e.Designation)
		key := identity.NormalizeDesignation(e.Designation)
		row := FlowRow{
			SequenceNo:           i + 1,
			Designation:          strings.TrimSpace(e.Designation),
			DesignationCanonical: designation,
			Department:           department,
			DesignationKey:       key,
			IsMatchedTarget:      constants.IsTargetDesignation(key),
			Date:                 strings.TrimSpace(e.Date),
			Time:                 strings.TrimSpace(e.Time),
			ActionDate:           timeline.ToSQLDate(e.Date),
			ActionTime:           strings.TrimSpace(e.Time),
		}
		if !row.IsMatchedTarget {
			row.DropReason = constants.DropReasonNotTarget
		}
		rows = append(rows, row)
	}
	return rows
}

// FilteredDateTime keeps target rows only, dropping repeats of the same
// designation, date and time.
func FilteredDateTime(rows []FlowRow) []DateTimeEntry {
	seen := make(map[string]struct{}, len(rows))
	out := make([]DateTimeEntry, 0, len(rows))
	for _, r := range rows {
		if !r.IsMatchedTarget {
			continue
		}
		k := r.Designation + "|" + r.Date + "|" + r.Time
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, DateTimeEntry{Designation: r.Designation, Date: r.Date, Time: r.Time})
	}
	return out
}

// MatchedRows counts rows whose designation is in the target set.
func MatchedRows(rows []FlowRow) int {
	n := 0
	for _, r := range rows {
		if r.IsMatchedTarget {
			n++
		}
	}
	return n
}
