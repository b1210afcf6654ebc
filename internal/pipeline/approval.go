package pipeline

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/llm"
)

var (
	// "Headquarters Office\nJaipur\nDate-30.10.2025"
	reHQHeaderDate = regexp.MustCompile(`(?i)headquarters\s*office[\s\S]{0,120}?date\s*[-:]\s*([0-3]?\d[/.\-][01]?\d[/.\-]\d{2,4})`)
	reDateLine     = regexp.MustCompile(`(?i)\bdate\s*[-:]\s*([0-3]?\d[/.\-][01]?\d[/.\-]\d{2,4})\b`)
)

// HeaderApprovalDate finds the letter date printed under the office header,
// falling back to the first "Date - DD/MM/YYYY" line. Returns "" when neither is present.
func HeaderApprovalDate(rawText string) string {
	if strings.TrimSpace(rawText) == "" {
		return ""
	}
	if m := reHQHeaderDate.FindStringSubmatch(rawText); m != nil {
		return m[1]
	}
	if m := reDateLine.FindStringSubmatch(rawText); m != nil {
		return m[1]
	}
	return ""
}

// ApprovalEntry returns the first flow entry whose designation mentions GM.
func ApprovalEntry(flow []llm.FlowEntry) (llm.FlowEntry, bool) {
	for _, e := range flow {
		if strings.Contains(strings.ToLower(e.Designation), constants.ApprovalMarker) {
			return e, true
		}
	}
	return llm.FlowEntry{}, false
}

// ResolveApprovalDateTime picks the raw approval date and time: the GM entry
// first, then the extracted gm_approval_date, then the letter header.
func ResolveApprovalDateTime(x llm.FlowExtraction, rawText string) (date, clock string) {
	entry, _ := ApprovalEntry(x.RightSideFlow)
	clock = strings.TrimSpace(entry.Time)
	for _, candidate := range []string{entry.Date, x.GMApprovalDate} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c, clock
		}
	}
	return HeaderApprovalDate(rawText), clock
}
