package llm

import (
	"context"

	"github.com/joseph-ayodele/vetting-tracker/constants"
)

// FlowEntry is one row of the approval chain as read off the document.
// Values are kept exactly as the model returned them; absent values are "".
type FlowEntry struct {
	Designation string `json:"designation"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// FlowExtraction is the structured record pulled out of a finance or approval document.
type FlowExtraction struct {
	PlanHead       string      `json:"plan_head"`
	WorkName       string      `json:"work_name"`
	GMApprovalDate string      `json:"gm_approval_date,omitempty"`
	RightSideFlow  []FlowEntry `json:"right_side_flow"`
}

// ExtractRequest carries the OCR text plus the kind-specific prompt context.
type ExtractRequest struct {
	Kind constants.DocumentKind

	// Prompt is the caller-supplied lead-in used for finance documents.
	// It is ignored for approvals.
	Prompt string

	Text string
}

// StructuredExtractor turns OCR text into a FlowExtraction.
// The raw JSON the model produced (after sanitizing) is returned alongside.
type StructuredExtractor interface {
	Extract(ctx context.Context, req ExtractRequest) (FlowExtraction, []byte, error)
}
