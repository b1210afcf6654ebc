package entity

import (
	"time"

	"github.com/google/uuid"
)

// FlowHeader is one processed finance-flow document (a vetting case).
type FlowHeader struct {
	ID           uuid.UUID `json:"uuid"`
	Planhead     *string   `json:"planhead"`
	Workname     *string   `json:"workname"`
	SourceObject *string   `json:"sourceObject,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *FlowHeader) PlanheadString() string { return deref(h.Planhead) }
func (h *FlowHeader) WorknameString() string { return deref(h.Workname) }

// FlowItem is a single approval-chain action inside a FlowHeader.
// (FlowID, SequenceNo) is unique.
type FlowItem struct {
	ID               uuid.UUID `json:"uuid"`
	FlowID           uuid.UUID `json:"flowUuid"`
	SequenceNo       int       `json:"sequenceNo"`
	Designation      *string   `json:"designation"`
	Department       *string   `json:"department"`
	ActionDate       *string   `json:"actionDate"` // YYYY-MM-DD
	ActionTime       *string   `json:"actionTime"`
	IsCurrentPending bool      `json:"isCurrentPending"`
	CreatedAt        time.Time `json:"createdAt"`
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
