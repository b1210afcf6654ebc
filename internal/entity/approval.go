package entity

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRecord is an independently ingested GM approval. It is not linked to a
// FlowHeader; the association is recomputed on every delay query.
type ApprovalRecord struct {
	ID           uuid.UUID `json:"uuid"`
	Planhead     *string   `json:"planhead"`
	Workname     *string   `json:"workname"`
	ApprovalDate *string   `json:"approvalDate"` // YYYY-MM-DD
	ApprovalTime *string   `json:"approvalTime"` // HH:MM:SS
	RawText      *string   `json:"rawText,omitempty"`
	SourceObject *string   `json:"sourceObject,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a *ApprovalRecord) PlanheadString() string     { return deref(a.Planhead) }
func (a *ApprovalRecord) WorknameString() string     { return deref(a.Workname) }
func (a *ApprovalRecord) ApprovalDateString() string { return deref(a.ApprovalDate) }
func (a *ApprovalRecord) ApprovalTimeString() string { return deref(a.ApprovalTime) }
