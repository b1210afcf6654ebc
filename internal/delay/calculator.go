// Package delay computes per-stage delay metrics from the events of one
// approval flow.
package delay

import (
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/identity"
	"github.com/joseph-ayodele/vetting-tracker/internal/timeline"
)

// Item is one raw flow entry. ActionDate/ActionTime win over Date/Time when set;
// the short names are what the extractor emits, the long names what is stored.
type Item struct {
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	SequenceNo  int    `json:"sequenceNo"`
	ActionDate  string `json:"actionDate,omitempty"`
	ActionTime  string `json:"actionTime,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
}

// Metrics holds the four day counts. All values are >= 0.
type Metrics struct {
	TotalCycleDays     int `json:"totalCycleDays"`
	ExecutiveDelayDays int `json:"executiveDelayDays"`
	FinanceDelayDays   int `json:"financeDelayDays"`
	HQDelayDays        int `json:"hqDelayDays"`
}

// Markers are the ISO timestamps each metric was measured from; nil when absent.
type Markers struct {
	FirstDesignationAt *string `json:"firstDesignationAt"`
	LastDesignationAt  *string `json:"lastDesignationAt"`
	ApprovalAt         *string `json:"approvalAt"`
	FinanceStageAStart *string `json:"financeStageAStart"`
	FinanceStageBEnd   *string `json:"financeStageBEnd"`
	HQStageStart       *string `json:"hqStageStart"`
}

// Result is the outcome of Calculate.
type Result struct {
	Metrics
	Markers Markers `json:"markers"`
}

type event struct {
	sequenceNo     int
	designationRaw string
	designationKey string
	department     string
	at             time.Time
}

func (e event) external() bool {
	return e.department == constants.ExternalDepartment ||
		strings.Contains(strings.ToUpper(e.designationRaw), "/"+constants.ExternalDepartment)
}

func normalize(items []Item) []event {
	out := make([]event, 0, len(items))
	for _, it := range items {
		date, clock := it.ActionDate, it.ActionTime
		if strings.TrimSpace(date) == "" {
			date = it.Date
		}
		if strings.TrimSpace(clock) == "" {
			clock = it.Time
		}
		at, ok := timeline.ParseDateTime(date, clock)
		if !ok {
			continue
		}
		out = append(out, event{
			sequenceNo:     it.SequenceNo,
			designationRaw: strings.TrimSpace(it.Designation),
			designationKey: identity.NormalizeDesignation(it.Designation),
			department:     identity.Department(it.Department, it.Designation),
			at:             at,
		})
	}
	return out
}

// Calculate derives the delay metrics for a flow. approvalDate/approvalTime are the
// separately matched approval record's values and may be empty.
//
// Items whose date cannot be parsed are skipped. With no usable items every
// metric is zero and every marker nil.
func Calculate(items []Item, approvalDate, approvalTime string) Result {
	events := normalize(items)
	if len(events) == 0 {
		return Result{}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].sequenceNo != events[j].sequenceNo {
			return events[i].sequenceNo < events[j].sequenceNo
		}
		return events[i].at.Before(events[j].at)
	})

	// earliest actor of the first stage, latest actor of the last stage
	first := events[0].at
	last := events[len(events)-1].at
	lastSeq := events[len(events)-1].sequenceNo

	var approvalAt *time.Time
	if t, ok := timeline.ParseDateTime(approvalDate, approvalTime); ok {
		approvalAt = &t
	}

	var roleA, roleB, hqStart *time.Time
	lastDay := timeline.DateOnly(last)
	for i := range events {
		e := &events[i]
		switch e.designationKey {
		case constants.FinanceRoleA:
			roleA = &e.at
		case constants.FinanceRoleB:
			roleB = &e.at
		}
		if e.external() && e.sequenceNo < lastSeq && timeline.DateOnly(e.at).Before(lastDay) {
			hqStart = &e.at
		}
	}

	return Result{
		Metrics: Metrics{
			TotalCycleDays:     timeline.DayDiff(&first, &last),
			ExecutiveDelayDays: timeline.DayDiff(approvalAt, &first),
			FinanceDelayDays:   timeline.AbsDayDiff(roleA, roleB),
			HQDelayDays:        timeline.DayDiff(hqStart, &last),
		},
		Markers: Markers{
			FirstDesignationAt: iso(&first),
			LastDesignationAt:  iso(&last),
			ApprovalAt:         iso(approvalAt),
			FinanceStageAStart: iso(roleA),
			FinanceStageBEnd:   iso(roleB),
			HQStageStart:       iso(hqStart),
		},
	}
}

func iso(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeline.FormatISO(*t)
	return &s
}
