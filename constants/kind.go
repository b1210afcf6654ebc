package constants

import (
	"strings"
)

// DocumentKind identifies which ingestion flow a scanned document belongs to.
type DocumentKind string

const (
	FinanceFlow DocumentKind = "finance"
	Approval    DocumentKind = "approval"
)

var allKinds = []DocumentKind{
	FinanceFlow,
	Approval,
}

func KindsAsStringSlice() []string {
	result := make([]string, len(allKinds))
	for i, k := range allKinds {
		result[i] = string(k)
	}
	return result
}

// CanonicalizeKind maps user input (CLI flags, folder names) onto a DocumentKind.
func CanonicalizeKind(input string) (DocumentKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]DocumentKind{
		"fin":           FinanceFlow,
		"finance-flow":  FinanceFlow,
		"vetting":       FinanceFlow,
		"gm":            Approval,
		"gm-approval":   Approval,
		"gm_approval":   Approval,
		"approvals":     Approval,
		"gm-data":       Approval,
		"finance-data":  FinanceFlow,
		"finance_data":  FinanceFlow,
		"finance_flows": FinanceFlow,
	}
	if k, ok := synonyms[normalized]; ok {
		return k, true
	}

	for _, k := range allKinds {
		if normalized == string(k) {
			return k, true
		}
	}
	return "", false
}
