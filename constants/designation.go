package constants

// Designation keys are compared after identity.NormalizeDesignation.
const (
	FinanceRoleA = "DRM"
	FinanceRoleB = "SRDFM"

	// ExternalDepartment marks headquarters-side actors in a flow.
	ExternalDepartment = "NWR"

	// ApprovalMarker is looked for (case-insensitive) in approval document designations.
	ApprovalMarker = "gm"
)

// TargetDesignations are the roles whose actions are reported back to the caller
// after a finance flow is extracted.
var TargetDesignations = map[string]struct{}{
	"SRDCM":  {},
	"SDEE":   {},
	"SRDEN":  {},
	"SRDFM":  {},
	"SOFIN2": {},
	"DRM":    {},
	"CEPD":   {},
	"CCM":    {},
}

// IsTargetDesignation expects a normalized designation key.
func IsTargetDesignation(key string) bool {
	_, ok := TargetDesignations[key]
	return ok
}

const DropReasonNotTarget = "not_in_target_designation_set"
