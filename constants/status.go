package constants

// IngestOutcome is the label recorded for a processed document.
type IngestOutcome string

const (
	IngestSaved      IngestOutcome = "saved"       // rows committed
	IngestSaveFailed IngestOutcome = "save_failed" // extraction ok, write rolled back
	IngestOCRFailed  IngestOutcome = "ocr_failed"
	IngestLLMFailed  IngestOutcome = "llm_failed"
)
