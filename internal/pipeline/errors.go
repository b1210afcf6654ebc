package pipeline

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeApprovalOCRFailed   = "GM_OCR_FAILED"
	CodeFinanceOCRFailed    = "OCR_FAILED"
	CodeLLMExtractionFailed = "LLM_EXTRACTION_FAILED"
)

const (
	msgEmptyPayload  = "Invalid or empty base64 payload"
	msgEmptyText     = "OCR service returned empty text"
	msgRejectedInput = "OCR rejected input (image too large/corrupt). Re-upload a smaller or cleaner file."
	msgOCRTransport  = "Failed to extract text from OCR service"
	msgLLMFailed     = "Failed to extract structured data from OCR text"
)

// ExtractionError is an upstream OCR or LLM failure with the HTTP status it maps to.
type ExtractionError struct {
	Code    string
	Status  int
	Message string
	Details string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// AsExtractionError unwraps err into an *ExtractionError when it is one.
func AsExtractionError(err error) (*ExtractionError, bool) {
	var xe *ExtractionError
	if errors.As(err, &xe) {
		return xe, true
	}
	return nil, false
}

func ocrError(code, message, details string, cause error) *ExtractionError {
	return &ExtractionError{
		Code:    code,
		Status:  http.StatusUnprocessableEntity,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

func llmError(cause error) *ExtractionError {
	return &ExtractionError{
		Code:    CodeLLMExtractionFailed,
		Status:  http.StatusBadGateway,
		Message: msgLLMFailed,
		Details: cause.Error(),
		Cause:   cause,
	}
}
