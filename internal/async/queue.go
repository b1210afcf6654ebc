package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/vetting-tracker/constants"
)

// Job is one document waiting to be ingested.
type Job struct {
	Path        string
	Kind        constants.DocumentKind
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
