package ports

import (
	"context"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// TransitionPayload carries the role- and edge-specific inputs of a
// transition request. Unused fields are ignored by edges that do not
// require them.
type TransitionPayload struct {
	BrandName      string
	Reason         string
	ReviewerID     string // optional: overrides the first-available policy
	CertificateRef string
}

// ApplyTransitionInput is the full contract of the transition engine.
type ApplyTransitionInput struct {
	JobID   string
	Actor   Actor
	Target  domain.JobStatus
	Payload TransitionPayload
}

// TransitionResult reports the job after a successful apply. NoOp is true
// when the job already carried the target status; no history entry was
// appended in that case.
type TransitionResult struct {
	Job  *domain.Job
	NoOp bool
}

// TransitionService validates and applies role-gated status changes.
type TransitionService interface {
	Apply(ctx context.Context, in ApplyTransitionInput) (*TransitionResult, error)
}
