package ports

import (
	"context"
	"time"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// ListJobsFilter carries all query parameters for listing jobs.
type ListJobsFilter struct {
	Status   string // optional: filter by status
	Assignee string // optional: user id matched against any assignment field
	Search   string // optional: partial match on phone, name, brand, or sequence
	Archived *bool  // nil = exclude archived, otherwise filter by the flag
	Page     int    // 1-based
	Limit    int    // max rows per page (capped at 100 by the service)
}

// JobUpdate is a partial-field merge for PATCH-style updates. Nil pointers
// leave the stored value untouched.
type JobUpdate struct {
	Name      *string
	Surname   *string
	Phone     *string
	BrandName *string
	Classes   []int // nil = unchanged, non-nil replaces the set
}

// TransitionWrite is the single atomic unit a successful transition persists:
// the status change, the history append, and any reassignment or effect
// fields. Either all of it lands or none of it does.
type TransitionWrite struct {
	Status  domain.JobStatus
	History domain.HistoryEntry

	BrandName         *string
	Reviewer          *string
	Lawyer            *string
	ReviewResult      *domain.ReviewResult
	ClearReviewResult bool
	Certificate       *string
	Archive           bool
}

// JobRepository defines persistence for job documents. Implementations must
// serialize transition writes per job id via a version check, and must back
// NextSequence with an atomic increment-and-return primitive.
type JobRepository interface {
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, j *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter ListJobsFilter) ([]*domain.Job, int64, error)
	Update(ctx context.Context, id string, upd JobUpdate) (*domain.Job, error)
	Delete(ctx context.Context, id string) error

	// ApplyTransition performs the conditional write: the update only matches
	// when the stored version equals expectedVersion. A lost race returns
	// domain.ErrConflict; an unknown id returns domain.ErrNotFound.
	ApplyTransition(ctx context.Context, id string, expectedVersion int64, w TransitionWrite) error

	AddInvoice(ctx context.Context, id string, inv domain.Invoice) error
	SetInvoiceReceipt(ctx context.Context, id string, index int, receiptRef string) error
	SetInvoiceStatus(ctx context.Context, id string, index int, status domain.InvoiceStatus) error
	SetDocuments(ctx context.Context, id string, docs domain.Documents, logoRef string) error

	// ListTerminalUnarchived returns unarchived jobs in a terminal status
	// whose last update is older than the cutoff. Used by the archival sweep.
	ListTerminalUnarchived(ctx context.Context, olderThan time.Time) ([]*domain.Job, error)
}
