package ports

import (
	"context"
	"io"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// Actor identifies the authenticated user performing an operation, as decoded
// from the bearer token. The core trusts this identity.
type Actor struct {
	ID   string
	Role string
}

// CreateJobInput carries the data needed to open a new registration job.
type CreateJobInput struct {
	Name       string
	Surname    string
	Phone      string
	PersonType string
	BrandName  string
	Classes    []int
	// OperatorID is the creating operator; the job is assigned to them.
	OperatorID string
}

// UpdateJobInput is a partial update; nil pointers leave fields untouched.
type UpdateJobInput struct {
	Name      *string
	Surname   *string
	Phone     *string
	BrandName *string
	Classes   []int
}

// ListJobsInput carries all parameters for the list endpoint.
type ListJobsInput struct {
	Status   string
	Assignee string
	Search   string
	Archived *bool
	Page     int
	Limit    int
}

// ListJobsResult is returned by List.
type ListJobsResult struct {
	Items      []*domain.Job
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// FileUpload is one incoming multipart file.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

// JobService defines use-case operations on jobs outside the status
// transition engine.
type JobService interface {
	Create(ctx context.Context, in CreateJobInput) (*domain.Job, error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, in ListJobsInput) (*ListJobsResult, error)
	Update(ctx context.Context, id string, in UpdateJobInput) (*domain.Job, error)
	// Delete hard-deletes a job and its dependent messages/notifications.
	// Admin only.
	Delete(ctx context.Context, id string, actor Actor) error

	AddInvoice(ctx context.Context, id string, amount float64) (*domain.Job, error)
	AttachReceipt(ctx context.Context, id string, index int, file FileUpload) (*domain.Job, error)
	MarkInvoicePaid(ctx context.Context, id string, index int) (*domain.Job, error)

	// UploadDocuments stores the given files and merges their references into
	// the job's document bundle, keyed by form field name.
	UploadDocuments(ctx context.Context, id string, files map[string]FileUpload) (*domain.Job, error)
	// GeneratePowerOfAttorney renders the power-of-attorney document from the
	// job's fields, stores it, and returns the file reference.
	GeneratePowerOfAttorney(ctx context.Context, id string) (string, error)
}
