package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/api/metrics"
	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// JobService implements job CRUD, the invoice cycle, and the document
// collaborator plumbing.
type JobService struct {
	repo          ports.JobRepository
	messages      ports.MessageRepository
	notifications ports.NotificationRepository
	files         ports.FileStore
	renderer      ports.DocumentRenderer
	log           zerolog.Logger
	now           func() time.Time
}

func NewJobService(
	repo ports.JobRepository,
	messages ports.MessageRepository,
	notifications ports.NotificationRepository,
	files ports.FileStore,
	renderer ports.DocumentRenderer,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		repo:          repo,
		messages:      messages,
		notifications: notifications,
		files:         files,
		renderer:      renderer,
		log:           log,
		now:           time.Now,
	}
}

// Create opens a new job with status=new, a freshly assigned sequence number,
// and a single history entry.
func (s *JobService) Create(ctx context.Context, in ports.CreateJobInput) (*domain.Job, error) {
	if in.Phone == "" {
		return nil, fmt.Errorf("%w: phone is required", domain.ErrValidation)
	}
	personType := domain.PersonType(in.PersonType)
	if !personType.Valid() {
		return nil, fmt.Errorf("%w: person_type must be legal or individual", domain.ErrValidation)
	}
	classes, err := normalizeClasses(in.Classes)
	if err != nil {
		return nil, err
	}

	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := &domain.Job{
		Sequence:         seq,
		Name:             in.Name,
		Surname:          in.Surname,
		Phone:            in.Phone,
		PersonType:       personType,
		BrandName:        in.BrandName,
		Status:           domain.StatusNew,
		AssignedOperator: in.OperatorID,
		Classes:          classes,
		History: []domain.HistoryEntry{{
			Action:    "created",
			Status:    domain.StatusNew,
			UpdatedBy: in.OperatorID,
			Date:      now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}

	if err := s.repo.Create(ctx, job); err != nil {
		s.log.Error().Err(err).Msg("failed to create job")
		return nil, err
	}

	metrics.JobsCreatedTotal.WithLabelValues(string(personType)).Inc()
	s.log.Info().Int64("sequence", seq).Str("job_id", job.ID).Str("operator", in.OperatorID).Msg("job created")
	return job, nil
}

func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *JobService) List(ctx context.Context, in ports.ListJobsInput) (*ports.ListJobsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListJobsFilter{
		Status:   in.Status,
		Assignee: in.Assignee,
		Search:   in.Search,
		Archived: in.Archived,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListJobsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *JobService) Update(ctx context.Context, id string, in ports.UpdateJobInput) (*domain.Job, error) {
	if in.Phone != nil && *in.Phone == "" {
		return nil, fmt.Errorf("%w: phone cannot be cleared", domain.ErrValidation)
	}
	classes := in.Classes
	if classes != nil {
		var err error
		classes, err = normalizeClasses(classes)
		if err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, ports.JobUpdate{
		Name:      in.Name,
		Surname:   in.Surname,
		Phone:     in.Phone,
		BrandName: in.BrandName,
		Classes:   classes,
	})
}

// Delete hard-deletes the job and sweeps its dependent messages and
// notifications. Admin only.
func (s *JobService) Delete(ctx context.Context, id string, actor ports.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: only admins may delete jobs", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.messages.DeleteByJob(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("job_id", id).Msg("failed to delete job messages")
	}
	if err := s.notifications.DeleteByJob(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("job_id", id).Msg("failed to delete job notifications")
	}
	s.log.Info().Str("job_id", id).Str("actor", actor.ID).Msg("job deleted")
	return nil
}

func (s *JobService) AddInvoice(ctx context.Context, id string, amount float64) (*domain.Job, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	inv := domain.Invoice{
		Amount:    amount,
		Status:    domain.InvoicePending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddInvoice(ctx, id, inv); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *JobService) AttachReceipt(ctx context.Context, id string, index int, file ports.FileUpload) (*domain.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(job.Invoices) {
		return nil, fmt.Errorf("%w: invoice %d", domain.ErrNotFound, index)
	}
	if job.Invoices[index].Status == domain.InvoicePaid {
		return nil, fmt.Errorf("%w: invoice %d is already paid", domain.ErrValidation, index)
	}

	ref, err := s.files.Save(ctx, file.Name, file.Reader)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetInvoiceReceipt(ctx, id, index, ref); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *JobService) MarkInvoicePaid(ctx context.Context, id string, index int) (*domain.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(job.Invoices) {
		return nil, fmt.Errorf("%w: invoice %d", domain.ErrNotFound, index)
	}
	if job.Invoices[index].Status != domain.InvoiceReceiptUploaded {
		return nil, fmt.Errorf("%w: invoice %d has no uploaded receipt", domain.ErrValidation, index)
	}
	if err := s.repo.SetInvoiceStatus(ctx, id, index, domain.InvoicePaid); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// UploadDocuments stores each file and merges the resulting references into
// the job's document bundle. Field names map onto the person-type variant;
// unknown fields land in the free-form Extra map.
func (s *JobService) UploadDocuments(ctx context.Context, id string, files map[string]ports.FileUpload) (*domain.Job, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", domain.ErrValidation)
	}
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	docs := job.Documents
	logoRef := ""
	for field, f := range files {
		ref, err := s.files.Save(ctx, f.Name, f.Reader)
		if err != nil {
			return nil, err
		}
		if err := mergeDocumentRef(&docs, &logoRef, job.PersonType, field, ref); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetDocuments(ctx, id, docs, logoRef); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// GeneratePowerOfAttorney renders the document, stores it, and persists the
// reference on the job.
func (s *JobService) GeneratePowerOfAttorney(ctx context.Context, id string) (string, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	rendered, err := s.renderer.PowerOfAttorney(job)
	if err != nil {
		return "", err
	}
	ref, err := s.files.Save(ctx, fmt.Sprintf("power-of-attorney-%d.html", job.Sequence), bytes.NewReader(rendered))
	if err != nil {
		return "", err
	}

	docs := job.Documents
	docs.PowerOfAttorneyRef = ref
	if err := s.repo.SetDocuments(ctx, id, docs, ""); err != nil {
		return "", err
	}
	s.log.Info().Str("job_id", id).Str("ref", ref).Msg("power of attorney generated")
	return ref, nil
}

// mergeDocumentRef places one stored reference into the bundle, rejecting
// fields that belong to the other person-type variant.
func mergeDocumentRef(docs *domain.Documents, logoRef *string, pt domain.PersonType, field, ref string) error {
	legalFields := map[string]bool{"charter": true, "director_order": true, "company_tin": true}
	individualFields := map[string]bool{"passport": true, "personal_tin": true}

	switch {
	case field == "logo":
		*logoRef = ref
	case legalFields[field]:
		if pt != domain.PersonLegal {
			return fmt.Errorf("%w: field %s not allowed for person_type %s", domain.ErrValidation, field, pt)
		}
		if docs.Legal == nil {
			docs.Legal = &domain.LegalDocs{}
		}
		switch field {
		case "charter":
			docs.Legal.Charter = ref
		case "director_order":
			docs.Legal.DirectorOrder = ref
		case "company_tin":
			docs.Legal.CompanyTIN = ref
		}
	case individualFields[field]:
		if pt != domain.PersonIndividual {
			return fmt.Errorf("%w: field %s not allowed for person_type %s", domain.ErrValidation, field, pt)
		}
		if docs.Individual == nil {
			docs.Individual = &domain.IndividualDocs{}
		}
		switch field {
		case "passport":
			docs.Individual.Passport = ref
		case "personal_tin":
			docs.Individual.PersonalTIN = ref
		}
	default:
		if docs.Extra == nil {
			docs.Extra = map[string]string{}
		}
		docs.Extra[field] = ref
	}
	return nil
}

// normalizeClasses deduplicates, sorts, and range-checks registration
// classes (1..45).
func normalizeClasses(classes []int) ([]int, error) {
	if len(classes) == 0 {
		return nil, nil
	}
	seen := make(map[int]struct{}, len(classes))
	out := make([]int, 0, len(classes))
	for _, c := range classes {
		if c < 1 || c > 45 {
			return nil, fmt.Errorf("%w: class %d out of range 1..45", domain.ErrValidation, c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Ints(out)
	return out, nil
}
