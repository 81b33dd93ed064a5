package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/api/metrics"
	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// Notifier is the asynchronous side-effect sink for completed transitions.
// Enqueue is fire-and-forget: a failed notification write never fails the
// parent transition.
type Notifier interface {
	Enqueue(n ports.NotificationInput)
}

// TransitionService is the status transition engine. Each Apply call reads
// the current job, validates role, ownership and payload against the edge
// table, and persists the status change + history append + reassignment as
// one conditional write keyed on the job's version.
type TransitionService struct {
	jobs     ports.JobRepository
	users    ports.UserRepository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time

	reviewerFee float64
	lawyerFee   float64
}

func NewTransitionService(
	jobs ports.JobRepository,
	users ports.UserRepository,
	notifier Notifier,
	reviewerFee, lawyerFee float64,
	log zerolog.Logger,
) *TransitionService {
	return &TransitionService{
		jobs:        jobs,
		users:       users,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
		reviewerFee: reviewerFee,
		lawyerFee:   lawyerFee,
	}
}

// Apply validates and performs one transition. Resubmitting the target the
// job already carries is a success no-op: no duplicate history entry is
// appended. A version race surfaced by the repository is retried once with
// a fresh read.
func (s *TransitionService) Apply(ctx context.Context, in ports.ApplyTransitionInput) (*ports.TransitionResult, error) {
	if !in.Target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, in.Target)
	}

	for attempt := 0; ; attempt++ {
		job, err := s.jobs.FindByID(ctx, in.JobID)
		if err != nil {
			return nil, err
		}

		if job.Status == in.Target {
			s.log.Debug().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("transition no-op")
			return &ports.TransitionResult{Job: job, NoOp: true}, nil
		}

		edge := domain.FindEdge(job.Status, in.Target)
		isAdmin := in.Actor.Role == domain.RoleAdmin

		if edge == nil && !isAdmin {
			metrics.TransitionErrorsTotal.WithLabelValues("invalid_transition").Inc()
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, job.Status, in.Target)
		}
		if edge != nil && !isAdmin {
			if in.Actor.Role != edge.Role {
				metrics.TransitionErrorsTotal.WithLabelValues("role").Inc()
				return nil, fmt.Errorf("%w: role %s may not move %s -> %s",
					domain.ErrForbidden, in.Actor.Role, job.Status, in.Target)
			}
			if err := checkOwnership(job, edge, in.Actor); err != nil {
				metrics.TransitionErrorsTotal.WithLabelValues("ownership").Inc()
				return nil, err
			}
		}
		// Payload preconditions bind admins too when the pair is declared.
		if edge != nil {
			if err := checkPreconditions(job, edge, in.Payload); err != nil {
				metrics.TransitionErrorsTotal.WithLabelValues("payload").Inc()
				return nil, err
			}
		}

		write, notifs, err := s.buildWrite(ctx, job, edge, in)
		if err != nil {
			return nil, err
		}

		err = s.jobs.ApplyTransition(ctx, job.ID, job.Version, write)
		if errors.Is(err, domain.ErrConflict) && attempt == 0 {
			s.log.Warn().Str("job_id", job.ID).Msg("transition version race, retrying with fresh read")
			continue
		}
		if err != nil {
			metrics.TransitionErrorsTotal.WithLabelValues("write").Inc()
			return nil, err
		}

		metrics.TransitionsTotal.WithLabelValues(string(job.Status), string(in.Target)).Inc()
		s.log.Info().
			Str("job_id", job.ID).
			Str("from", string(job.Status)).
			Str("to", string(in.Target)).
			Str("actor", in.Actor.ID).
			Str("action", write.History.Action).
			Msg("transition applied")

		if edge != nil && edge.Effect == domain.EffectComplete {
			s.creditCompletionFees(ctx, job)
		}
		for _, n := range notifs {
			s.notifier.Enqueue(n)
		}

		updated, err := s.jobs.FindByID(ctx, job.ID)
		if err != nil {
			// The write landed; surface the stale copy rather than an error.
			s.log.Warn().Err(err).Str("job_id", job.ID).Msg("re-read after transition failed")
			updated = job
		}
		return &ports.TransitionResult{Job: updated}, nil
	}
}

// checkOwnership enforces that a non-admin actor only moves jobs currently
// assigned to them. An empty assignment field is claimable only on the edge
// whose effect performs the assignment (the lawyer pickup).
func checkOwnership(job *domain.Job, edge *domain.Edge, actor ports.Actor) error {
	assigned, ok := job.AssignedTo(actor.Role)
	if !ok {
		return nil
	}
	if assigned == "" && edge.Effect == domain.EffectClaimLawyer {
		return nil
	}
	if assigned != actor.ID {
		return fmt.Errorf("%w: job is not assigned to actor %s", domain.ErrForbidden, actor.ID)
	}
	return nil
}

// checkPreconditions validates edge-required payload fields. The job is left
// unmodified when any is missing.
func checkPreconditions(job *domain.Job, edge *domain.Edge, p ports.TransitionPayload) error {
	if edge.RequiresField(domain.FieldBrandName) && p.BrandName == "" {
		return fmt.Errorf("%w: brand_name is required", domain.ErrValidation)
	}
	if edge.RequiresField(domain.FieldReason) && p.Reason == "" {
		return fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if edge.RequiresField(domain.FieldCertificate) && p.CertificateRef == "" {
		return fmt.Errorf("%w: certificate_ref is required", domain.ErrValidation)
	}
	if edge.RequiresField(domain.FieldDocuments) && job.Documents.Empty() {
		return fmt.Errorf("%w: job has no uploaded documents", domain.ErrValidation)
	}
	return nil
}

// buildWrite assembles the atomic write and the notifications a successful
// apply will emit.
func (s *TransitionService) buildWrite(
	ctx context.Context,
	job *domain.Job,
	edge *domain.Edge,
	in ports.ApplyTransitionInput,
) (ports.TransitionWrite, []ports.NotificationInput, error) {
	now := s.now().UTC()
	action := domain.ActionForced
	if edge != nil {
		action = edge.Action
	}

	w := ports.TransitionWrite{
		Status: in.Target,
		History: domain.HistoryEntry{
			Action:    action,
			Status:    in.Target,
			Reason:    in.Payload.Reason,
			UpdatedBy: in.Actor.ID,
			Date:      now,
		},
	}
	var notifs []ports.NotificationInput

	if edge == nil {
		return w, notifs, nil
	}

	switch edge.Effect {
	case domain.EffectAssignReviewer:
		reviewerID := in.Payload.ReviewerID
		if reviewerID == "" {
			reviewer, err := s.users.FirstByRole(ctx, domain.RoleReviewer)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return w, nil, fmt.Errorf("%w: no reviewer available", domain.ErrUnavailable)
				}
				return w, nil, err
			}
			reviewerID = reviewer.ID
		}
		w.BrandName = &in.Payload.BrandName
		w.Reviewer = &reviewerID
		w.ClearReviewResult = true
		notifs = append(notifs,
			ports.NotificationInput{
				Role: domain.RoleReviewer, JobID: job.ID, Type: domain.NotifyReviewRequested,
				Message: fmt.Sprintf("Job #%d: brand %q awaits review", job.Sequence, in.Payload.BrandName),
			},
			ports.NotificationInput{
				Recipient: reviewerID, JobID: job.ID, Type: domain.NotifyJobAssigned,
				Message: fmt.Sprintf("Job #%d was assigned to you for review", job.Sequence),
			},
		)

	case domain.EffectReviewApprove:
		w.ReviewResult = &domain.ReviewResult{Approved: true, ReviewedAt: now}
		notifs = append(notifs, ports.NotificationInput{
			Recipient: job.AssignedOperator, JobID: job.ID, Type: domain.NotifyBrandApproved,
			Message: fmt.Sprintf("Job #%d: brand %q was approved", job.Sequence, job.BrandName),
		})

	case domain.EffectReviewReject:
		w.ReviewResult = &domain.ReviewResult{Approved: false, Reason: in.Payload.Reason, ReviewedAt: now}
		notifs = append(notifs, ports.NotificationInput{
			Recipient: job.AssignedOperator, JobID: job.ID, Type: domain.NotifyBrandRejected,
			Message: fmt.Sprintf("Job #%d: brand %q was rejected: %s", job.Sequence, job.BrandName, in.Payload.Reason),
		})

	case domain.EffectClaimLawyer:
		w.Lawyer = &in.Actor.ID

	case domain.EffectAppendCertificate:
		w.Certificate = &in.Payload.CertificateRef
		notifs = append(notifs, ports.NotificationInput{
			Role: domain.RoleAdmin, JobID: job.ID, Type: domain.NotifyCertificatesUploaded,
			Message: fmt.Sprintf("Job #%d: certificates uploaded", job.Sequence),
		})

	case domain.EffectComplete:
		notifs = append(notifs, ports.NotificationInput{
			Recipient: job.AssignedOperator, JobID: job.ID, Type: domain.NotifyJobFinished,
			Message: fmt.Sprintf("Job #%d is finished", job.Sequence),
		})

	case domain.EffectArchive:
		w.Archive = true
	}

	if edge.Action == "documents_submitted" {
		notifs = append(notifs, ports.NotificationInput{
			Role: domain.RoleLawyer, JobID: job.ID, Type: domain.NotifyDocumentsSubmitted,
			Message: fmt.Sprintf("Job #%d: documents submitted, ready for pickup", job.Sequence),
		})
	}

	return w, notifs, nil
}

// creditCompletionFees credits the assigned reviewer and lawyer. Failures are
// logged, not surfaced: the transition itself already committed.
func (s *TransitionService) creditCompletionFees(ctx context.Context, job *domain.Job) {
	if job.AssignedReviewer != "" && s.reviewerFee > 0 {
		if err := s.users.CreditBalance(ctx, job.AssignedReviewer, s.reviewerFee); err != nil {
			s.log.Warn().Err(err).Str("user_id", job.AssignedReviewer).Msg("failed to credit reviewer fee")
		}
	}
	if job.AssignedLawyer != "" && s.lawyerFee > 0 {
		if err := s.users.CreditBalance(ctx, job.AssignedLawyer, s.lawyerFee); err != nil {
			s.log.Warn().Err(err).Str("user_id", job.AssignedLawyer).Msg("failed to credit lawyer fee")
		}
	}
}
