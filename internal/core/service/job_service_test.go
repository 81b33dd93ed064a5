package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubMessageRepo struct {
	mu      sync.Mutex
	byJob   map[string][]*domain.Message
	deleted []string
}

func (r *stubMessageRepo) Insert(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byJob == nil {
		r.byJob = map[string][]*domain.Message{}
	}
	r.byJob[m.JobID] = append(r.byJob[m.JobID], m)
	return nil
}

func (r *stubMessageRepo) ListByJob(_ context.Context, jobID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byJob[jobID], nil
}

func (r *stubMessageRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, jobID)
	delete(r.byJob, jobID)
	return nil
}

type stubNotificationRepo struct {
	mu       sync.Mutex
	inserted []*domain.Notification
	deleted  []string
	readIDs  []string
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = fmt.Sprintf("ntf-%d", len(r.inserted)+1)
	}
	r.inserted = append(r.inserted, n)
	return nil
}

func (r *stubNotificationRepo) List(_ context.Context, filter ports.ListNotificationsFilter) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.inserted {
		if n.Recipient != filter.UserID && n.Role != filter.Role {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.inserted {
		if n.ID == id && (n.Recipient == userID || n.Role == role) {
			n.Read = true
			r.readIDs = append(r.readIDs, id)
			return nil
		}
	}
	return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ntf := range r.inserted {
		if !ntf.Read && (ntf.Recipient == userID || ntf.Role == role) {
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) DeleteByJob(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, jobID)
	return nil
}

type stubFileStore struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (s *stubFileStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	_, _ = io.Copy(io.Discard, r)
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := fmt.Sprintf("stored-%d-%s", len(s.saved)+1, name)
	s.saved = append(s.saved, ref)
	return ref, nil
}

type stubRenderer struct {
	err error
}

func (r *stubRenderer) PowerOfAttorney(job *domain.Job) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("<html>" + job.BrandName + "</html>"), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newJobSvc(jobs *stubJobRepo) (*JobService, *stubMessageRepo, *stubNotificationRepo, *stubFileStore) {
	messages := &stubMessageRepo{}
	notifications := &stubNotificationRepo{}
	files := &stubFileStore{}
	svc := NewJobService(jobs, messages, notifications, files, &stubRenderer{}, zerolog.Nop())
	return svc, messages, notifications, files
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestJobService_Create_SequencesAreStrictlyIncreasing(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, _ := newJobSvc(jobs)

	var last int64
	for i := 0; i < 5; i++ {
		job, err := svc.Create(context.Background(), ports.CreateJobInput{
			Name: "Client", Phone: "+998900000001", PersonType: "individual", OperatorID: "op-1",
		})
		if err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
		if job.Sequence <= last {
			t.Fatalf("expected strictly increasing sequence, got %d after %d", job.Sequence, last)
		}
		last = job.Sequence
	}
}

func TestJobService_Create_ConcurrentSequencesAreDistinct(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, _ := newJobSvc(jobs)

	const n = 20
	seqs := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job, err := svc.Create(context.Background(), ports.CreateJobInput{
				Phone:      fmt.Sprintf("+99890123%04d", i),
				PersonType: string(domain.PersonIndividual),
				OperatorID: "op-1",
			})
			if err != nil {
				t.Errorf("concurrent create #%d: %v", i, err)
				return
			}
			seqs <- job.Sequence
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool, n)
	for s := range seqs {
		if seen[s] {
			t.Fatalf("duplicate sequence %d", s)
		}
		seen[s] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct sequences, got %d", n, len(seen))
	}
}

func TestJobService_Create_Validation(t *testing.T) {
	svc, _, _, _ := newJobSvc(newStubJobRepo())

	_, err := svc.Create(context.Background(), ports.CreateJobInput{
		Name: "Client", PersonType: "legal", OperatorID: "op-1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing phone, got: %v", err)
	}

	_, err = svc.Create(context.Background(), ports.CreateJobInput{
		Name: "Client", Phone: "+998900000001", PersonType: "alien", OperatorID: "op-1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for bad person type, got: %v", err)
	}

	_, err = svc.Create(context.Background(), ports.CreateJobInput{
		Name: "Client", Phone: "+998900000001", PersonType: "legal", Classes: []int{0}, OperatorID: "op-1",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for out-of-range class, got: %v", err)
	}
}

func TestJobService_Create_ClassesNormalized(t *testing.T) {
	svc, _, _, _ := newJobSvc(newStubJobRepo())

	job, err := svc.Create(context.Background(), ports.CreateJobInput{
		Name: "Client", Phone: "+998900000001", PersonType: "legal",
		Classes: []int{42, 9, 42, 3, 9}, OperatorID: "op-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := []int{3, 9, 42}
	if len(job.Classes) != len(want) {
		t.Fatalf("expected classes %v, got %v", want, job.Classes)
	}
	for i := range want {
		if job.Classes[i] != want[i] {
			t.Fatalf("expected classes %v, got %v", want, job.Classes)
		}
	}
}

func TestJobService_List_PaginationBounds(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, _ := newJobSvc(jobs)
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), ports.CreateJobInput{
			Name: "Client", Phone: "+998900000001", PersonType: "legal", OperatorID: "op-1",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := svc.List(context.Background(), ports.ListJobsInput{Page: 0, Limit: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Page != 1 || res.Limit != defaultPageLimit {
		t.Errorf("expected defaults page=1 limit=%d, got page=%d limit=%d", defaultPageLimit, res.Page, res.Limit)
	}
	if res.Total != 3 || res.TotalPages != 1 {
		t.Errorf("expected total=3 pages=1, got total=%d pages=%d", res.Total, res.TotalPages)
	}

	res, err = svc.List(context.Background(), ports.ListJobsInput{Page: 1, Limit: 9999})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Limit != maxPageLimit {
		t.Errorf("expected limit capped at %d, got %d", maxPageLimit, res.Limit)
	}
}

func TestJobService_Update_PhoneCannotBeCleared(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, _ := newJobSvc(jobs)
	seededJob(jobs, "job-1", domain.StatusNew, nil)

	empty := ""
	_, err := svc.Update(context.Background(), "job-1", ports.UpdateJobInput{Phone: &empty})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}
}

func TestJobService_Delete_AdminOnlyAndCascades(t *testing.T) {
	jobs := newStubJobRepo()
	svc, messages, notifications, _ := newJobSvc(jobs)
	seededJob(jobs, "job-1", domain.StatusNew, nil)

	err := svc.Delete(context.Background(), "job-1", ports.Actor{ID: "op-1", Role: domain.RoleOperator})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for operator delete, got: %v", err)
	}

	if err := svc.Delete(context.Background(), "job-1", ports.Actor{ID: "admin-1", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := jobs.FindByID(context.Background(), "job-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("expected job gone after delete")
	}
	if len(messages.deleted) != 1 || messages.deleted[0] != "job-1" {
		t.Errorf("expected message cascade, got %v", messages.deleted)
	}
	if len(notifications.deleted) != 1 || notifications.deleted[0] != "job-1" {
		t.Errorf("expected notification cascade, got %v", notifications.deleted)
	}
}

func TestJobService_InvoiceCycle(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, files := newJobSvc(jobs)
	seededJob(jobs, "job-1", domain.StatusDocumentsPending, nil)

	// Paid confirmation before any receipt is rejected.
	job, err := svc.AddInvoice(context.Background(), "job-1", 1500)
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if len(job.Invoices) != 1 || job.Invoices[0].Status != domain.InvoicePending {
		t.Fatalf("expected one pending invoice, got %+v", job.Invoices)
	}

	if _, err := svc.MarkInvoicePaid(context.Background(), "job-1", 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation without receipt, got: %v", err)
	}

	job, err = svc.AttachReceipt(context.Background(), "job-1", 0, ports.FileUpload{
		Name: "receipt.pdf", Reader: strings.NewReader("pdf-bytes"),
	})
	if err != nil {
		t.Fatalf("attach receipt: %v", err)
	}
	if job.Invoices[0].Status != domain.InvoiceReceiptUploaded || job.Invoices[0].ReceiptRef == "" {
		t.Fatalf("expected receipt recorded, got %+v", job.Invoices[0])
	}
	if len(files.saved) != 1 {
		t.Errorf("expected one stored file, got %v", files.saved)
	}

	job, err = svc.MarkInvoicePaid(context.Background(), "job-1", 0)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if job.Invoices[0].Status != domain.InvoicePaid {
		t.Fatalf("expected paid invoice, got %s", job.Invoices[0].Status)
	}

	// Re-uploading a receipt on a paid invoice is rejected.
	_, err = svc.AttachReceipt(context.Background(), "job-1", 0, ports.FileUpload{
		Name: "receipt2.pdf", Reader: strings.NewReader("pdf-bytes"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for paid invoice, got: %v", err)
	}

	if _, err := svc.AttachReceipt(context.Background(), "job-1", 7, ports.FileUpload{
		Name: "receipt.pdf", Reader: strings.NewReader("x"),
	}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for bad index, got: %v", err)
	}

	if _, err := svc.AddInvoice(context.Background(), "job-1", 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for non-positive amount, got: %v", err)
	}
}

func TestJobService_UploadDocuments_PersonTypeGate(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, _ := newJobSvc(jobs)
	seededJob(jobs, "job-1", domain.StatusDocumentsPending, nil) // legal entity

	job, err := svc.UploadDocuments(context.Background(), "job-1", map[string]ports.FileUpload{
		"charter": {Name: "charter.pdf", Reader: strings.NewReader("a")},
		"logo":    {Name: "logo.png", Reader: strings.NewReader("b")},
		"misc":    {Name: "misc.txt", Reader: strings.NewReader("c")},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if job.Documents.Legal == nil || job.Documents.Legal.Charter == "" {
		t.Errorf("expected charter stored, got %+v", job.Documents.Legal)
	}
	if job.LogoRef == "" {
		t.Error("expected logo reference stored on the job")
	}
	if job.Documents.Extra["misc"] == "" {
		t.Errorf("expected unknown field in Extra, got %v", job.Documents.Extra)
	}

	// Individual-only fields are rejected on a legal-entity job.
	_, err = svc.UploadDocuments(context.Background(), "job-1", map[string]ports.FileUpload{
		"passport": {Name: "passport.jpg", Reader: strings.NewReader("d")},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for cross-type field, got: %v", err)
	}
}

func TestJobService_GeneratePowerOfAttorney(t *testing.T) {
	jobs := newStubJobRepo()
	svc, _, _, files := newJobSvc(jobs)
	seededJob(jobs, "job-1", domain.StatusDocumentsPending, func(j *domain.Job) {
		j.BrandName = "Acme"
	})

	ref, err := svc.GeneratePowerOfAttorney(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ref == "" || len(files.saved) != 1 {
		t.Fatalf("expected stored document, got ref=%q saved=%v", ref, files.saved)
	}
	job, _ := jobs.FindByID(context.Background(), "job-1")
	if job.Documents.PowerOfAttorneyRef != ref {
		t.Errorf("expected reference persisted on the job, got %q", job.Documents.PowerOfAttorneyRef)
	}
}
