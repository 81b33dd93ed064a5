package domain

import "time"

// JobStatus represents the lifecycle state of a registration job.
type JobStatus string

const (
	StatusNew                JobStatus = "new"
	StatusContacted          JobStatus = "contacted"
	StatusLater              JobStatus = "later"
	StatusLostContact        JobStatus = "lost_contact"
	StatusBrandInReview      JobStatus = "brand_in_review"
	StatusApproved           JobStatus = "approved"
	StatusRejected           JobStatus = "rejected"
	StatusReturnedToOperator JobStatus = "returned_to_operator"
	StatusDocumentsPending   JobStatus = "documents_pending"
	StatusDocumentsSubmitted JobStatus = "documents_submitted"
	StatusToLawyer           JobStatus = "to_lawyer"
	StatusLawyerProcessing   JobStatus = "lawyer_processing"
	StatusFinished           JobStatus = "finished"
	StatusArchived           JobStatus = "archived"
)

var allStatuses = map[JobStatus]struct{}{
	StatusNew: {}, StatusContacted: {}, StatusLater: {}, StatusLostContact: {},
	StatusBrandInReview: {}, StatusApproved: {}, StatusRejected: {},
	StatusReturnedToOperator: {}, StatusDocumentsPending: {}, StatusDocumentsSubmitted: {},
	StatusToLawyer: {}, StatusLawyerProcessing: {}, StatusFinished: {}, StatusArchived: {},
}

// Valid reports whether s is a member of the status enum.
func (s JobStatus) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// Terminal reports whether s ends the active lifecycle and makes the job
// eligible for the archival sweep.
func (s JobStatus) Terminal() bool {
	return s == StatusFinished || s == StatusRejected || s == StatusLostContact
}

// PersonType distinguishes legal-entity clients from individuals.
type PersonType string

const (
	PersonLegal      PersonType = "legal"
	PersonIndividual PersonType = "individual"
)

func (p PersonType) Valid() bool {
	return p == PersonLegal || p == PersonIndividual
}

// LegalDocs holds file references for a legal-entity client.
type LegalDocs struct {
	Charter       string `json:"charter,omitempty" bson:"charter,omitempty"`
	DirectorOrder string `json:"director_order,omitempty" bson:"director_order,omitempty"`
	CompanyTIN    string `json:"company_tin,omitempty" bson:"company_tin,omitempty"`
}

// IndividualDocs holds file references for an individual client.
type IndividualDocs struct {
	Passport    string `json:"passport,omitempty" bson:"passport,omitempty"`
	PersonalTIN string `json:"personal_tin,omitempty" bson:"personal_tin,omitempty"`
}

// Documents is a tagged union keyed by the job's person type: exactly one of
// Legal or Individual is populated. Extra carries free-form references.
type Documents struct {
	Legal              *LegalDocs        `json:"legal,omitempty" bson:"legal,omitempty"`
	Individual         *IndividualDocs   `json:"individual,omitempty" bson:"individual,omitempty"`
	PowerOfAttorneyRef string            `json:"power_of_attorney_ref,omitempty" bson:"power_of_attorney_ref,omitempty"`
	Extra              map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`
}

// Empty reports whether no document reference has been stored yet.
func (d Documents) Empty() bool {
	return d.Legal == nil && d.Individual == nil && d.PowerOfAttorneyRef == "" && len(d.Extra) == 0
}

// InvoiceStatus is the payment state of a single invoice.
type InvoiceStatus string

const (
	InvoicePending         InvoiceStatus = "pending"
	InvoiceReceiptUploaded InvoiceStatus = "receipt_uploaded"
	InvoicePaid            InvoiceStatus = "paid"
)

// Invoice is one billing entry on a job.
type Invoice struct {
	Amount     float64       `json:"amount" bson:"amount"`
	ReceiptRef string        `json:"receipt_ref,omitempty" bson:"receipt_ref,omitempty"`
	Status     InvoiceStatus `json:"status" bson:"status"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
}

// ReviewResult records the outcome of the brand review.
type ReviewResult struct {
	Approved   bool      `json:"approved" bson:"approved"`
	Reason     string    `json:"reason,omitempty" bson:"reason,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at" bson:"reviewed_at"`
}

// HistoryEntry is an immutable audit record of one transition. Entries are
// append-only and never reordered.
type HistoryEntry struct {
	Action    string    `json:"action" bson:"action"`
	Status    JobStatus `json:"status" bson:"status"`
	Reason    string    `json:"reason,omitempty" bson:"reason,omitempty"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
	Date      time.Time `json:"date" bson:"date"`
}

// Job is the core aggregate: one client's registration case. It owns its
// embedded History and Invoices; assignment fields are weak references to
// User ids.
type Job struct {
	ID               string         `json:"id" bson:"_id,omitempty"`
	Sequence         int64          `json:"sequence" bson:"sequence"`
	Name             string         `json:"name" bson:"name"`
	Surname          string         `json:"surname,omitempty" bson:"surname,omitempty"`
	Phone            string         `json:"phone" bson:"phone"`
	PersonType       PersonType     `json:"person_type" bson:"person_type"`
	BrandName        string         `json:"brand_name,omitempty" bson:"brand_name,omitempty"`
	LogoRef          string         `json:"logo_ref,omitempty" bson:"logo_ref,omitempty"`
	Status           JobStatus      `json:"status" bson:"status"`
	AssignedOperator string         `json:"assigned_operator,omitempty" bson:"assigned_operator,omitempty"`
	AssignedReviewer string         `json:"assigned_reviewer,omitempty" bson:"assigned_reviewer,omitempty"`
	AssignedLawyer   string         `json:"assigned_lawyer,omitempty" bson:"assigned_lawyer,omitempty"`
	Documents        Documents      `json:"documents" bson:"documents"`
	Classes          []int          `json:"classes,omitempty" bson:"classes,omitempty"`
	ReviewResult     *ReviewResult  `json:"review_result,omitempty" bson:"review_result,omitempty"`
	Invoices         []Invoice      `json:"invoices,omitempty" bson:"invoices,omitempty"`
	Certificates     []string       `json:"certificates,omitempty" bson:"certificates,omitempty"`
	History          []HistoryEntry `json:"history" bson:"history"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
	Archived         bool           `json:"archived" bson:"archived"`
	ArchivedAt       *time.Time     `json:"archived_at,omitempty" bson:"archived_at,omitempty"`
	// Version is the optimistic-concurrency stamp; every conditional write
	// filters on it and increments it.
	Version int64 `json:"-" bson:"version"`
}

// AssignedTo returns the assignment field matching the given role, and
// whether the role has one at all (admins do not).
func (j *Job) AssignedTo(role string) (string, bool) {
	switch role {
	case RoleOperator:
		return j.AssignedOperator, true
	case RoleReviewer:
		return j.AssignedReviewer, true
	case RoleLawyer:
		return j.AssignedLawyer, true
	}
	return "", false
}
