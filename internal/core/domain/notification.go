package domain

import "time"

// NotificationType classifies the workflow event a notification reports.
type NotificationType string

const (
	NotifyJobAssigned          NotificationType = "job_assigned"
	NotifyReviewRequested      NotificationType = "review_requested"
	NotifyBrandApproved        NotificationType = "brand_approved"
	NotifyBrandRejected        NotificationType = "brand_rejected"
	NotifyDocumentsSubmitted   NotificationType = "documents_submitted"
	NotifyCertificatesUploaded NotificationType = "certificates_uploaded"
	NotifyJobFinished          NotificationType = "job_finished"
)

// Notification is a message addressed either to one user (Recipient set) or
// to every member of a role (Role set). Exactly one of the two is non-empty.
// A role-addressed notification is a single record, not a fan-out.
type Notification struct {
	ID        string           `json:"id" bson:"_id,omitempty"`
	Recipient string           `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Role      string           `json:"role,omitempty" bson:"role,omitempty"`
	JobID     string           `json:"job_id,omitempty" bson:"job_id,omitempty"`
	Type      NotificationType `json:"type" bson:"type"`
	Message   string           `json:"message" bson:"message"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
