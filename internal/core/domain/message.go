package domain

import "time"

// Message is one entry in a job's comment thread. Messages are append-only
// and stored independently of the job document.
type Message struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	JobID      string    `json:"job_id" bson:"job_id"`
	Sender     string    `json:"sender" bson:"sender"`
	TargetRole string    `json:"target_role,omitempty" bson:"target_role,omitempty"`
	Text       string    `json:"text" bson:"text"`
	FileRef    string    `json:"file_ref,omitempty" bson:"file_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
