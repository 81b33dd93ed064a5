package handler

import (
	"time"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// --- Request types ---

type createJobRequest struct {
	Name       string `json:"name" validate:"required"`
	Surname    string `json:"surname,omitempty"`
	Phone      string `json:"phone" validate:"required"`
	PersonType string `json:"person_type" validate:"required,oneof=legal individual"`
	BrandName  string `json:"brand_name,omitempty"`
	Classes    []int  `json:"classes,omitempty" validate:"omitempty,dive,min=1,max=45"`
}

type updateJobRequest struct {
	Name      *string `json:"name,omitempty"`
	Surname   *string `json:"surname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	BrandName *string `json:"brand_name,omitempty"`
	Classes   []int   `json:"classes,omitempty" validate:"omitempty,dive,min=1,max=45"`
}

type transitionRequest struct {
	Status         string `json:"status" validate:"required"`
	BrandName      string `json:"brand_name,omitempty"`
	Reason         string `json:"reason,omitempty"`
	ReviewerID     string `json:"reviewer_id,omitempty"`
	CertificateRef string `json:"certificate_ref,omitempty"`
}

type addInvoiceRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type postMessageRequest struct {
	Text       string `json:"text" validate:"required"`
	TargetRole string `json:"target_role,omitempty" validate:"omitempty,oneof=admin operator reviewer lawyer"`
	FileRef    string `json:"file_ref,omitempty"`
}

// --- Response types ---

type historyEntryResponse struct {
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedBy string    `json:"updated_by"`
	Date      time.Time `json:"date"`
}

type invoiceResponse struct {
	Index      int       `json:"index"`
	Amount     float64   `json:"amount"`
	ReceiptRef string    `json:"receipt_ref,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type reviewResultResponse struct {
	Approved   bool      `json:"approved"`
	Reason     string    `json:"reason,omitempty"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type jobResponse struct {
	ID               string                 `json:"id"`
	Sequence         int64                  `json:"sequence"`
	Name             string                 `json:"name"`
	Surname          string                 `json:"surname,omitempty"`
	Phone            string                 `json:"phone"`
	PersonType       string                 `json:"person_type"`
	BrandName        string                 `json:"brand_name,omitempty"`
	LogoRef          string                 `json:"logo_ref,omitempty"`
	Status           string                 `json:"status"`
	AssignedOperator string                 `json:"assigned_operator,omitempty"`
	AssignedReviewer string                 `json:"assigned_reviewer,omitempty"`
	AssignedLawyer   string                 `json:"assigned_lawyer,omitempty"`
	Documents        domain.Documents       `json:"documents"`
	Classes          []int                  `json:"classes,omitempty"`
	ReviewResult     *reviewResultResponse  `json:"review_result,omitempty"`
	Invoices         []invoiceResponse      `json:"invoices,omitempty"`
	Certificates     []string               `json:"certificates,omitempty"`
	History          []historyEntryResponse `json:"history"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	Archived         bool                   `json:"archived"`
	ArchivedAt       *time.Time             `json:"archived_at,omitempty"`
}

type transitionResponse struct {
	Job  jobResponse `json:"job"`
	NoOp bool        `json:"no_op"`
}

type jobListResponse struct {
	Items      []jobResponse `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

type fileRefResponse struct {
	FileRef string `json:"file_ref"`
}
