package handler

import "github.com/brandreg/crm-api/internal/core/domain"

// toJobResponse maps the domain aggregate to its wire representation.
func toJobResponse(j *domain.Job) jobResponse {
	history := make([]historyEntryResponse, 0, len(j.History))
	for _, h := range j.History {
		history = append(history, historyEntryResponse{
			Action:    h.Action,
			Status:    string(h.Status),
			Reason:    h.Reason,
			UpdatedBy: h.UpdatedBy,
			Date:      h.Date,
		})
	}

	invoices := make([]invoiceResponse, 0, len(j.Invoices))
	for i, inv := range j.Invoices {
		invoices = append(invoices, invoiceResponse{
			Index:      i,
			Amount:     inv.Amount,
			ReceiptRef: inv.ReceiptRef,
			Status:     string(inv.Status),
			CreatedAt:  inv.CreatedAt,
		})
	}

	var review *reviewResultResponse
	if j.ReviewResult != nil {
		review = &reviewResultResponse{
			Approved:   j.ReviewResult.Approved,
			Reason:     j.ReviewResult.Reason,
			ReviewedAt: j.ReviewResult.ReviewedAt,
		}
	}

	return jobResponse{
		ID:               j.ID,
		Sequence:         j.Sequence,
		Name:             j.Name,
		Surname:          j.Surname,
		Phone:            j.Phone,
		PersonType:       string(j.PersonType),
		BrandName:        j.BrandName,
		LogoRef:          j.LogoRef,
		Status:           string(j.Status),
		AssignedOperator: j.AssignedOperator,
		AssignedReviewer: j.AssignedReviewer,
		AssignedLawyer:   j.AssignedLawyer,
		Documents:        j.Documents,
		Classes:          j.Classes,
		ReviewResult:     review,
		Invoices:         invoices,
		Certificates:     j.Certificates,
		History:          history,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
		Archived:         j.Archived,
		ArchivedAt:       j.ArchivedAt,
	}
}

func toJobListResponse(items []*domain.Job) []jobResponse {
	out := make([]jobResponse, 0, len(items))
	for _, j := range items {
		out = append(out, toJobResponse(j))
	}
	return out
}
