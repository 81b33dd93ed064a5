package domain

// PayloadField names a precondition an edge imposes before it may be applied.
type PayloadField string

const (
	FieldBrandName   PayloadField = "brand_name"
	FieldReason      PayloadField = "reason"
	FieldCertificate PayloadField = "certificate_ref"
	// FieldDocuments requires the job itself to carry uploaded documents;
	// it is checked against job state rather than the request payload.
	FieldDocuments PayloadField = "documents"
)

// TransitionEffect names the side effect an edge performs besides the status
// change and history append.
type TransitionEffect string

const (
	EffectNone              TransitionEffect = ""
	EffectAssignReviewer    TransitionEffect = "assign_reviewer"
	EffectReviewApprove     TransitionEffect = "review_approve"
	EffectReviewReject      TransitionEffect = "review_reject"
	EffectClaimLawyer       TransitionEffect = "claim_lawyer"
	EffectAppendCertificate TransitionEffect = "append_certificate"
	EffectComplete          TransitionEffect = "complete"
	EffectArchive           TransitionEffect = "archive"
)

// ActionForced is the history action recorded when an admin moves a job
// across a pair no edge declares.
const ActionForced = "forced"

// Edge declares one legal transition: the single non-admin role allowed to
// trigger it, the payload it requires, the history action label, and its
// side effect. Admins may additionally force any (from → to) pair.
type Edge struct {
	From     JobStatus
	To       JobStatus
	Role     string
	Requires []PayloadField
	Action   string
	Effect   TransitionEffect
}

// edges is the declarative transition table for the whole lifecycle.
var edges = []Edge{
	// Operator contact phase.
	{From: StatusNew, To: StatusContacted, Role: RoleOperator, Action: "contacted"},
	{From: StatusNew, To: StatusLater, Role: RoleOperator, Action: "postponed"},
	{From: StatusContacted, To: StatusLater, Role: RoleOperator, Action: "postponed"},
	{From: StatusLater, To: StatusContacted, Role: RoleOperator, Action: "follow_up"},
	{From: StatusNew, To: StatusLostContact, Role: RoleOperator, Action: "contact_lost"},
	{From: StatusContacted, To: StatusLostContact, Role: RoleOperator, Action: "contact_lost"},
	{From: StatusLater, To: StatusLostContact, Role: RoleOperator, Action: "contact_lost"},

	// Send to brand review; resubmission after a reject follows the same edge.
	{From: StatusNew, To: StatusBrandInReview, Role: RoleOperator,
		Requires: []PayloadField{FieldBrandName}, Action: "sent_to_review", Effect: EffectAssignReviewer},
	{From: StatusContacted, To: StatusBrandInReview, Role: RoleOperator,
		Requires: []PayloadField{FieldBrandName}, Action: "sent_to_review", Effect: EffectAssignReviewer},
	{From: StatusReturnedToOperator, To: StatusBrandInReview, Role: RoleOperator,
		Requires: []PayloadField{FieldBrandName}, Action: "sent_to_review", Effect: EffectAssignReviewer},

	// Review cycle: approve moves straight to document collection, reject
	// hands the job back to the operator.
	{From: StatusBrandInReview, To: StatusDocumentsPending, Role: RoleReviewer,
		Action: "brand_approved", Effect: EffectReviewApprove},
	{From: StatusBrandInReview, To: StatusReturnedToOperator, Role: RoleReviewer,
		Requires: []PayloadField{FieldReason}, Action: "brand_rejected", Effect: EffectReviewReject},

	// Definitive decline of a bounced job.
	{From: StatusReturnedToOperator, To: StatusRejected, Role: RoleAdmin,
		Requires: []PayloadField{FieldReason}, Action: "declined"},

	// Document submission and the lawyer phase.
	{From: StatusDocumentsPending, To: StatusDocumentsSubmitted, Role: RoleOperator,
		Requires: []PayloadField{FieldDocuments}, Action: "documents_submitted"},
	{From: StatusDocumentsSubmitted, To: StatusToLawyer, Role: RoleLawyer,
		Action: "picked_up_by_lawyer", Effect: EffectClaimLawyer},
	{From: StatusToLawyer, To: StatusLawyerProcessing, Role: RoleLawyer,
		Requires: []PayloadField{FieldCertificate}, Action: "certificates_uploaded", Effect: EffectAppendCertificate},
	{From: StatusLawyerProcessing, To: StatusFinished, Role: RoleLawyer,
		Action: "completed", Effect: EffectComplete},

	// Archival of terminal states.
	{From: StatusFinished, To: StatusArchived, Role: RoleAdmin, Action: "archived", Effect: EffectArchive},
	{From: StatusRejected, To: StatusArchived, Role: RoleAdmin, Action: "archived", Effect: EffectArchive},
	{From: StatusLostContact, To: StatusArchived, Role: RoleAdmin, Action: "archived", Effect: EffectArchive},
}

// FindEdge returns the declared edge for the (from → to) pair, or nil.
func FindEdge(from, to JobStatus) *Edge {
	for i := range edges {
		if edges[i].From == from && edges[i].To == to {
			return &edges[i]
		}
	}
	return nil
}

// Edges returns a copy of the full transition table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// RequiresField reports whether the edge demands the given field.
func (e *Edge) RequiresField(f PayloadField) bool {
	for _, r := range e.Requires {
		if r == f {
			return true
		}
	}
	return false
}
