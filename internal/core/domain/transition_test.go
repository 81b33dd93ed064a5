package domain

import "testing"

func TestFindEdge_DeclaredPairs(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		role     string
		action   string
	}{
		{StatusNew, StatusContacted, RoleOperator, "contacted"},
		{StatusContacted, StatusBrandInReview, RoleOperator, "sent_to_review"},
		{StatusBrandInReview, StatusDocumentsPending, RoleReviewer, "brand_approved"},
		{StatusBrandInReview, StatusReturnedToOperator, RoleReviewer, "brand_rejected"},
		{StatusDocumentsSubmitted, StatusToLawyer, RoleLawyer, "picked_up_by_lawyer"},
		{StatusLawyerProcessing, StatusFinished, RoleLawyer, "completed"},
		{StatusFinished, StatusArchived, RoleAdmin, "archived"},
	}
	for _, tc := range cases {
		edge := FindEdge(tc.from, tc.to)
		if edge == nil {
			t.Fatalf("expected edge %s -> %s", tc.from, tc.to)
		}
		if edge.Role != tc.role {
			t.Errorf("%s -> %s: expected role %s, got %s", tc.from, tc.to, tc.role, edge.Role)
		}
		if edge.Action != tc.action {
			t.Errorf("%s -> %s: expected action %s, got %s", tc.from, tc.to, tc.action, edge.Action)
		}
	}
}

func TestFindEdge_UndeclaredPairs(t *testing.T) {
	undeclared := [][2]JobStatus{
		{StatusNew, StatusFinished},
		{StatusNew, StatusDocumentsPending},
		{StatusBrandInReview, StatusFinished},
		{StatusArchived, StatusNew},
		{StatusFinished, StatusNew},
	}
	for _, pair := range undeclared {
		if FindEdge(pair[0], pair[1]) != nil {
			t.Errorf("expected no edge %s -> %s", pair[0], pair[1])
		}
	}
}

func TestEdge_RequiresField(t *testing.T) {
	edge := FindEdge(StatusContacted, StatusBrandInReview)
	if edge == nil {
		t.Fatal("expected edge contacted -> brand_in_review")
	}
	if !edge.RequiresField(FieldBrandName) {
		t.Error("sending to review must require a brand name")
	}
	if edge.RequiresField(FieldReason) {
		t.Error("sending to review must not require a reason")
	}

	reject := FindEdge(StatusBrandInReview, StatusReturnedToOperator)
	if !reject.RequiresField(FieldReason) {
		t.Error("brand rejection must require a reason")
	}

	submit := FindEdge(StatusDocumentsPending, StatusDocumentsSubmitted)
	if !submit.RequiresField(FieldDocuments) {
		t.Error("document submission must require uploaded documents")
	}
}

func TestEdges_EveryEdgeHasRoleAndAction(t *testing.T) {
	for _, e := range Edges() {
		if e.Role == "" {
			t.Errorf("edge %s -> %s has no role", e.From, e.To)
		}
		if e.Action == "" {
			t.Errorf("edge %s -> %s has no action", e.From, e.To)
		}
		if !e.From.Valid() || !e.To.Valid() {
			t.Errorf("edge %s -> %s references an unknown status", e.From, e.To)
		}
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	terminal := []JobStatus{StatusFinished, StatusRejected, StatusLostContact}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for s := range allStatuses {
		isTerminal := s == StatusFinished || s == StatusRejected || s == StatusLostContact
		if s.Terminal() != isTerminal {
			t.Errorf("%s: Terminal() = %v", s, s.Terminal())
		}
	}
}

func TestJob_AssignedTo(t *testing.T) {
	job := &Job{AssignedOperator: "op-1", AssignedReviewer: "rev-1"}

	if got, ok := job.AssignedTo(RoleOperator); !ok || got != "op-1" {
		t.Errorf("operator assignment: got %q, ok=%v", got, ok)
	}
	if got, ok := job.AssignedTo(RoleLawyer); !ok || got != "" {
		t.Errorf("lawyer assignment: got %q, ok=%v", got, ok)
	}
	if _, ok := job.AssignedTo(RoleAdmin); ok {
		t.Error("admins must not have an assignment field")
	}
}
