package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brandreg/crm-api/internal/core/domain"
)

func TestRenderer_PowerOfAttorney(t *testing.T) {
	r := NewRenderer()
	r.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	out, err := r.PowerOfAttorney(&domain.Job{
		Sequence:   42,
		Name:       "Ivan",
		Surname:    "Petrov",
		Phone:      "+998901234567",
		PersonType: domain.PersonLegal,
		BrandName:  "Acme & Co",
		Classes:    []int{9, 42},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(out)
	for _, want := range []string{"№42", "Ivan Petrov", "a legal entity", "9, 42", "15 March 2024"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected rendered document to contain %q", want)
		}
	}
	// The brand name must be HTML-escaped.
	if !strings.Contains(html, "Acme &amp; Co") {
		t.Error("expected escaped brand name in output")
	}
}

func TestRenderer_PowerOfAttorney_RequiresBrandName(t *testing.T) {
	r := NewRenderer()
	_, err := r.PowerOfAttorney(&domain.Job{Sequence: 1, Name: "Ivan"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation without brand name, got: %v", err)
	}
}
