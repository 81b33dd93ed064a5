// Package render produces the generated documents the workflow attaches to a
// job. Output is HTML, suitable for printing or later PDF conversion.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/brandreg/crm-api/internal/core/domain"
)

const powerOfAttorneyTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Power of Attorney — Case №{{.Sequence}}</title>
<style>
  body { font-family: serif; max-width: 42em; margin: 3em auto; line-height: 1.5; }
  h1 { text-align: center; font-size: 1.4em; }
  .sig { margin-top: 4em; display: flex; justify-content: space-between; }
</style>
</head>
<body>
<h1>POWER OF ATTORNEY</h1>
<p>Case №{{.Sequence}}, issued {{.IssuedAt}}.</p>
<p>
  I, <strong>{{.ClientName}}</strong>{{if .Phone}} (tel. {{.Phone}}){{end}},
  acting as {{.PersonKind}}, hereby authorize the attorney-in-fact to
  represent my interests before the intellectual property office in all
  matters concerning the registration of the trademark
  <strong>{{.BrandName}}</strong>{{if .Classes}} in Nice classes {{.Classes}}{{end}},
  including filing applications, receiving correspondence, paying official
  fees, and obtaining registration certificates.
</p>
<p>This power of attorney is granted without the right of substitution.</p>
<div class="sig">
  <span>Principal: _____________________</span>
  <span>Date: {{.IssuedAt}}</span>
</div>
</body>
</html>
`

// Renderer implements ports.DocumentRenderer with html/template.
type Renderer struct {
	poa *template.Template
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{
		poa: template.Must(template.New("power_of_attorney").Parse(powerOfAttorneyTmpl)),
		now: time.Now,
	}
}

// PowerOfAttorney renders the power-of-attorney document for a job. The job
// must already carry a brand name.
func (r *Renderer) PowerOfAttorney(job *domain.Job) ([]byte, error) {
	if job.BrandName == "" {
		return nil, fmt.Errorf("%w: job has no brand name", domain.ErrValidation)
	}

	kind := "an individual"
	if job.PersonType == domain.PersonLegal {
		kind = "a legal entity"
	}

	classes := make([]string, 0, len(job.Classes))
	for _, c := range job.Classes {
		classes = append(classes, fmt.Sprintf("%d", c))
	}

	data := struct {
		Sequence   int64
		ClientName string
		Phone      string
		PersonKind string
		BrandName  string
		Classes    string
		IssuedAt   string
	}{
		Sequence:   job.Sequence,
		ClientName: strings.TrimSpace(job.Name + " " + job.Surname),
		Phone:      job.Phone,
		PersonKind: kind,
		BrandName:  job.BrandName,
		Classes:    strings.Join(classes, ", "),
		IssuedAt:   r.now().UTC().Format("2 January 2006"),
	}

	var buf bytes.Buffer
	if err := r.poa.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render power of attorney: %w", err)
	}
	return buf.Bytes(), nil
}
