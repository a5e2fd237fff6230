package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type leadOverdueEmailData struct {
	baseEmailData
	OverdueLead
}

func renderLeadOverdue(lead OverdueLead) (string, error) {
	return renderEmailTemplate("lead_overdue.html", leadOverdueEmailData{
		baseEmailData: baseEmailData{
			Title:      "Follow-up vencido",
			Heading:    "Um lead precisa do seu contato",
			Subheading: lead.LeadName,
			CTALabel:   "Abrir lead",
			CTAURL:     lead.LeadURL,
		},
		OverdueLead: lead,
	})
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
