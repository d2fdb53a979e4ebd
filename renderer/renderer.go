// Package renderer renders irtax reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/irtax"
	"github.com/etnz/irtax/date"
)

//go:embed templates/*.md
var files embed.FS

var templates, _ = fs.Sub(files, "templates")

// ReportMarkdown renders a tax report.
func ReportMarkdown(r *irtax.Report) string {
	partials := map[string]string{
		"report_summary":     "report_summary.md",
		"report_cgt":         "report_cgt.md",
		"report_exit_tax":    "report_exit_tax.md",
		"report_income":      "report_income.md",
		"report_form_fields": "report_form_fields.md",
		"report_disposals":   "report_disposals.md",
		"pending":            "pending.md",
		"upcoming":           "upcoming.md",
		"issues":             "issues.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// DeemedMarkdown renders the deemed disposal schedule.
func DeemedMarkdown(s *irtax.DeemedSchedule) string {
	partials := map[string]string{
		"pending":  "pending.md",
		"upcoming": "upcoming.md",
		"issues":   "issues.md",
	}
	return renderTemplate("deemed", "deemed.md", partials, s)
}

// WhatIfMarkdown renders the outcome of a hypothetical sale.
func WhatIfMarkdown(r *irtax.WhatIfResult) string {
	return renderTemplate("whatif", "whatif.md", nil, r)
}

// HoldingsMarkdown renders the open lots of every asset.
func HoldingsMarkdown(on date.Date, holdings []irtax.Holding) string {
	data := struct {
		On       date.Date
		Holdings []irtax.Holding
	}{on, holdings}
	return renderTemplate("holdings", "holdings.md", nil, data)
}

// funcs are the helpers available to every template.
var funcs = template.FuncMap{
	"regime":   regimeName,
	"rules":    rules,
	"issue":    Issue,
	"disposal": Disposal,
	"deadline": deadline,
	"nonzero":  nonzero,
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
