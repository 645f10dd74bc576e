package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"echoreport/internal/form"
	"echoreport/internal/model"
	"echoreport/internal/repository"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Reports"

// ReportService reads, prints and exports submitted reports
type ReportService struct {
	reports   repository.ReportRepo
	catalogue *form.Catalogue
	options
}

// NewReportService creates a new report service
func NewReportService(reports repository.ReportRepo, catalogue *form.Catalogue, opts ...Option) *ReportService {
	return &ReportService{
		reports:   reports,
		catalogue: catalogue,
		options:   buildOptions(opts),
	}
}

// List returns report summaries newest first.
func (s *ReportService) List(ctx context.Context, limit int) ([]model.ReportSummary, error) {
	reports, err := s.reports.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]model.ReportSummary, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.Summary())
	}
	return out, nil
}

// Get returns one report. A missing report yields repository.ErrNotFound.
func (s *ReportService) Get(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	return report, nil
}

// Delete removes a report.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "report deleted", "report_id", id)
	return nil
}

// PrintMarkdown renders the printable summary of a report.
func (s *ReportService) PrintMarkdown(report *model.Report) string {
	field := func(name, fallback string) string {
		if v := strings.TrimSpace(report.FormData[name]); v != "" {
			return v
		}
		return fallback
	}

	var b strings.Builder
	b.WriteString("# Echocardiography Report\n\n")
	b.WriteString("## Patient Information\n\n")
	fmt.Fprintf(&b, "- **Patient Name:** %s\n", field("Name", "N/A"))
	fmt.Fprintf(&b, "- **Clinic ID:** %s\n", field("ID", "N/A"))
	fmt.Fprintf(&b, "- **Date of Birth:** %s\n", field("DOB", "N/A"))
	fmt.Fprintf(&b, "- **Age:** %s\n\n", field("Age", "N/A"))
	b.WriteString("## Key Findings\n\n")
	fmt.Fprintf(&b, "**LV Systolic Function:**\n\n%s\n\n", field("Systolic Comment", "Not assessed."))
	fmt.Fprintf(&b, "**LV Diastolic Function:**\n\n%s\n\n", field("Diastolic Comment", "Not assessed."))
	b.WriteString("## Conclusion\n\n")
	fmt.Fprintf(&b, "%s\n\n", field("Conclusion", "No conclusion provided."))
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "Report generated on: %s\n", s.now().Format("02/01/2006"))
	return b.String()
}

// PrintHTML renders the printable summary of a stored report as HTML.
func (s *ReportService) PrintHTML(ctx context.Context, id string) ([]byte, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Echocardiography Report",
	})
	// Field values are clinician input, so they are escaped before rendering.
	md := []byte(s.PrintMarkdown(escapedReport(report)))
	return markdown.ToHTML(md, p, renderer), nil
}

// ExportXLSX writes every report as one spreadsheet row: the indexed columns
// followed by each catalogue field in declaration order.
func (s *ReportService) ExportXLSX(ctx context.Context, w io.Writer) (int, error) {
	reports, err := s.reports.List(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("list reports: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}

	headers := []string{"id", "created_at", "created_by"}
	for _, c := range s.catalogue.Mapper.Columns() {
		headers = append(headers, c.Name)
	}
	fields := s.catalogue.Schema.Fields()
	for _, fd := range fields {
		headers = append(headers, fd.Name)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return 0, err
		}
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, err
	}

	for r, report := range reports {
		row := []string{report.ID, report.CreatedAt.Format("2006-01-02 15:04:05"), report.CreatedBy}
		for _, c := range s.catalogue.Mapper.Columns() {
			row = append(row, reportColumn(report, c))
		}
		for _, fd := range fields {
			row = append(row, report.FormData[fd.Name])
		}
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return 0, err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.InfoContext(ctx, "reports exported", "count", len(reports))
	return len(reports), nil
}

// reportColumn reads a projected column back from a stored report. Columns
// the model does not index fall back to the snapshot.
func reportColumn(r *model.Report, c form.Column) string {
	switch c.Name {
	case model.ColPatientName:
		return r.PatientName
	case model.ColClinicID:
		return r.ClinicID
	case model.ColDOB:
		return r.DOB
	case model.ColAge:
		return r.Age
	case model.ColIndication:
		return r.Indication
	case model.ColDateOfIntervention:
		return r.DateOfIntervention
	case model.ColPreOpSpecify:
		return r.PreOpSpecify
	}
	return r.FormData[c.Field]
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "#", `\#`, "&", "&amp;",
)

func escapedReport(r *model.Report) *model.Report {
	out := *r
	out.FormData = make(map[string]string, len(r.FormData))
	for k, v := range r.FormData {
		out.FormData[k] = markdownEscaper.Replace(v)
	}
	return &out
}
