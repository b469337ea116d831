package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	bodyFont     = "Arial"
	bodyFontSize = 10.0
	pageMargin   = 15.0
)

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// ConvertMarkdownToPDF renders report markdown as an A4 document and
// validates the result before returning it. The title is written to the
// document properties and the running page header.
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Converting markdown to PDF")

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin+5, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.SetTitle(title, true)
	doc.SetCreator("equitas", true)

	// Core fonts are cp1252; narrative text routinely carries curly quotes and dashes
	translate := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetHeaderFunc(func() {
		doc.SetFont(bodyFont, "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 5, translate(title), "", 1, "R", false, 0, "")
		doc.SetTextColor(0, 0, 0)
		doc.Ln(2)
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-12)
		doc.SetFont(bodyFont, "I", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 5, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	})

	doc.AddPage()
	doc.SetFont(bodyFont, "", bodyFontSize)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	)

	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	renderer := &reportRenderer{
		pdf:       doc,
		source:    source,
		translate: translate,
		size:      bodyFontSize,
	}

	if err := renderer.render(root); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render markdown")
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	if err := api.Validate(bytes.NewReader(buf.Bytes()), validationConfig()); err != nil {
		s.logger.Error().Err(err).Msg("Generated PDF failed validation")
		return nil, fmt.Errorf("generated PDF is invalid: %w", err)
	}

	s.logger.Debug().
		Int("pdf_size", buf.Len()).
		Int("pages", doc.PageCount()).
		Msg("PDF generated successfully")

	return buf.Bytes(), nil
}

// PageCount returns the number of pages in a PDF document
func (s *Service) PageCount(pdf []byte) (int, error) {
	if len(pdf) == 0 {
		return 0, fmt.Errorf("empty PDF document")
	}

	count, err := api.PageCount(bytes.NewReader(pdf), validationConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF page count: %w", err)
	}
	return count, nil
}

func validationConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// wordsOf splits text on runs of whitespace
func wordsOf(s string) []string {
	return strings.Fields(s)
}
