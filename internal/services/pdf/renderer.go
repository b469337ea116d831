package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const (
	lineHeight     = 5.0
	tableFontSize  = 8.0
	tableLineH     = 4.0
	maxCellLines   = 6
	minColumnWidth = 14.0
)

// reportRenderer walks a goldmark AST and draws it onto an fpdf document
type reportRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	translate func(string) string
	size      float64
	bold      bool
	italic    bool

	// listCounters holds the next ordinal per open list; zero marks a bullet list
	listCounters []int
}

func (r *reportRenderer) render(node ast.Node) error {
	if err := ast.Walk(node, r.walk); err != nil {
		return err
	}
	return r.pdf.Error()
}

func (r *reportRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(bodyFont, style, r.size)
}

func (r *reportRenderer) write(s string) {
	r.pdf.Write(lineHeight, r.translate(s))
}

func (r *reportRenderer) contentWidth() float64 {
	pageWidth, _ := r.pdf.GetPageSize()
	left, _, right, _ := r.pdf.GetMargins()
	return pageWidth - left - right
}

func (r *reportRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering && len(r.listCounters) == 0 {
			r.pdf.Ln(lineHeight + 2)
		}
	case *ast.TextBlock:
		// Tight list items hold their text in a TextBlock
	case *ast.Text:
		if entering {
			r.write(string(node.Segment.Value(r.source)))
			if node.SoftLineBreak() {
				r.write(" ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(lineHeight)
			}
		}
	case *ast.Emphasis:
		if node.Level >= 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", r.size)
			r.write(string(node.Text(r.source)))
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			r.codeBlock(n)
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		r.list(node, entering)
	case *ast.ListItem:
		if entering {
			r.listItem()
		}
	case *ast.ThematicBreak:
		if entering {
			left, _, _, _ := r.pdf.GetMargins()
			r.pdf.Ln(2)
			r.pdf.Line(left, r.pdf.GetY(), left+r.contentWidth(), r.pdf.GetY())
			r.pdf.Ln(3)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *reportRenderer) heading(n *ast.Heading, entering bool) {
	if !entering {
		r.pdf.Ln(lineHeight + 3)
		r.updateFont()
		return
	}

	size := 11.0
	switch n.Level {
	case 1:
		size = 16
	case 2:
		size = 13
	case 3:
		size = 11.5
	}
	r.pdf.Ln(3)
	r.pdf.SetFont(bodyFont, "B", size)
}

func (r *reportRenderer) codeBlock(n ast.Node) {
	lines := n.Lines()
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		r.pdf.MultiCell(0, lineHeight, r.translate(string(segment.Value(r.source))), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *reportRenderer) list(n *ast.List, entering bool) {
	if entering {
		start := 0
		if n.IsOrdered() {
			start = n.Start
			if start == 0 {
				start = 1
			}
		}
		r.listCounters = append(r.listCounters, start)
		return
	}

	r.listCounters = r.listCounters[:len(r.listCounters)-1]
	if len(r.listCounters) == 0 {
		r.pdf.Ln(lineHeight + 2)
	}
}

func (r *reportRenderer) listItem() {
	depth := len(r.listCounters)
	if depth == 0 {
		return
	}

	left, _, _, _ := r.pdf.GetMargins()
	r.pdf.Ln(lineHeight)
	r.pdf.SetX(left + float64(depth)*5)

	marker := "- "
	if ordinal := r.listCounters[depth-1]; ordinal > 0 {
		marker = fmt.Sprintf("%d. ", ordinal)
		r.listCounters[depth-1]++
	}
	r.write(marker)
}

func (r *reportRenderer) table(n *extast.Table) {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			rows = append(rows, r.cells(row))
		case *extast.TableRow:
			rows = append(rows, r.cells(row))
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	columns := len(rows[0])
	widths := r.columnWidths(rows, columns)

	r.pdf.Ln(2)
	left, _, _, _ := r.pdf.GetMargins()
	_, pageHeight := r.pdf.GetPageSize()
	_, _, _, bottom := r.pdf.GetMargins()

	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(bodyFont, style, tableFontSize)

		cellLines := make([][]string, columns)
		rowLines := 1
		for j := 0; j < columns; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			lines := r.wrap(cell, widths[j]-2)
			if len(lines) > maxCellLines {
				lines = lines[:maxCellLines]
			}
			cellLines[j] = lines
			if len(lines) > rowLines {
				rowLines = len(lines)
			}
		}

		rowHeight := float64(rowLines)*tableLineH + 2
		if r.pdf.GetY()+rowHeight > pageHeight-bottom {
			r.pdf.AddPage()
			r.pdf.SetFont(bodyFont, style, tableFontSize)
		}
		y := r.pdf.GetY()

		x := left
		for j := 0; j < columns; j++ {
			if i == 0 {
				r.pdf.SetFillColor(230, 230, 230)
				r.pdf.Rect(x, y, widths[j], rowHeight, "FD")
			} else {
				r.pdf.Rect(x, y, widths[j], rowHeight, "D")
			}
			for k, line := range cellLines[j] {
				r.pdf.SetXY(x+1, y+1+float64(k)*tableLineH)
				r.pdf.CellFormat(widths[j]-2, tableLineH, line, "", 0, "L", false, 0, "")
			}
			x += widths[j]
		}
		r.pdf.SetXY(left, y+rowHeight)
	}

	r.pdf.SetFillColor(255, 255, 255)
	r.pdf.Ln(3)
	r.updateFont()
}

func (r *reportRenderer) cells(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			cells = append(cells, r.translate(string(cell.Text(r.source))))
		}
	}
	return cells
}

// columnWidths sizes columns by their widest cell, then scales to the page width
func (r *reportRenderer) columnWidths(rows [][]string, columns int) []float64 {
	available := r.contentWidth()
	widths := make([]float64, columns)

	r.pdf.SetFont(bodyFont, "B", tableFontSize)
	for _, row := range rows {
		for j := 0; j < columns && j < len(row); j++ {
			if w := r.pdf.GetStringWidth(row[j]) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	total := 0.0
	for j := range widths {
		if widths[j] < minColumnWidth {
			widths[j] = minColumnWidth
		}
		if widths[j] > available/2 {
			widths[j] = available / 2
		}
		total += widths[j]
	}

	scale := available / total
	for j := range widths {
		widths[j] *= scale
	}
	return widths
}

// wrap breaks s into lines that fit width at the current font
func (r *reportRenderer) wrap(s string, width float64) []string {
	words := wordsOf(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if r.pdf.GetStringWidth(current+" "+word) <= width {
			current += " " + word
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
