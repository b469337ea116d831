package interfaces

// PDFService renders report markdown as PDF documents
type PDFService interface {
	// ConvertMarkdownToPDF converts markdown content to a validated PDF byte slice
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)

	// PageCount returns the number of pages in a PDF document
	PageCount(pdf []byte) (int, error)
}
