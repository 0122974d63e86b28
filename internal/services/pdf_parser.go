package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	ExtractText(filePath string) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
}

type pdfParserService struct {
	maxChars int
}

// NewPDFParserService returns a parser that caps extracted text at maxChars
// runes. Zero means no cap.
func NewPDFParserService(maxChars int) PDFParserService {
	return &pdfParserService{maxChars: maxChars}
}

func (p *pdfParserService) ExtractText(filePath string) (*PDFContent, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		// A page that fails to decode is skipped; the rest of the resume is still useful.
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return nil, errors.New("no text content found in PDF")
	}

	if p.maxChars > 0 {
		if runes := []rune(text); len(runes) > p.maxChars {
			text = string(runes[:p.maxChars])
		}
	}

	return &PDFContent{Text: text, PageCount: totalPage}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
