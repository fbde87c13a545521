package docai

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// maxTextPages bounds raw-text extraction; bank statements and passports
// never carry relevant data past the first few pages.
const maxTextPages = 5

// PDFTextReader pulls raw text out of uploaded PDFs with mupdf. The text
// feeds both the extraction prompt and the merger's raw-text fallback.
type PDFTextReader struct {
	logger *zap.Logger
}

// NewPDFTextReader creates a new PDFTextReader.
func NewPDFTextReader(logger *zap.Logger) *PDFTextReader {
	return &PDFTextReader{logger: logger}
}

// ReadText extracts plain text from the PDF at path.
func (r *PDFTextReader) ReadText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount > maxTextPages {
		pageCount = maxTextPages
	}

	var b strings.Builder
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			r.logger.Warn("failed to extract page text",
				zap.String("path", path),
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}

	return strings.TrimSpace(b.String()), nil
}
