package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PackageInput collects the artifacts bundled into the downloadable zip.
// Nil or empty members are simply omitted from the archive.
type PackageInput struct {
	CombinedPDF []byte
	LetterDocx  []byte
	FormPDF     []byte
	FormFilled  bool
	FillGuide   string
	Workbook    []byte
}

// Packager assembles the application package zip.
type Packager struct {
	logger *zap.Logger
}

// NewPackager creates a new Packager.
func NewPackager(logger *zap.Logger) *Packager {
	return &Packager{logger: logger}
}

// Build writes the package archive. At least one artifact must be present.
func (p *Packager) Build(input PackageInput) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	now := time.Now()
	count := 0

	add := func(name string, content []byte) error {
		if len(content) == 0 {
			return nil
		}
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		count++
		return nil
	}

	if err := add("application_package.pdf", input.CombinedPDF); err != nil {
		return nil, err
	}
	if err := add("cover_letter.docx", input.LetterDocx); err != nil {
		return nil, err
	}

	formName := "immigration_form_filled.pdf"
	if !input.FormFilled {
		formName = "immigration_form_blank.pdf"
	}
	if err := add(formName, input.FormPDF); err != nil {
		return nil, err
	}
	if err := add("form_fill_guide.txt", []byte(input.FillGuide)); err != nil {
		return nil, err
	}
	if err := add("financial_summary.xlsx", input.Workbook); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize package: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("build package: nothing to include")
	}

	p.logger.Info("application package built",
		zap.Int("entries", count),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}
