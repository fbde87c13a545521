package formfill

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

// Template sources, reported so callers can see how far down the chain the
// locator had to go.
const (
	SourceLocal     = "local"
	SourceRemote    = "remote"
	SourceConverted = "converted"
	SourceGenerated = "generated"
)

const maxTemplateBytes = 20 << 20

// LocatorConfig points the locator at its template sources. Any of them may
// be empty; empty sources are skipped.
type LocatorConfig struct {
	LocalPath     string
	RemoteURL     string
	ConverterURL  string
	FormTitle     string
}

// TemplateLocator fetches the government form template through a degrading
// chain: local file, then remote download, then the conversion API, and as a
// last resort a generated blank placeholder so downstream operations always
// have bytes to work with.
type TemplateLocator struct {
	cfg    LocatorConfig
	client *http.Client
	logger *zap.Logger
}

// NewTemplateLocator creates a new TemplateLocator.
func NewTemplateLocator(cfg LocatorConfig, client *http.Client, logger *zap.Logger) *TemplateLocator {
	if client == nil {
		client = http.DefaultClient
	}
	return &TemplateLocator{cfg: cfg, client: client, logger: logger}
}

// Locate returns the form template bytes and the source they came from. It
// only errors when even the generated fallback cannot be produced.
func (l *TemplateLocator) Locate(ctx context.Context) ([]byte, string, error) {
	if l.cfg.LocalPath != "" {
		data, err := os.ReadFile(l.cfg.LocalPath)
		if err == nil && len(data) > 0 {
			return data, SourceLocal, nil
		}
		l.logger.Warn("local form template unavailable",
			zap.String("path", l.cfg.LocalPath),
			zap.Error(err))
	}

	if l.cfg.RemoteURL != "" {
		data, err := l.download(ctx, l.cfg.RemoteURL)
		if err == nil {
			return data, SourceRemote, nil
		}
		l.logger.Warn("remote form template unavailable",
			zap.String("url", l.cfg.RemoteURL),
			zap.Error(err))
	}

	if l.cfg.ConverterURL != "" && l.cfg.RemoteURL != "" {
		data, err := l.convert(ctx)
		if err == nil {
			return data, SourceConverted, nil
		}
		l.logger.Warn("form conversion api unavailable", zap.Error(err))
	}

	data, err := l.generateBlank()
	if err != nil {
		return nil, "", fmt.Errorf("locate form template: %w", err)
	}
	l.logger.Warn("using generated blank form template")
	return data, SourceGenerated, nil
}

func (l *TemplateLocator) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return data, nil
}

// convert asks the conversion API to re-render the remote source as PDF.
func (l *TemplateLocator) convert(ctx context.Context) ([]byte, error) {
	endpoint := fmt.Sprintf("%s?source=%s", l.cfg.ConverterURL, url.QueryEscape(l.cfg.RemoteURL))
	return l.download(ctx, endpoint)
}

// generateBlank produces a minimal placeholder form so the fill-guide path
// still has a document to hand the user.
func (l *TemplateLocator) generateBlank() ([]byte, error) {
	title := l.cfg.FormTitle
	if title == "" {
		title = "Application Form"
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(25, 25, 25)
	doc.AddPage()
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(160, 10, title, "", 1, "C", false, 0, "")
	doc.Ln(6)
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(160, 6,
		"The official form template could not be retrieved. "+
			"Please download the current form from the issuing agency and "+
			"complete it using the attached fill guide.", "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
