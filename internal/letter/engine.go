// Package letter assembles the multi-section legal cover letter from
// numbered text templates and a flat key/value context.
package letter

import (
	"embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Section is one ordered template unit. Order is derived from the numeric
// filename prefix and is a correctness requirement: later sections legally
// depend on earlier ones being established first.
type Section struct {
	Name string
	Body string
}

var placeholderPattern = regexp.MustCompile(`\{\{([a-z0-9_]+)\}\}`)

// Engine renders the ordered template sections against a flat context.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new Engine.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// LoadSections reads every embedded template in filename order.
func (e *Engine) LoadSections() ([]Section, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".tmpl") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		body, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}
		sections = append(sections, Section{
			Name: strings.TrimSuffix(name, ".tmpl"),
			Body: string(body),
		})
	}
	return sections, nil
}

// Render performs single-pass token substitution. A token that is absent or
// empty in the context is left as the literal placeholder so missing data is
// visible to a human reviewer instead of disappearing into plausible prose.
func (e *Engine) Render(body string, context map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(token string) string {
		key := placeholderPattern.FindStringSubmatch(token)[1]
		if value, ok := context[key]; ok && value != "" {
			return value
		}
		return token
	})
}

// Assemble renders every section in order and concatenates them with a
// blank line between each. Callers must run Validate first and must not
// publish the letter when validation reports errors.
func (e *Engine) Assemble(context map[string]string) (string, error) {
	sections, err := e.LoadSections()
	if err != nil {
		return "", err
	}

	rendered := make([]string, 0, len(sections))
	for _, section := range sections {
		rendered = append(rendered, strings.TrimSpace(e.Render(section.Body, context)))
	}

	e.logger.Debug("Letter assembled", zap.Int("sections", len(rendered)))
	return strings.TrimSpace(strings.Join(rendered, "\n\n")), nil
}

// AssembleSections renders every section in order and returns them
// individually, for callers that paginate section by section.
func (e *Engine) AssembleSections(context map[string]string) ([]Section, error) {
	sections, err := e.LoadSections()
	if err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(sections))
	for _, section := range sections {
		out = append(out, Section{
			Name: section.Name,
			Body: strings.TrimSpace(e.Render(section.Body, context)),
		})
	}
	return out, nil
}
