// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"plan-advisor/core/catalog"
	"plan-advisor/core/quote"
	"plan-advisor/core/region"
	"plan-advisor/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI summary
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatYAML is machine-readable YAML
	FormatYAML Format = "yaml"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// ParseFormat parses a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCLI, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case "", "table":
		return FormatCLI, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything a formatter renders
type Report struct {
	// Result is the plan calculation
	Result *types.PlanResult `json:"result" yaml:"result"`

	// Quote is the line list, with a proposal simulation when one was requested
	Quote *quote.Quote `json:"quote,omitempty" yaml:"quote,omitempty"`

	// Region converts line amounts for regional output
	Region *catalog.Region `json:"-" yaml:"-"`
}

// NewReport builds a report with quote lines
func NewReport(res *types.PlanResult, reg *catalog.Region) *Report {
	return &Report{Result: res, Quote: quote.New(res), Region: reg}
}

// converter returns the regional converter or nil
func (r *Report) converter() *region.Converter {
	if r.Region == nil || r.Result == nil || r.Result.Regional == nil {
		return nil
	}
	return region.NewConverter(r.Region)
}

// Registry holds formatters by format
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry returns a registry with every built-in formatter
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range []Formatter{NewCLIFormatter(), NewJSONFormatter(), NewYAMLFormatter(), NewMarkdownFormatter()} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, bool) {
	f, ok := r.formatters[format]
	return f, ok
}

// Formats lists the registered formats
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Render writes the report in the requested format
func (r *Registry) Render(w io.Writer, format Format, report *Report) error {
	f, ok := r.Get(format)
	if !ok {
		return fmt.Errorf("no formatter for %q", format)
	}
	return f.Render(w, report)
}
