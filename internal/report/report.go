// Package report renders failure statistics for people.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

// Format selects the output representation.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Report is a snapshot of the failure projection.
type Report struct {
	Title     string
	Since     time.Time // zero means all time
	Events    int
	PageViews int
	Top       []eventstore.Count
}

// FromProjection takes a snapshot of the n most frequent failures.
func FromProjection(p *eventstore.FailureProjection, n int, since time.Time) Report {
	events, pageViews := p.Totals()
	return Report{
		Title:     "Form validation failures",
		Since:     since,
		Events:    events,
		PageViews: pageViews,
		Top:       p.Top(n),
	}
}

// Render writes r to w in the given format.
func Render(w io.Writer, r Report, format Format) error {
	switch format {
	case FormatText, "":
		return renderText(w, r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		return renderHTML(w, r)
	default:
		return errors.ValidationError(fmt.Sprintf("unknown report format %q", format)).
			WithContext("format", string(format)).
			Build()
	}
}

func (r Report) scope() string {
	if r.Since.IsZero() {
		return "all time"
	}
	return "since " + r.Since.UTC().Format(time.RFC3339)
}

func renderText(w io.Writer, r Report) error {
	fmt.Fprintf(w, "%s (%s): %d events across %d page views\n", r.Title, r.scope(), r.Events, r.PageViews)
	if len(r.Top) == 0 {
		_, err := fmt.Fprintln(w, "no failures recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOUNT\tCATEGORY\tACTION\tLABEL")
	for i, c := range r.Top {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", i+1, c.Count, c.Category, c.Action, c.Label)
	}
	return tw.Flush()
}

// Markdown renders the report as a Markdown document with a table.
func Markdown(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "%d events across %d page views, %s.\n\n", r.Events, r.PageViews, r.scope())
	if len(r.Top) == 0 {
		b.WriteString("No failures recorded.\n")
		return b.String()
	}
	b.WriteString("| Rank | Count | Category | Action | Label |\n")
	b.WriteString("|---:|---:|---|---|---|\n")
	for i, c := range r.Top {
		fmt.Fprintf(&b, "| %d | %d | %s | %s | %s |\n", i+1, c.Count, cell(c.Category), cell(c.Action), cell(c.Label))
	}
	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderHTML(w io.Writer, r Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &buf); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to render report").Build()
	}
	_, err := buf.WriteTo(w)
	return err
}
