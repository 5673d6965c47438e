package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs a human-readable text summary.
type SimpleWriter struct {
	baseWriter

	// verbose lists the discovered domains under each crawled domain.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables listing discovered domains per crawled domain.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeDomains(&sb, summary)
	w.writeTotals(&sb, summary)
	w.writePending(&sb, summary)

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("DOMAINCRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	if summary.RunID != "" {
		fmt.Fprintf(sb, "Run:       %s\n", summary.RunID)
	}
	fmt.Fprintf(sb, "Started:   %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if d := summary.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:  %s\n", d.Round(time.Millisecond))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDomains(sb *strings.Builder, summary *model.RunSummary) {
	section(sb, "DOMAINS")

	if len(summary.Domains) == 0 {
		sb.WriteString("  No domains crawled\n\n")
		return
	}

	for _, d := range summary.Domains {
		marker := "+"
		if d.Interrupted {
			marker = "~"
		} else if d.Failures > 0 {
			marker = "!"
		}
		fmt.Fprintf(sb, "  [%s] %s\n", marker, d.Domain)
		fmt.Fprintf(sb, "      pages %d, resources %d, failures %d, saved %s, discovered %d\n",
			d.Pages, d.Resources, d.Failures, humanize.Bytes(uint64(max(d.Bytes, 0))), len(d.Discovered))
		if w.verbose {
			for _, name := range d.Discovered {
				fmt.Fprintf(sb, "      -> %s\n", name)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTotals(sb *strings.Builder, summary *model.RunSummary) {
	section(sb, "TOTAL")

	total := summary.Totals()
	fmt.Fprintf(sb, "  Domains:    %d\n", len(summary.Domains))
	fmt.Fprintf(sb, "  Pages:      %d\n", total.Pages)
	fmt.Fprintf(sb, "  Resources:  %d\n", total.Resources)
	fmt.Fprintf(sb, "  Failures:   %d\n", total.Failures)
	fmt.Fprintf(sb, "  Saved:      %s\n", humanize.Bytes(uint64(max(total.Bytes, 0))))
	fmt.Fprintf(sb, "  Discovered: %d\n", len(total.Discovered))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePending(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.Pending) == 0 {
		return
	}

	section(sb, "PENDING (resume with the next run)")
	for _, name := range summary.Pending {
		fmt.Fprintf(sb, "  %s\n", name)
	}
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
