package report

import (
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

// MarkdownWriter outputs the summary as a Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeDomains(md, summary)
	w.writeDiscovered(md, summary)
	w.writePending(md, summary)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("domaincrawl run")
	md.PlainText("")

	total := summary.Totals()
	rows := [][]string{
		{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if summary.RunID != "" {
		rows = append([][]string{{"Run", "`" + summary.RunID + "`"}}, rows...)
	}
	if d := summary.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	rows = append(rows,
		[]string{"Domains", strconv.Itoa(len(summary.Domains))},
		[]string{"Pages", strconv.Itoa(total.Pages)},
		[]string{"Resources", strconv.Itoa(total.Resources)},
		[]string{"Failures", strconv.Itoa(total.Failures)},
		[]string{"Saved", humanize.Bytes(uint64(max(total.Bytes, 0)))},
		[]string{"Discovered", strconv.Itoa(len(total.Discovered))},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case len(summary.Pending) > 0:
		md.Warningf("Run interrupted with %d domain(s) still pending.", len(summary.Pending))
		md.PlainText("")
	case total.Failures > 0:
		md.Importantf("%d URL(s) could not be fetched or saved.", total.Failures)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Domains")
	md.PlainText("")

	if len(summary.Domains) == 0 {
		md.PlainText("No domains crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Domains))
	for _, d := range summary.Domains {
		name := "`" + d.Domain + "`"
		if d.Interrupted {
			name += " (interrupted)"
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(d.Pages),
			strconv.Itoa(d.Resources),
			strconv.Itoa(d.Failures),
			humanize.Bytes(uint64(max(d.Bytes, 0))),
			strconv.Itoa(len(d.Discovered)),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Pages", "Resources", "Failures", "Saved", "Discovered"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeDiscovered(md *markdown.Markdown, summary *model.RunSummary) {
	discovered := summary.Totals().Discovered
	if len(discovered) == 0 {
		return
	}

	md.H2("Discovered domains")
	md.PlainText("")
	md.BulletList(discovered...)
	md.PlainText("")
}

func (w *MarkdownWriter) writePending(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Pending) == 0 {
		return
	}

	md.H2("Pending")
	md.PlainText("")
	md.BulletList(summary.Pending...)
	md.PlainText("")
}
