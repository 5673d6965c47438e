// Package report renders the summary of a crawl run.
//
// Writers are available for three formats:
//   - SimpleWriter: plain text for the terminal (the default)
//   - MarkdownWriter: Markdown tables, for sharing or archiving a run
//   - JSONWriter: the raw summary, for tooling
//
// All writers take a *model.RunSummary and are interchangeable through the
// Writer interface.
package report
