package report

import (
	"encoding/json"
	"io"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

// JSONWriter outputs the summary as JSON.
type JSONWriter struct {
	baseWriter

	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonSummary adds the computed totals to the serialized summary.
type jsonSummary struct {
	*model.RunSummary

	Totals model.DomainStats `json:"totals"`
}

// Write outputs the summary followed by a newline.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	v := jsonSummary{RunSummary: summary, Totals: summary.Totals()}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
