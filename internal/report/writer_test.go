package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

// createTestSummary creates a summary with two crawled domains.
func createTestSummary() *model.RunSummary {
	summary := model.NewRunSummary("8f14e45f-ceea-467a-9575-6f1e5d3a0b21")

	a := model.NewDomainStats("a.test")
	a.Pages = 3
	a.Resources = 2
	a.Bytes = 2048
	a.Discovered = []string{"b-petro.test"}
	a.FinishedAt = a.StartedAt.Add(time.Second)

	b := model.NewDomainStats("b-petro.test")
	b.Pages = 1
	b.Failures = 1
	b.Bytes = 512
	b.FinishedAt = b.StartedAt.Add(time.Second)

	summary.Add(b)
	summary.Add(a)
	summary.FinishedAt = summary.StartedAt.Add(2 * time.Second)
	return summary
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes domains and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{
			"DOMAINCRAWL SUMMARY",
			"[+] a.test",
			"[!] b-petro.test",
			"pages 3, resources 2, failures 0, saved 2.0 kB, discovered 1",
			"Pages:      4",
			"Failures:   1",
			"Saved:      2.6 kB",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Index(output, "a.test") > strings.Index(output, "b-petro.test") {
			t.Error("expected domains sorted by name")
		}
		if strings.Contains(output, "PENDING") {
			t.Error("expected no pending section for a finished run")
		}
	})

	t.Run("verbose lists discovered domains", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "-> b-petro.test") {
			t.Errorf("expected discovered domain listed\n%s", buf.String())
		}
	})

	t.Run("lists pending after interruption", func(t *testing.T) {
		t.Parallel()

		summary := createTestSummary()
		summary.Pending = []string{"c-tank.test"}

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "PENDING") || !strings.Contains(buf.String(), "c-tank.test") {
			t.Errorf("expected pending section\n%s", buf.String())
		}
	})

	t.Run("empty run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.NewRunSummary("")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No domains crawled") {
			t.Errorf("expected empty marker\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown summary writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# domaincrawl run",
			"## Domains",
			"`a.test`",
			"`b-petro.test`",
			"## Discovered domains",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		idx := strings.Index(output, "## Discovered domains")
		if idx < 0 {
			t.Fatalf("missing discovered section\n%s", output)
		}
		section := output[idx:]
		if !strings.Contains(section, "b-petro.test") {
			t.Errorf("expected discovered domain listed\n%s", output)
		}
	})

	t.Run("warns about pending domains", func(t *testing.T) {
		t.Parallel()

		summary := createTestSummary()
		summary.Pending = []string{"c-tank.test"}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!WARNING]") {
			t.Errorf("expected warning alert\n%s", output)
		}
		if !strings.Contains(output, "## Pending") {
			t.Errorf("expected pending section\n%s", output)
		}
	})
}

// TestJSONWriter tests the JSON summary writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		RunID   string `json:"run_id"`
		Domains []struct {
			Domain string `json:"domain"`
		} `json:"domains"`
		Totals struct {
			Pages int `json:"pages"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.RunID == "" {
		t.Error("expected run id")
	}
	if len(decoded.Domains) != 2 || decoded.Domains[0].Domain != "a.test" {
		t.Errorf("unexpected domains: %+v", decoded.Domains)
	}
	if decoded.Totals.Pages != 4 {
		t.Errorf("expected 4 total pages, got %d", decoded.Totals.Pages)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

type failingWriter struct{}

func (failingWriter) Write(*model.RunSummary) (int, error) {
	return 0, errors.New("disk full")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var text, md bytes.Buffer
		w := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md))
		n, err := w.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || md.Len() == 0 {
			t.Error("expected both outputs to be written")
		}
		if n < text.Len() {
			t.Errorf("expected total bytes >= %d, got %d", text.Len(), n)
		}
	})

	t.Run("stops at first error", func(t *testing.T) {
		t.Parallel()

		var text bytes.Buffer
		w := NewMultiWriter(failingWriter{}, NewSimpleWriter(&text))
		if _, err := w.Write(createTestSummary()); err == nil {
			t.Fatal("expected error")
		}
		if text.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}
