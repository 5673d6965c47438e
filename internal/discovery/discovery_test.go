package discovery

import (
	"testing"

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

// TestKeywordSet tests keyword normalization and matching.
func TestKeywordSet(t *testing.T) {
	t.Parallel()

	t.Run("normalizes and de-duplicates", func(t *testing.T) {
		t.Parallel()

		set := NewKeywordSet("test", " Fuel ", "fuel", "", "PETRO")
		got := set.Keywords()
		if len(got) != 2 || got[0] != "fuel" || got[1] != "petro" {
			t.Errorf("unexpected keywords: %v", got)
		}
		if set.Name() != "test" {
			t.Errorf("expected name 'test', got %q", set.Name())
		}
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		t.Parallel()

		set := NewKeywordSet("test", DefaultKeywords...)
		kw, ok := set.Match("www.GuardianFuelTech.com")
		if !ok || kw != "fuel" {
			t.Errorf("expected match on 'fuel', got %q, %v", kw, ok)
		}
	})

	t.Run("empty set matches nothing", func(t *testing.T) {
		t.Parallel()

		set := NewKeywordSet("empty")
		if _, ok := set.Match("anything.com"); ok {
			t.Error("expected no match")
		}
	})
}

// TestExtensionSet tests resource suffix detection.
func TestExtensionSet(t *testing.T) {
	t.Parallel()

	set := NewExtensionSet("resources", "pdf", ".JPG", ".css")

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "pdf without dot in config", in: "https://a.test/doc.pdf", want: true},
		{name: "upper-case url", in: "https://a.test/IMG.JPG", want: true},
		{name: "stylesheet", in: "https://a.test/site.css", want: true},
		{name: "query string hides suffix", in: "https://a.test/doc.pdf?v=1", want: false},
		{name: "plain page", in: "https://a.test/about", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := set.HasSuffix(tt.in); got != tt.want {
				t.Errorf("HasSuffix(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestFilterAdmit tests the domain admission rule.
func TestFilterAdmit(t *testing.T) {
	t.Parallel()

	filter := NewFilter(NewKeywordSet("default", DefaultKeywords...))
	known := map[string]bool{
		"known-petro.com": true,
	}
	reg := KnownFunc(func(d string) bool { return known[d] })

	tests := []struct {
		name   string
		domain string
		want   bool
	}{
		{name: "keyword match is admitted", domain: "example-fuelsupply.com", want: true},
		{name: "no keyword is rejected", domain: "example-widgets.com", want: false},
		{name: "known domain is rejected", domain: "known-petro.com", want: false},
		{name: "known domain in other case is rejected", domain: "KNOWN-PETRO.com", want: false},
		{name: "empty name is rejected", domain: "", want: false},
		{name: "keyword inside word is admitted", domain: "engineering.example", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := filter.Admit(tt.domain, reg); got != tt.want {
				t.Errorf("Admit(%q) = %v, want %v", tt.domain, got, tt.want)
			}
		})
	}

	t.Run("nil registry only checks keywords", func(t *testing.T) {
		t.Parallel()
		if !filter.Admit("tankco.test", nil) {
			t.Error("expected admission with nil registry")
		}
	})
}

// TestClassifier tests link classification.
func TestClassifier(t *testing.T) {
	t.Parallel()

	c := NewClassifier("a.test", NewExtensionSet("resources", DefaultResourceExtensions...))

	tests := []struct {
		name     string
		in       string
		wantKind model.LinkKind
		wantURL  string
	}{
		{name: "same-domain page", in: "https://a.test/about", wantKind: model.LinkPage, wantURL: "https://a.test/about"},
		{name: "pdf is resource", in: "https://a.test/files/spec.pdf", wantKind: model.LinkResource, wantURL: "https://a.test/files/spec.pdf"},
		{name: "fragment is stripped", in: "https://a.test/about#team", wantKind: model.LinkPage, wantURL: "https://a.test/about"},
		{name: "other host is external", in: "https://b-petro.test/", wantKind: model.LinkExternal, wantURL: "https://b-petro.test/"},
		{name: "subdomain is external", in: "https://www.a.test/", wantKind: model.LinkExternal, wantURL: "https://www.a.test/"},
		{name: "mailto is ignored", in: "mailto:info@a.test", wantKind: model.LinkIgnored},
		{name: "relative is ignored", in: "/about", wantKind: model.LinkIgnored},
		{name: "host compared case-insensitively", in: "https://A.TEST/x", wantKind: model.LinkPage, wantURL: "https://A.TEST/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Classify(tt.in)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tt.in, got.Kind, tt.wantKind)
			}
			if tt.wantURL != "" && got.URL != tt.wantURL {
				t.Errorf("Classify(%q).URL = %q, want %q", tt.in, got.URL, tt.wantURL)
			}
		})
	}
}
