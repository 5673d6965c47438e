package state

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ScrapedFile is the name of the persisted scraped-domain list.
	ScrapedFile = "scraped_domains.txt"

	// PendingFile is the name of the persisted pending-domain list.
	PendingFile = "pending_domains.txt"
)

// ListFile is a set of names persisted as one name per line, sorted.
type ListFile struct {
	path string
}

// NewListFile returns a ListFile stored at path.
func NewListFile(path string) *ListFile {
	return &ListFile{path: path}
}

// Path returns the file location.
func (f *ListFile) Path() string { return f.path }

// Load reads the set. A missing file is an empty set. Blank lines and
// surrounding whitespace are ignored.
func (f *ListFile) Load() (map[string]bool, error) {
	set := make(map[string]bool)

	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return set, nil
		}
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			set[line] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return set, nil
}

// Save replaces the file with the sorted contents of set. The new content is
// written to a temporary file first and renamed into place.
func (f *ListFile) Save(set map[string]bool) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0750); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.path, err)
	}

	var sb strings.Builder
	for _, name := range sortedKeys(set) {
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
