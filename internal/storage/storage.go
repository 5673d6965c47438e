package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// IndexFile is the file name used for a URL with an empty or root path.
	IndexFile = "index.html"

	// HTMLExtension is appended to paths that carry no extension.
	HTMLExtension = ".html"

	// EndpointsFile lists every visited URL of a domain, one per line.
	EndpointsFile = "endpoints.txt"

	dirPerm  = 0750
	filePerm = 0600
)

// ErrEmptyDomain is returned when a path is requested for an empty domain.
var ErrEmptyDomain = errors.New("empty domain")

// Store writes crawled content below a root directory.
type Store struct {
	root string
}

// New returns a Store rooted at dir. The directory is created lazily.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the output root directory.
func (s *Store) Root() string { return s.root }

// DomainDir returns the directory holding the content of domain.
func (s *Store) DomainDir(domain string) string {
	return filepath.Join(s.root, domain)
}

// Path returns the file path for rawURL crawled as part of domain.
// The result depends only on its arguments.
func (s *Store) Path(domain, rawURL string) (string, error) {
	if domain == "" {
		return "", ErrEmptyDomain
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	return filepath.Join(s.DomainDir(domain), FileName(u)), nil
}

// FileName flattens the URL path into a single file name: the escaped path
// with surrounding slashes trimmed and inner slashes replaced by underscores.
// Empty and root paths map to IndexFile; names without an extension get
// HTMLExtension. Leading dots do not start an extension, so ".well-known"
// is extensionless.
func FileName(u *url.URL) string {
	p := strings.Trim(u.EscapedPath(), "/")
	if p == "" || p == "." || p == ".." {
		return IndexFile
	}
	name := strings.ReplaceAll(p, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if !strings.Contains(strings.TrimLeft(name, "."), ".") {
		name += HTMLExtension
	}
	return name
}

// Save writes data to path, creating parent directories and replacing any
// existing file.
func (s *Store) Save(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// SaveStream copies r into path and returns the number of bytes written.
// A partially written file is removed on error.
func (s *Store) SaveStream(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm) //nolint:gosec // path is derived from the output root
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return n, fmt.Errorf("write %s: %w", path, copyErr)
		}
		return n, fmt.Errorf("close %s: %w", path, closeErr)
	}
	return n, nil
}

// WriteEndpoints writes the visited URLs of domain to its endpoints file.
func (s *Store) WriteEndpoints(domain string, endpoints []string) (string, error) {
	if domain == "" {
		return "", ErrEmptyDomain
	}
	var sb strings.Builder
	for _, e := range endpoints {
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	path := filepath.Join(s.DomainDir(domain), EndpointsFile)
	return path, s.Save(path, []byte(sb.String()))
}
