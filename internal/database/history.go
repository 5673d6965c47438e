package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fuelcrawl/domaincrawl/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "history.db"

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores run history in SQLite.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file location.
func (h *HistoryDB) Path() string { return h.dbPath }

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		seeds TEXT NOT NULL,
		workers INTEGER NOT NULL,
		domains INTEGER DEFAULT 0,
		pages INTEGER DEFAULT 0,
		resources INTEGER DEFAULT 0,
		failures INTEGER DEFAULT 0,
		bytes INTEGER DEFAULT 0,
		interrupted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		bytes INTEGER DEFAULT 0,
		saved_path TEXT,
		error TEXT,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
	CREATE INDEX IF NOT EXISTS idx_fetches_domain ON fetches(domain);

	CREATE TABLE IF NOT EXISTS domains (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		pages INTEGER DEFAULT 0,
		resources INTEGER DEFAULT 0,
		failures INTEGER DEFAULT 0,
		bytes INTEGER DEFAULT 0,
		discovered TEXT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		interrupted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_domains_run ON domains(run_id);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Seeds       []string
	Workers     int
	Domains     int
	Pages       int
	Resources   int
	Failures    int
	Bytes       int64
	Interrupted bool
}

// StartRun creates a run with a new UUID and returns its ID.
func (h *HistoryDB) StartRun(ctx context.Context, seeds []string, workers int) (string, error) {
	id := uuid.NewString()
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, seeds, workers) VALUES (?, ?, ?, ?)`,
		id, formatTime(time.Now()), strings.Join(seeds, "\n"), workers,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

// FinishRun stores the totals of summary on its run.
func (h *HistoryDB) FinishRun(ctx context.Context, summary *model.RunSummary) error {
	totals := summary.Totals()
	interrupted := len(summary.Pending) > 0
	for _, d := range summary.Domains {
		interrupted = interrupted || d.Interrupted
	}
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := h.db.ExecContext(ctx, `
	UPDATE runs SET finished_at = ?, domains = ?, pages = ?, resources = ?,
		failures = ?, bytes = ?, interrupted = ?
	WHERE id = ?`,
		formatTime(finished), len(summary.Domains), totals.Pages, totals.Resources,
		totals.Failures, totals.Bytes, boolToInt(interrupted), summary.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, summary.RunID)
	}
	return nil
}

// InsertFetch stores one fetch outcome.
func (h *HistoryDB) InsertFetch(ctx context.Context, runID string, rec *model.FetchRecord) error {
	fetchedAt := rec.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := h.db.ExecContext(ctx, `
	INSERT INTO fetches (run_id, domain, url, kind, status_code, content_type, bytes, saved_path, error, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Domain, rec.URL, rec.Kind.String(), rec.StatusCode, rec.ContentType,
		rec.Bytes, rec.SavedPath, rec.Error, formatTime(fetchedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch: %w", err)
	}
	return nil
}

// InsertDomain stores the stats of a completed domain.
func (h *HistoryDB) InsertDomain(ctx context.Context, runID string, stats *model.DomainStats) error {
	discovered, err := json.Marshal(stats.Discovered)
	if err != nil {
		return fmt.Errorf("failed to serialize discovered domains: %w", err)
	}
	_, err = h.db.ExecContext(ctx, `
	INSERT INTO domains (run_id, domain, pages, resources, failures, bytes, discovered, started_at, finished_at, interrupted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, stats.Domain, stats.Pages, stats.Resources, stats.Failures, stats.Bytes,
		string(discovered), formatTime(stats.StartedAt), formatTime(stats.FinishedAt),
		boolToInt(stats.Interrupted),
	)
	if err != nil {
		return fmt.Errorf("failed to insert domain: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, started_at, COALESCE(finished_at, ''), seeds, workers, domains,
		pages, resources, failures, bytes, interrupted
	FROM runs
	ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var (
			r                 RunRecord
			started, finished string
			seeds             string
			interrupted       int
		)
		if err := rows.Scan(&r.ID, &started, &finished, &seeds, &r.Workers, &r.Domains,
			&r.Pages, &r.Resources, &r.Failures, &r.Bytes, &interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		r.Interrupted = interrupted != 0
		if seeds != "" {
			r.Seeds = strings.Split(seeds, "\n")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FetchesForRun returns the fetches of a run in insertion order.
func (h *HistoryDB) FetchesForRun(ctx context.Context, runID string) ([]model.FetchRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT domain, url, kind, status_code, content_type, bytes, saved_path, error, fetched_at
	FROM fetches WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetches: %w", err)
	}
	defer rows.Close()

	records := make([]model.FetchRecord, 0)
	for rows.Next() {
		var (
			rec       model.FetchRecord
			kind      string
			fetchedAt string
		)
		if err := rows.Scan(&rec.Domain, &rec.URL, &kind, &rec.StatusCode, &rec.ContentType,
			&rec.Bytes, &rec.SavedPath, &rec.Error, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}
		rec.Kind = parseKind(kind)
		rec.FetchedAt = parseTimestamp(fetchedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DomainsForRun returns the domain stats stored for a run, sorted by domain.
func (h *HistoryDB) DomainsForRun(ctx context.Context, runID string) ([]*model.DomainStats, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT domain, pages, resources, failures, bytes, discovered, started_at,
		COALESCE(finished_at, ''), interrupted
	FROM domains WHERE run_id = ? ORDER BY domain`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	defer rows.Close()

	out := make([]*model.DomainStats, 0)
	for rows.Next() {
		var (
			s                 model.DomainStats
			discovered        string
			started, finished string
			interrupted       int
		)
		if err := rows.Scan(&s.Domain, &s.Pages, &s.Resources, &s.Failures, &s.Bytes,
			&discovered, &started, &finished, &interrupted); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		if discovered != "" {
			if err := json.Unmarshal([]byte(discovered), &s.Discovered); err != nil {
				return nil, fmt.Errorf("failed to parse discovered domains: %w", err)
			}
		}
		s.StartedAt = parseTimestamp(started)
		s.FinishedAt = parseTimestamp(finished)
		s.Interrupted = interrupted != 0
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Recorder returns a fetch recorder bound to runID. Writes use a context
// detached from ctx's cancellation so the fetches of an interrupted run are
// still recorded.
func (h *HistoryDB) Recorder(ctx context.Context, runID string, logger *slog.Logger) *RunRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunRecorder{
		ctx:    context.WithoutCancel(ctx),
		db:     h,
		runID:  runID,
		logger: logger,
	}
}

// RunRecorder writes fetch records and domain stats of one run.
// It is safe for concurrent use.
type RunRecorder struct {
	ctx    context.Context
	db     *HistoryDB
	runID  string
	logger *slog.Logger
	errors atomic.Int64
}

// RunID returns the run the recorder writes to.
func (r *RunRecorder) RunID() string { return r.runID }

// RecordFetch stores rec. Failures are logged and counted.
func (r *RunRecorder) RecordFetch(rec *model.FetchRecord) {
	if err := r.db.InsertFetch(r.ctx, r.runID, rec); err != nil {
		r.errors.Add(1)
		r.logger.Error("failed to record fetch", "url", rec.URL, "error", err)
	}
}

// RecordDomain stores the stats of a finished domain. Failures are logged
// and counted.
func (r *RunRecorder) RecordDomain(stats *model.DomainStats) {
	if err := r.db.InsertDomain(r.ctx, r.runID, stats); err != nil {
		r.errors.Add(1)
		r.logger.Error("failed to record domain", "domain", stats.Domain, "error", err)
	}
}

// Errors returns how many writes failed.
func (r *RunRecorder) Errors() int64 { return r.errors.Load() }

func parseKind(s string) model.LinkKind {
	switch s {
	case model.LinkPage.String():
		return model.LinkPage
	case model.LinkResource.String():
		return model.LinkResource
	case model.LinkExternal.String():
		return model.LinkExternal
	default:
		return model.LinkIgnored
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time for
// empty or unrecognized values.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
