package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	appErrors "github.com/thomas-vilte/debtguard/internal/errors"
	"github.com/thomas-vilte/debtguard/internal/models"
)

const fileSuffix = "_debts.json"

var fileNameReplacer = strings.NewReplacer(
	`\`, "_", "/", "_", "*", "_", "?", "_", `"`, "_",
	"<", "_", ">", "_", "|", "_", ":", "_",
)

// FileName derives the report file name from a repository address.
func FileName(address string) string {
	return fileNameReplacer.Replace(address) + fileSuffix
}

// Store is the in-memory view of a report file, keyed by commit hash.
// It assumes a single writer.
type Store struct {
	path    string
	reports map[string]models.CommitReport

	// writeFile replaces the target atomically; swapped in tests.
	writeFile func(path string, content []byte) error
}

func NewStore(path string) *Store {
	return &Store{
		path:      path,
		reports:   make(map[string]models.CommitReport),
		writeFile: atomicWrite,
	}
}

func (s *Store) Path() string { return s.path }

// Load replaces the contents of the store with the report file. A missing
// file leaves the store empty.
func (s *Store) Load() error {
	reports, err := Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.reports = make(map[string]models.CommitReport)
			return nil
		}
		return err
	}
	s.reports = reports
	return nil
}

func (s *Store) Has(hash string) bool {
	_, ok := s.reports[hash]
	return ok
}

// Put records report under hash, replacing any previous entry.
func (s *Store) Put(hash string, report models.CommitReport) {
	report.Normalize()
	s.reports[hash] = report
}

func (s *Store) Get(hash string) (models.CommitReport, bool) {
	r, ok := s.reports[hash]
	return r, ok
}

func (s *Store) Len() int { return len(s.reports) }

// Keys returns the stored commit hashes in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.reports))
	for k := range s.reports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flush writes the whole mapping to disk. The previous file stays intact
// until the new content is completely written.
func (s *Store) Flush() error {
	content, err := Encode(s.reports)
	if err != nil {
		return appErrors.ErrReportStoreIO.
			WithError(err).
			WithContext("path", s.path)
	}

	if err := s.writeFile(s.path, content); err != nil {
		return appErrors.ErrReportStoreIO.
			WithError(err).
			WithContext("path", s.path)
	}
	return nil
}

// Encode renders reports the way they are persisted: 4-space indented
// JSON, commit keys sorted, with a trailing newline.
func Encode(reports map[string]models.CommitReport) ([]byte, error) {
	normalized := make(map[string]models.CommitReport, len(reports))
	for k, r := range reports {
		r.Normalize()
		normalized[k] = r
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read loads a report file without creating a store. The error wraps
// os.ErrNotExist when the file is missing.
func Read(path string) (map[string]models.CommitReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, appErrors.ErrReportStoreIO.
			WithError(err).
			WithContext("path", path)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, appErrors.ErrReportStoreIO.
			WithError(err).
			WithContext("path", path)
	}

	reports := make(map[string]models.CommitReport)
	if len(bytes.TrimSpace(data)) == 0 {
		return reports, nil
	}
	if err := json.Unmarshal(data, &reports); err != nil || reports == nil {
		if err == nil {
			err = errors.New("report is not a JSON object")
		}
		return nil, appErrors.ErrReportCorrupt.
			WithError(err).
			WithContext("path", path).
			WithSuggestion(fmt.Sprintf("Fix or remove %s, or run without --resume to start over", filepath.Base(path)))
	}
	for k, r := range reports {
		r.Normalize()
		reports[k] = r
	}
	return reports, nil
}

// atomicWrite writes content to a temp file next to path, syncs it and
// renames it over path.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}
