// Package store persists benchmark results in a single JSON file.
//
// The file may live on shared storage with several hosts appending their
// own records, so every mutation is read-merge-replace: load the current
// document, apply the change, and atomically swap in the new file via a
// same-directory temp file and rename. Concurrent writers cannot corrupt
// the file; when two race, the last rename wins and the loser's change is
// dropped rather than merged.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/hostbench/hostbench/internal/bench"
	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/logger"
)

// CurrentVersion is the results file schema version.
const CurrentVersion = 1

// document is the on-disk shape of the results file.
type document struct {
	Version int                          `json:"version"`
	Hosts   map[string]*bench.HostResult `json:"hosts"`
}

// Store reads and writes the shared results file.
type Store struct {
	path string
	log  logger.Logger
}

// New returns a Store for the given results file path. The file does not
// need to exist yet.
func New(path string, log logger.Logger) *Store {
	return &Store{path: path, log: log}
}

// Path returns the results file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or replaces the record keyed by result.HostID.
func (s *Store) Upsert(result *bench.HostResult) error {
	if result.HostID == "" {
		return errors.New(errors.ErrStore,
			"Refusing to store a record with an empty host ID",
			"Pass --host-id to label this run.")
	}
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Hosts[result.HostID] = result
	return s.save(doc)
}

// List returns all records sorted by host ID.
func (s *Store) List() ([]*bench.HostResult, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	results := make([]*bench.HostResult, 0, len(doc.Hosts))
	for _, r := range doc.Hosts {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].HostID < results[j].HostID })
	return results, nil
}

// Get returns the record for one host, or nil when absent.
func (s *Store) Get(hostID string) (*bench.HostResult, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Hosts[hostID], nil
}

// Delete removes one host's record. It reports whether the record existed.
func (s *Store) Delete(hostID string) (bool, error) {
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Hosts[hostID]; !ok {
		return false, nil
	}
	delete(doc.Hosts, hostID)
	return true, s.save(doc)
}

// Clear removes every record, leaving a valid empty document behind.
func (s *Store) Clear() error {
	return s.save(emptyDocument())
}

func emptyDocument() *document {
	return &document{
		Version: CurrentVersion,
		Hosts:   make(map[string]*bench.HostResult),
	}
}

// load reads the results file. A missing file is an empty document; a
// corrupt one is logged and treated as empty so a damaged store never
// blocks new runs. A file written by a newer schema is an error, since
// rewriting it here would silently discard fields we don't know about.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't read the results file",
			"Check permissions on "+s.path)
	}

	var doc document
	if uerr := json.Unmarshal(data, &doc); uerr != nil {
		s.log.Warn("results file %s is corrupt (%v); starting from an empty document", s.path, uerr)
		return emptyDocument(), nil
	}
	if doc.Version > CurrentVersion {
		return nil, errors.New(errors.ErrStore,
			fmt.Sprintf("Results file version %d is newer than this build supports (%d)", doc.Version, CurrentVersion),
			"Upgrade hostbench, or point --db at a different file.")
	}
	if doc.Hosts == nil {
		doc.Hosts = make(map[string]*bench.HostResult)
	}
	doc.Version = CurrentVersion
	return &doc, nil
}

// save writes the document to a same-directory temp file and renames it
// over the results file. Readers see either the old or the new content,
// never a partial write.
func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't encode the results document", "")
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't create the results directory",
			"Check permissions on "+dir)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(s.path), uuid.NewString()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't write the results file",
			"Check free space and permissions on "+dir)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapWithCode(err, errors.ErrStore,
			"Couldn't replace the results file",
			"Check permissions on "+dir)
	}
	return nil
}
