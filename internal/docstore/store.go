// Package docstore persists the whole application state as one JSON document
// on disk.
//
// The document is the source of truth for notes, captions, and settings.
// All read-modify-write cycles are serialized through a single mutex, so
// concurrent API requests cannot lose each other's updates, and every write
// is atomic (temp file → fsync → rename). Derived state such as the search
// index is rebuilt from the document and never written back.
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/ansuz/internal/models"
)

// Store owns the JSON document file.
type Store struct {
	path string

	// mu serializes every read-modify-write cycle. The document is small
	// (single-user scale), so a coarse lock is sufficient.
	mu sync.Mutex
}

// Open creates a Store for the document at path. The parent directory is
// created if needed; the document itself is materialized lazily with
// defaults on first read.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("docstore: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("docstore: create dir: %w", err)
	}
	return &Store{path: abs}, nil
}

// Path returns the absolute path of the document file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current document. A missing file yields the default
// document; fields absent from an older file keep their default values, so
// schema additions stay backward-compatible without migrations.
func (s *Store) Load() (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Update runs fn against the current document under the store lock and
// persists the result atomically. The mutated document is returned.
func (s *Store) Update(fn func(doc *models.Document) error) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return models.Document{}, err
	}
	if err := fn(&doc); err != nil {
		return models.Document{}, err
	}
	if err := s.write(doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// read loads and decodes the document without locking.
func (s *Store) read() (models.Document, error) {
	doc := models.DefaultDocument()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return models.Document{}, fmt.Errorf("docstore: read %s: %w", s.path, err)
	}

	// Decoding over the default value gives merge-over-defaults semantics:
	// keys present in the file win, missing keys keep their defaults.
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("docstore: decode %s: %w", s.path, err)
	}
	if doc.Notes == nil {
		doc.Notes = []models.Note{}
	}
	if doc.Captions == nil {
		doc.Captions = []models.Caption{}
	}
	return doc, nil
}

// write persists the document atomically: tmp file → fsync → rename.
func (s *Store) write(doc models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("docstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("docstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("docstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("docstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("docstore: rename: %w", err)
	}
	success = true
	return nil
}
