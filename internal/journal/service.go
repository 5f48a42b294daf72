// Package journal coordinates the notes, captions, and settings collections
// stored in the persisted document.
package journal

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/docstore"
	"github.com/starford/ansuz/internal/models"
)

// Service exposes the document collections to the API and MCP layers.
type Service struct {
	store *docstore.Store
	now   func() time.Time
}

// NewService creates a Service over the given document store.
func NewService(store *docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// ListNotes returns all notes in insertion order.
func (s *Service) ListNotes(_ context.Context) ([]models.Note, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Notes, nil
}

// AddNote appends a new immutable note and returns it. Text is stored
// verbatim; only presence is validated.
func (s *Service) AddNote(_ context.Context, text string) (models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return models.Note{}, apperr.ErrMissingInput
	}

	var created models.Note
	_, err := s.store.Update(func(doc *models.Document) error {
		created = models.Note{
			ID:   s.newID(noteIDs(doc.Notes)),
			Text: text,
			Date: s.now().UTC(),
		}
		doc.Notes = append(doc.Notes, created)
		return nil
	})
	if err != nil {
		return models.Note{}, err
	}
	return created, nil
}

// ListCaptions returns all captions in insertion order.
func (s *Service) ListCaptions(_ context.Context) ([]models.Caption, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Captions, nil
}

// AddCaption appends a new caption segment. An empty timestamp is filled with
// the server's current local time in a human-readable form.
func (s *Service) AddCaption(_ context.Context, text, timestamp string) (models.Caption, error) {
	if strings.TrimSpace(text) == "" {
		return models.Caption{}, apperr.ErrMissingInput
	}
	if timestamp == "" {
		timestamp = s.now().Format("15:04:05")
	}

	var created models.Caption
	_, err := s.store.Update(func(doc *models.Document) error {
		created = models.Caption{
			ID:        s.newID(captionIDs(doc.Captions)),
			Text:      text,
			Timestamp: timestamp,
		}
		doc.Captions = append(doc.Captions, created)
		return nil
	})
	if err != nil {
		return models.Caption{}, err
	}
	return created, nil
}

// Settings returns the current settings record.
func (s *Service) Settings(_ context.Context) (models.AccessibilitySettings, error) {
	doc, err := s.store.Load()
	if err != nil {
		return models.AccessibilitySettings{}, err
	}
	return doc.Settings, nil
}

// UpdateSettings merges the patch over the stored settings and returns the
// merged value. Keys present in the patch win; others are unchanged.
func (s *Service) UpdateSettings(_ context.Context, patch models.SettingsPatch) (models.AccessibilitySettings, error) {
	doc, err := s.store.Update(func(doc *models.Document) error {
		doc.Settings = patch.Apply(doc.Settings)
		return nil
	})
	if err != nil {
		return models.AccessibilitySettings{}, err
	}
	return doc.Settings, nil
}

// newID returns a time-based identifier (millisecond epoch, decimal). When a
// second record lands in the same millisecond the value is bumped until it is
// unique within the collection; the store lock makes this safe.
func (s *Service) newID(taken map[string]struct{}) string {
	n := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(n, 10)
		if _, ok := taken[id]; !ok {
			return id
		}
		n++
	}
}

func noteIDs(notes []models.Note) map[string]struct{} {
	ids := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

func captionIDs(captions []models.Caption) map[string]struct{} {
	ids := make(map[string]struct{}, len(captions))
	for _, c := range captions {
		ids[c.ID] = struct{}{}
	}
	return ids
}
