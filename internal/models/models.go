// Package models defines the domain types for Ansuz.
package models

import "time"

// Contrast modes.
const (
	ContrastLight = "light"
	ContrastDark  = "dark"
	ContrastHigh  = "high-contrast"
)

// Input modes.
const (
	InputVoice = "voice"
	InputText  = "text"
	InputMixed = "mixed"
)

// AccessibilitySettings is the single mutable settings record. It is created
// with defaults, updated by partial merges, and never deleted.
type AccessibilitySettings struct {
	FontSize        int     `json:"fontSize"`
	ContrastMode    string  `json:"contrastMode"`
	DyslexiaFont    bool    `json:"dyslexiaFont"`
	InputMode       string  `json:"inputMode"`
	SpeechRate      float64 `json:"speechRate"`
	CaptionsEnabled bool    `json:"captionsEnabled"`
	Language        string  `json:"language"`
	DemoMode        bool    `json:"demoMode"`
}

// DefaultSettings returns the settings record used before any user update.
func DefaultSettings() AccessibilitySettings {
	return AccessibilitySettings{
		FontSize:        16,
		ContrastMode:    ContrastLight,
		DyslexiaFont:    false,
		InputMode:       InputMixed,
		SpeechRate:      1.0,
		CaptionsEnabled: true,
		Language:        "en-US",
		DemoMode:        false,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged;
// set fields override the current value (last write wins, no versioning).
type SettingsPatch struct {
	FontSize        *int     `json:"fontSize,omitempty"`
	ContrastMode    *string  `json:"contrastMode,omitempty"`
	DyslexiaFont    *bool    `json:"dyslexiaFont,omitempty"`
	InputMode       *string  `json:"inputMode,omitempty"`
	SpeechRate      *float64 `json:"speechRate,omitempty"`
	CaptionsEnabled *bool    `json:"captionsEnabled,omitempty"`
	Language        *string  `json:"language,omitempty"`
	DemoMode        *bool    `json:"demoMode,omitempty"`
}

// Apply merges the patch over s and returns the merged value. The receiver
// settings are not mutated; callers swap the returned value in atomically.
func (p SettingsPatch) Apply(s AccessibilitySettings) AccessibilitySettings {
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.ContrastMode != nil {
		s.ContrastMode = *p.ContrastMode
	}
	if p.DyslexiaFont != nil {
		s.DyslexiaFont = *p.DyslexiaFont
	}
	if p.InputMode != nil {
		s.InputMode = *p.InputMode
	}
	if p.SpeechRate != nil {
		s.SpeechRate = *p.SpeechRate
	}
	if p.CaptionsEnabled != nil {
		s.CaptionsEnabled = *p.CaptionsEnabled
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.DemoMode != nil {
		s.DemoMode = *p.DemoMode
	}
	return s
}

// Note is a saved dictation or text note. Notes are append-only and
// immutable once created.
type Note struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Date time.Time `json:"date"`
}

// Caption is a saved live-caption transcript segment. Same lifecycle as Note.
type Caption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Document is the single persisted JSON structure holding all server-side
// state. It always exists: the store materializes it with defaults on first
// read, and unknown future fields survive the merge-over-defaults decode.
type Document struct {
	Notes    []Note                `json:"notes"`
	Captions []Caption             `json:"captions"`
	Settings AccessibilitySettings `json:"settings"`
}

// DefaultDocument returns the document created on first read.
func DefaultDocument() Document {
	return Document{
		Notes:    []Note{},
		Captions: []Caption{},
		Settings: DefaultSettings(),
	}
}
