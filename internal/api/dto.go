package api

import (
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/voice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Text string `json:"text"`
}

// CreateCaptionRequest is the request body for saving a caption segment.
// Timestamp is optional; the server fills it when absent.
type CreateCaptionRequest struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SimplifyRequest is the request body for text simplification.
type SimplifyRequest struct {
	Text string `json:"text"`
}

// SimplifyResponse carries the simplified text.
type SimplifyResponse struct {
	Simplified string `json:"simplified"`
}

// VoiceCommandRequest carries a speech-recognition transcript to interpret.
type VoiceCommandRequest struct {
	Transcript string `json:"transcript"`
}

// VoiceCommandResponse is the interpreted reader command.
type VoiceCommandResponse struct {
	Command voice.Command `json:"command"`
	Matched bool          `json:"matched"`
}

// SearchResponse wraps full-text search results.
type SearchResponse struct {
	Results []search.Result `json:"results"`
}
