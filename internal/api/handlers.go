package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/ansuz/internal/analysis"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/journal"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/observe"
	"github.com/starford/ansuz/internal/search"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/vision"
	"github.com/starford/ansuz/internal/voice"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20 // 1 MB

// Handler holds API route handlers and their collaborators.
type Handler struct {
	svc       *journal.Service
	pipeline  *analysis.Pipeline
	vision    vision.Provider // nil when cloud features are disabled
	grammar   *voice.Grammar
	index     *search.Index
	broker    *sse.Broker
	metrics   *observe.Metrics
	uploadDir string
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Service   *journal.Service
	Pipeline  *analysis.Pipeline
	Vision    vision.Provider
	Grammar   *voice.Grammar
	Index     *search.Index
	Broker    *sse.Broker
	Metrics   *observe.Metrics
	UploadDir string
}

// NewHandler creates a new Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	grammar := cfg.Grammar
	if grammar == nil {
		grammar = voice.NewGrammar()
	}
	return &Handler{
		svc:       cfg.Service,
		pipeline:  cfg.Pipeline,
		vision:    cfg.Vision,
		grammar:   grammar,
		index:     cfg.Index,
		broker:    cfg.Broker,
		metrics:   cfg.Metrics,
		uploadDir: cfg.UploadDir,
	}
}

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotes(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.svc.AddNote(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
			return
		}
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	h.afterCreate(r.Context(), search.KindNote, note.ID, note.Text, note.Date.Format("2006-01-02T15:04:05Z07:00"))
	writeJSON(w, http.StatusCreated, note)
}

// ListCaptions handles GET /api/captions.
func (h *Handler) ListCaptions(w http.ResponseWriter, r *http.Request) {
	captions, err := h.svc.ListCaptions(r.Context())
	if err != nil {
		slog.Error("list captions failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, captions)
}

// CreateCaption handles POST /api/captions.
func (h *Handler) CreateCaption(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateCaptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	caption, err := h.svc.AddCaption(r.Context(), req.Text, req.Timestamp)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
			return
		}
		slog.Error("create caption failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	h.afterCreate(r.Context(), search.KindCaption, caption.ID, caption.Text, caption.Timestamp)
	writeJSON(w, http.StatusCreated, caption)
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		slog.Error("get settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles POST /api/settings. The body is a partial update:
// present keys override stored values, absent keys are unchanged. The merged
// record is returned.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	merged, err := h.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		slog.Error("update settings failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if h.broker != nil {
		h.broker.PublishRecordEvent("settings", "")
	}
	writeJSON(w, http.StatusOK, merged)
}

// SimplifyText handles POST /api/simplify-text. Returns 503 when no cloud
// credential is configured.
func (h *Handler) SimplifyText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SimplifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	if h.vision == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("text simplification requires a cloud credential"))
		return
	}

	simplified, err := h.vision.SimplifyText(r.Context(), req.Text)
	if err != nil {
		slog.Error("simplify text failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to simplify text"))
		return
	}
	writeJSON(w, http.StatusOK, SimplifyResponse{Simplified: simplified})
}

// VoiceCommand handles POST /api/voice-command: interprets a transcript
// against the reader command grammar, first match wins.
func (h *Handler) VoiceCommand(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req VoiceCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Transcript == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("transcript is required"))
		return
	}

	cmd, matched := h.grammar.Interpret(req.Transcript)
	writeJSON(w, http.StatusOK, VoiceCommandResponse{Command: cmd, Matched: matched})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.index.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// afterCreate runs the fire-and-forget follow-ups to a created record: SSE
// fan-out and the search-index upsert. Failures are reported to telemetry,
// never to the client.
func (h *Handler) afterCreate(ctx context.Context, kind, id, text, createdAt string) {
	if h.broker != nil {
		h.broker.PublishRecordEvent(kind, id)
	}
	if h.index != nil {
		if err := h.index.Upsert(kind, id, text, createdAt); err != nil {
			slog.Warn("search upsert failed",
				slog.String("kind", kind),
				slog.String("id", id),
				slog.String("error", err.Error()))
			h.metrics.RecordBestEffortFailure(ctx, "search_upsert")
		}
	}
}
