package api

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// maxUploadBytes caps image uploads.
const maxUploadBytes = 25 << 20 // 25 MB

// AnalyzeImage handles POST /api/analyze-image (multipart/form-data with an
// "image" file field and a "useGemini" flag).
//
// The upload is spooled to the upload directory and handed to the analysis
// pipeline, which removes it after producing a result. Demo mode is read from
// the persisted settings record at request time.
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("no image file provided"))
		return
	}
	defer file.Close()

	useCloud := r.FormValue("useGemini") == "true"

	demoMode := false
	if settings, err := h.svc.Settings(r.Context()); err == nil {
		demoMode = settings.DemoMode
	}

	path, err := h.spoolUpload(file, header.Filename)
	if err != nil {
		slog.Error("spool upload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to process image"))
		return
	}

	result, err := h.pipeline.Describe(r.Context(), path, useCloud, demoMode)
	if err != nil {
		slog.Error("analyze image failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to analyze image"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// spoolUpload writes the uploaded file into the upload directory and returns
// its path. The original extension is preserved because the OCR engine keys
// its reader on it.
func (h *Handler) spoolUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	dst, err := os.CreateTemp(h.uploadDir, "upload-*"+ext)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}
