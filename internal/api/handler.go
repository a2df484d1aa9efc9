package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	apperrors "github.com/furiview/furiview/internal/errors"
	"github.com/furiview/furiview/internal/logging"
	"github.com/furiview/furiview/internal/pipeline"
)

// allowedExtensions lists the upload formats the pipeline can decode.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Processor runs the annotation pipeline over one uploaded image.
type Processor interface {
	Process(ctx context.Context, imageData []byte, filename string) (*pipeline.Report, error)
}

// Handler exposes the annotation pipeline over HTTP.
type Handler struct {
	processor      Processor
	maxUploadBytes int64
	outputDir      string
	logger         *logging.Logger
}

// NewHandler creates the HTTP handler around a pipeline processor.
func NewHandler(processor Processor, maxUploadBytes int64, outputDir string, logger *logging.Logger) *Handler {
	return &Handler{
		processor:      processor,
		maxUploadBytes: maxUploadBytes,
		outputDir:      outputDir,
		logger:         logger,
	}
}

// Register mounts all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/process", h.handleProcess)
	mux.Handle("/outputs/", http.StripPrefix("/outputs/",
		http.FileServer(http.Dir(h.outputDir))))
	mux.HandleFunc("/", h.handleInfo)
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing or oversized file upload")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		h.writeError(w, http.StatusBadRequest, "unsupported file type, expected .png, .jpg or .jpeg")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		h.writeError(w, http.StatusBadRequest, "empty upload")
		return
	}

	// Processing continues even if the client disconnects mid-request; a
	// half-run pipeline would leave nothing useful behind.
	ctx := context.WithoutCancel(r.Context())
	report, err := h.processor.Process(ctx, data, header.Filename)
	if err != nil {
		h.logger.Error("Pipeline failed", "filename", header.Filename, "error", err)
		var pe *apperrors.PipelineError
		if errors.As(err, &pe) {
			payload := pe.ToMap()
			payload["success"] = false
			h.writeJSON(w, http.StatusInternalServerError, payload)
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, pipeline.FailureReport(err))
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "furiview",
		"endpoints": map[string]string{
			"POST /process": "annotate a Japanese text image (multipart field: file)",
			"GET /outputs/": "download annotated images",
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, reason string) {
	payload := apperrors.NewInvalidInputError(reason).ToMap()
	payload["success"] = false
	payload["error"] = reason
	h.writeJSON(w, status, payload)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
