// Package restapi serves the block payload over net/http.
package restapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"httpblock/internal/core/domain"
	"httpblock/internal/logger"
	"httpblock/pkg/blockgen"
)

// maxFormMemory bounds the multipart form bytes kept in memory.
const maxFormMemory = 1 << 20

// allowedMethods is sent in the Allow header of 405 responses.
const allowedMethods = "GET, POST"

// HTTPHandler handles incoming HTTP requests for blocks.
type HTTPHandler struct {
	generator blockgen.Generator
	logger    logger.AppLogger
	parameter string
}

// NewHTTPHandler creates a new handler reading the count from the named form parameter.
func NewHTTPHandler(generator blockgen.Generator, appLogger logger.AppLogger, parameter string) (*HTTPHandler, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil for HTTPHandler")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for HTTPHandler")
	}
	if parameter == "" {
		return nil, errors.New("parameter name cannot be empty for HTTPHandler")
	}
	return &HTTPHandler{
		generator: generator,
		logger:    appLogger,
		parameter: parameter,
	}, nil
}

// HandleBlocks handles GET and POST requests for a number of 1 KiB blocks.
func (h *HTTPHandler) HandleBlocks(w http.ResponseWriter, r *http.Request) {
	requestLogger := h.logger.With("method", r.Method, "path", r.URL.Path, "request_id", uuid.NewString())

	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		requestLogger.Warn("Method not allowed for blocks")
		w.Header().Set("Allow", allowedMethods)
		respondWithText(w, http.StatusMethodNotAllowed, "Method Not Allowed", requestLogger)
		return
	}

	values, err := h.formValues(r)
	if err != nil {
		requestLogger.Warn("Invalid request form", "error", err)
		respondWithText(w, http.StatusBadRequest, "Invalid request body", requestLogger)
		return
	}

	count, err := h.generator.Resolve(values)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBlockValue) {
			requestLogger.Warn("Blocks validation failed", "error", err)
			respondWithText(w, http.StatusBadRequest, domain.InvalidBlockValueMessage, requestLogger)
		} else {
			requestLogger.Error("Error resolving block count", "error", err)
			respondWithText(w, http.StatusInternalServerError, "Failed to resolve block count", requestLogger)
		}
		return
	}

	requestLogger = requestLogger.With("blocks", count)

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.FormatInt(h.generator.ContentLength(count), 10))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	n, err := h.generator.WriteBlocks(r.Context(), w, count)
	if err != nil {
		requestLogger.Warn("Block stream aborted", "error", err, "bytes_written", n)
		return
	}
	requestLogger.Debug("Blocks served", "bytes_written", n)
}

// formValues returns the parameter values from the request body followed by the query string.
func (h *HTTPHandler) formValues(r *http.Request) ([]string, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return r.Form[h.parameter], nil
}

// respondWithText writes a plain-text response with the given code and message.
func respondWithText(w http.ResponseWriter, code int, message string, l logger.AppLogger) {
	if l == nil {
		l = logger.NewSlogAdapter(slog.Default())
	}

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(message)))
	w.WriteHeader(code)

	n, writeErr := w.Write([]byte(message))
	if writeErr != nil {
		l.Error("Error writing response body", "error", writeErr, "bytes_written", n)
	}
}
