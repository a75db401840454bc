// Package fasthttpapi serves the block payload on the fasthttp engine.
package fasthttpapi

import (
	"bufio"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"httpblock/internal/core/domain"
	"httpblock/internal/logger"
	"httpblock/pkg/blockgen"
)

const allowedMethods = "GET, POST"

// Handler handles block requests on a fasthttp server.
type Handler struct {
	generator blockgen.Generator
	logger    logger.AppLogger
	parameter string
	path      string

	// streamCtx outlives individual requests: body streams run after HandleBlocks returns.
	streamCtx context.Context
}

// NewHandler creates a new fasthttp handler. Streams stop once streamCtx is cancelled.
func NewHandler(
	streamCtx context.Context,
	generator blockgen.Generator,
	appLogger logger.AppLogger,
	parameter, path string,
) (*Handler, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil for Handler")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for Handler")
	}
	if parameter == "" {
		return nil, errors.New("parameter name cannot be empty for Handler")
	}
	if path == "" {
		path = "/"
	}
	return &Handler{
		generator: generator,
		logger:    appLogger,
		parameter: parameter,
		path:      path,
		streamCtx: streamCtx,
	}, nil
}

// HandleBlocks handles GET and POST requests for a number of 1 KiB blocks.
func (h *Handler) HandleBlocks(ctx *fasthttp.RequestCtx) {
	requestLogger := h.logger.With(
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"request_id", uuid.NewString(),
	)

	if h.path != "/" && string(ctx.Path()) != h.path {
		respondWithText(ctx, fasthttp.StatusNotFound, "Not Found")
		return
	}

	if !ctx.IsGet() && !ctx.IsHead() && !ctx.IsPost() {
		requestLogger.Warn("Method not allowed for blocks")
		ctx.Response.Header.Set(fasthttp.HeaderAllow, allowedMethods)
		respondWithText(ctx, fasthttp.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	values, err := h.formValues(ctx)
	if err != nil {
		requestLogger.Warn("Invalid request form", "error", err)
		respondWithText(ctx, fasthttp.StatusBadRequest, "Invalid request body")
		return
	}

	count, err := h.generator.Resolve(values)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBlockValue) {
			requestLogger.Warn("Blocks validation failed", "error", err)
			respondWithText(ctx, fasthttp.StatusBadRequest, domain.InvalidBlockValueMessage)
		} else {
			requestLogger.Error("Error resolving block count", "error", err)
			respondWithText(ctx, fasthttp.StatusInternalServerError, "Failed to resolve block count")
		}
		return
	}

	requestLogger = requestLogger.With("blocks", count)

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("text/plain")

	if ctx.IsHead() {
		ctx.Response.Header.SetContentLength(int(h.generator.ContentLength(count)))
		return
	}
	if count <= 0 {
		return
	}

	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		n, err := h.generator.WriteBlocks(h.streamCtx, w, count)
		if err == nil {
			err = w.Flush()
		}
		if err != nil {
			requestLogger.Warn("Block stream aborted", "error", err, "bytes_written", n)
			return
		}
		requestLogger.Debug("Blocks served", "bytes_written", n)
	})
}

// formValues returns the parameter values from the request body followed by the query string.
func (h *Handler) formValues(ctx *fasthttp.RequestCtx) ([]string, error) {
	var values []string

	if ctx.IsPost() {
		form, err := ctx.MultipartForm()
		switch {
		case err == nil:
			values = append(values, form.Value[h.parameter]...)
		case errors.Is(err, fasthttp.ErrNoMultipartForm):
			for _, v := range ctx.PostArgs().PeekMulti(h.parameter) {
				values = append(values, string(v))
			}
		default:
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}

	for _, v := range ctx.QueryArgs().PeekMulti(h.parameter) {
		values = append(values, string(v))
	}
	return values, nil
}

func respondWithText(ctx *fasthttp.RequestCtx, code int, message string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("text/plain")
	ctx.SetBodyString(message)
}
