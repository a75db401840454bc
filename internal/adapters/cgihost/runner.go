// Package cgihost runs the block handler once under the Common Gateway Interface.
package cgihost

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cgi"
	"strings"

	"httpblock/internal/logger"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Runner serves a single CGI request with an http.Handler.
type Runner struct {
	handler http.Handler
	logger  logger.AppLogger
	env     map[string]string
	stdin   io.Reader
	stdout  io.Writer
}

// NewRunner creates a Runner reading the request from env and stdin and writing the response to stdout.
func NewRunner(
	handler http.Handler,
	appLogger logger.AppLogger,
	env map[string]string,
	stdin io.Reader,
	stdout io.Writer,
) (*Runner, error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil for Runner")
	}
	if appLogger == nil {
		return nil, errors.New("logger cannot be nil for Runner")
	}
	if stdin == nil || stdout == nil {
		return nil, errors.New("stdin and stdout cannot be nil for Runner")
	}
	return &Runner{
		handler: handler,
		logger:  appLogger,
		env:     env,
		stdin:   stdin,
		stdout:  stdout,
	}, nil
}

// Environ converts "KEY=value" pairs into a map.
func Environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// IsCGI reports whether env describes a CGI invocation.
func IsCGI(env map[string]string) bool {
	return env["GATEWAY_INTERFACE"] != "" && env["REQUEST_METHOD"] != ""
}

// Run serves the request and returns the process exit code.
// Any response with a status of 400 or above exits with ExitFailure.
func (r *Runner) Run() int {
	req, err := cgi.RequestFromMap(r.env)
	if err != nil {
		r.logger.Error("Failed to read CGI request", "error", err)
		return ExitFailure
	}
	if req.ContentLength > 0 {
		req.Body = io.NopCloser(io.LimitReader(r.stdin, req.ContentLength))
	} else {
		req.Body = http.NoBody
	}

	rw := newResponseWriter(r.stdout)
	r.handler.ServeHTTP(rw, req)

	if err := rw.finish(); err != nil {
		r.logger.Error("Failed to write CGI response", "error", err)
		return ExitFailure
	}

	if rw.status >= http.StatusBadRequest {
		r.logger.Debug("CGI request rejected", "status", rw.status)
		return ExitFailure
	}
	return ExitOK
}

// responseWriter implements http.ResponseWriter on top of CGI stdout.
type responseWriter struct {
	header      http.Header
	bufw        *bufio.Writer
	status      int
	wroteHeader bool
}

func newResponseWriter(out io.Writer) *responseWriter {
	return &responseWriter{
		header: make(http.Header),
		bufw:   bufio.NewWriter(out),
	}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.bufw.Write(p)
}

// WriteHeader emits the CGI header block. A 200 status is implied and not written.
func (w *responseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code

	if code != http.StatusOK {
		fmt.Fprintf(w.bufw, "Status: %d %s\r\n", code, http.StatusText(code))
	}
	if w.header.Get("Content-Type") == "" {
		w.header.Set("Content-Type", "text/plain")
	}
	_ = w.header.Write(w.bufw)
	_, _ = w.bufw.WriteString("\r\n")
}

func (w *responseWriter) finish() error {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.bufw.Flush()
}
