package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const (
	// maxAuditBody caps how much of a request or response body is kept.
	maxAuditBody = 4 << 10
	// maxRequestBody caps how much of a request body is read at all.
	maxRequestBody = 1 << 20
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil && current.GetName() != "" {
			route = current.GetName()
		}
		if route == metricsRoute {
			next.ServeHTTP(w, r)
			return
		}

		entry := AuditLogEntry{
			Timestamp:  time.Now(),
			Route:      route,
			Method:     r.Method,
			Path:       r.URL.Path,
			HospitalID: r.Header.Get(HospitalHeader),
			EntityID:   mux.Vars(r)["id"],
		}

		skipRequestBody := strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data")
		wrw := newResponseWriterWrapper(w)

		if !skipRequestBody && r.Body != nil {
			requestBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
			entry.Request = truncate(requestBody)
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					respondError(wrw, http.StatusRequestEntityTooLarge, "Request body too large")
				} else {
					respondError(wrw, http.StatusBadRequest, "Failed to read request body")
				}
				entry.StatusCode = wrw.GetStatusCode()
				entry.Response = truncate(wrw.GetBody())
				s.AuditManager.LogEntry(r.Context(), entry)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = truncate(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func truncate(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > maxAuditBody {
		return string(b[:maxAuditBody]) + "..."
	}
	return string(b)
}

// responseWriterWrapper records the status and the head of the body for the
// audit entry.
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
	buffer     bytes.Buffer
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	if room := maxAuditBody + 1 - w.buffer.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.buffer.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) GetStatusCode() int {
	return w.statusCode
}

func (w *responseWriterWrapper) GetBody() []byte {
	return w.buffer.Bytes()
}
