// Package gateway validates client requests and forwards them to the ShareIt server.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/shareit/shareit-api/internal/middleware"
	"github.com/shareit/shareit-api/internal/pkg/errorhandler"
	"github.com/shareit/shareit-api/internal/pkg/metrics"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/upstream"
	"github.com/shareit/shareit-api/internal/pkg/validator"
)

const maxRequestBody = 1 << 20

// Forwarder sends a request to the server
type Forwarder interface {
	Do(ctx context.Context, req upstream.Request) (*upstream.Response, error)
}

// Handler validates and forwards requests
type Handler struct {
	client Forwarder
	now    func() time.Time
}

// NewHandler creates gateway handler
func NewHandler(client Forwarder) *Handler {
	return &Handler{client: client, now: time.Now}
}

// readBody reads the JSON body into v and validates it. The raw bytes are
// returned so the server receives the body exactly as sent.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request, v interface{}) ([]byte, bool) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return nil, false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return nil, false
	}
	if errs := validator.Validate(v); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return nil, false
	}
	return raw, true
}

// forward relays the request to path on the server and writes back whatever it answers.
func (h *Handler) forward(w http.ResponseWriter, r *http.Request, path string, body []byte) {
	resp, err := h.client.Do(r.Context(), upstream.Request{
		Method:    r.Method,
		Path:      path,
		Query:     r.URL.Query(),
		UserID:    middleware.GetUserID(r.Context()),
		RequestID: middleware.GetRequestID(r.Context()),
		Body:      body,
	})
	if err != nil {
		h.writeUpstreamError(w, r, path, err)
		return
	}

	if resp.ContentDisposition != "" {
		w.Header().Set("Content-Disposition", resp.ContentDisposition)
	}
	response.Raw(w, resp.StatusCode, resp.ContentType, resp.Body)
}

func (h *Handler) writeUpstreamError(w http.ResponseWriter, r *http.Request, path string, err error) {
	switch {
	case errors.Is(err, upstream.ErrTimeout):
		metrics.IncUpstreamError("timeout")
		errorhandler.LogExternalServiceError(r.Context(), "shareit-server", path, http.StatusGatewayTimeout, err)
		response.GatewayTimeout(w, "ShareIt server did not respond in time")
	case errors.Is(err, upstream.ErrUnavailable):
		metrics.IncUpstreamError("unavailable")
		errorhandler.LogExternalServiceError(r.Context(), "shareit-server", path, http.StatusBadGateway, err)
		response.BadGateway(w, "ShareIt server is unavailable")
	default:
		metrics.IncUpstreamError("other")
		errorhandler.Internal(r.Context(), w, err)
	}
}
