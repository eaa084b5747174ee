// Package handlers provides HTTP handlers for SKU growth projections.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/skusim/internal/modules/export"
	"github.com/aristath/skusim/internal/modules/presentation"
	"github.com/aristath/skusim/internal/modules/projection"
)

const (
	contentTypeMsgpack = "application/msgpack"
	maxBodyBytes       = 1 << 20
)

// Handler handles projection HTTP requests
type Handler struct {
	sink           export.Sink
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new projection handler. sink may be nil, in which case storing
// exports is reported as unavailable. originPatterns lists the hosts allowed to open the
// live socket from a browser; empty means same-origin only.
func NewHandler(sink export.Sink, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{
		sink:           sink,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "projection").Logger(),
	}
}

// HandleGetDefaults handles GET /api/projection/defaults
func (h *Handler) HandleGetDefaults(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"input":  projection.DefaultInput(),
		"bounds": projection.DefaultBounds(),
	})
}

// HandleCompute handles POST /api/projection/compute
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	id, res := h.compute(in)

	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"id":     id,
		"input":  in,
		"result": res,
	})
}

// HandleView handles POST /api/projection/view
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	id, res := h.compute(in)

	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"id":   id,
		"view": presentation.BuildView(in, res),
	})
}

// HandleExport handles POST /api/projection/export?format=csv|xlsx
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	_, res := h.compute(in)
	body, err := export.Render(format, presentation.BuildView(in, res))
	if err != nil {
		h.log.Error().Err(err).Str("format", string(format)).Msg("Failed to render export")
		h.writeError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName(format)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to write export")
	}
}

// HandleStoreExport handles POST /api/projection/export/store?format=csv|xlsx
func (h *Handler) HandleStoreExport(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		h.writeError(w, http.StatusServiceUnavailable, "Export storage is not configured")
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	id, res := h.compute(in)
	body, err := export.Render(format, presentation.BuildView(in, res))
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to render export")
		h.writeError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	loc, err := h.sink.Put(r.Context(), export.FileName(format), format.ContentType(), body)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to store export")
		h.writeError(w, http.StatusBadGateway, "Failed to store export")
		return
	}

	h.log.Info().Str("id", id).Str("uri", loc.URI).Int("bytes", len(body)).Msg("Export stored")

	h.writeData(w, r, http.StatusCreated, map[string]interface{}{
		"id":       id,
		"format":   format,
		"location": loc,
	})
}

// compute runs the engine and tags the run with an id for log correlation.
func (h *Handler) compute(in projection.Input) (string, projection.Result) {
	start := time.Now()
	id := uuid.NewString()
	res := projection.Compute(in)

	h.log.Debug().
		Str("id", id).
		Int("entities", len(in.Entities)).
		Int64("total_added", res.TotalAdded).
		Float64("blended_margin_rate", res.BlendedMarginRate).
		Dur("duration", time.Since(start)).
		Msg("Projection computed")

	return id, res
}

// decodeInput reads and validates the request body, writing the error response itself
// when it returns false.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (projection.Input, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read request body")
		return projection.Input{}, false
	}

	in, err := parseInput(body)
	if err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return projection.Input{}, false
	}

	if err := projection.Validate(in); err != nil {
		var verr *projection.ValidationError
		if errors.As(err, &verr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  err.Error(),
				"fields": verr.Fields,
			})
			return projection.Input{}, false
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return projection.Input{}, false
	}

	return in, true
}

func parseInput(body []byte) (projection.Input, error) {
	var in projection.Input
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return projection.Input{}, err
	}
	return in, nil
}

func wantsMsgpack(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

// writeData wraps data in the standard envelope, encoding it as msgpack when asked to.
func (h *Handler) writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	if wantsMsgpack(r) {
		payload, err := msgpack.Marshal(response)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			h.writeError(w, http.StatusInternalServerError, "Failed to encode response")
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		w.WriteHeader(status)
		if _, err := w.Write(payload); err != nil {
			h.log.Error().Err(err).Msg("Failed to write msgpack response")
		}
		return
	}

	h.writeJSON(w, status, response)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
