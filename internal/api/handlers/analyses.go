package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"solar-siting-service/internal/api/dto"
	"solar-siting-service/internal/domain"
	"solar-siting-service/internal/services"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SiteAnalyzer is the siting pipeline as seen by the HTTP layer.
type SiteAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest, onProgress services.ProgressFunc) ([]domain.SolarResult, error)
}

// AnalysisHandler exposes the siting pipeline as a JSON endpoint and as an
// event stream with live progress.
type AnalysisHandler struct {
	Analyzer    SiteAnalyzer
	MaxRadiusKm float64
	Log         *zap.Logger
}

func NewAnalysisHandler(a SiteAnalyzer, maxRadiusKm float64, log *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{Analyzer: a, MaxRadiusKm: maxRadiusKm, Log: log}
}

// Create runs one analysis and returns the ranked results.
func (h *AnalysisHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body dto.AnalysisRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&body); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, h.Log, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	req := domain.AnalysisRequest{
		Center:   domain.Coordinates{Lat: body.Center.Lat, Lng: body.Center.Lng},
		RadiusKm: body.RadiusKm,
	}
	if err := h.validate(req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	runID := uuid.NewString()
	results, err := h.Analyzer.Analyze(r.Context(), req, nil)
	if err != nil {
		h.fail(w, r, runID, err)
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.NewAnalysisResponse(runID, results))
}

// Stream runs one analysis and reports it as Server-Sent Events: a "progress"
// event per milestone followed by a single "result" (or "error") event.
// Closing the connection cancels the run.
func (h *AnalysisHandler) Stream(w http.ResponseWriter, r *http.Request) {
	req, err := parseStreamQuery(r)
	if err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, h.Log, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	runID := uuid.NewString()

	type outcome struct {
		results []domain.SolarResult
		err     error
	}

	events := make(chan services.ProgressEvent, 8)
	done := make(chan outcome, 1)
	go func() {
		res, err := h.Analyzer.Analyze(ctx, req, services.ChannelReporter(ctx, runID, events))
		done <- outcome{results: res, err: err}
	}()

	send := func(event string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			h.Log.Warn("encode event failed", zap.String("event", event), zap.Error(err))
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
		flusher.Flush()
	}

	for {
		select {
		case ev := <-events:
			send("progress", dto.ProgressResponse{RunID: ev.RunID, Percent: ev.Percent})
		case out := <-done:
			// Progress sent before the run returned may still be buffered.
			for drained := false; !drained; {
				select {
				case ev := <-events:
					send("progress", dto.ProgressResponse{RunID: ev.RunID, Percent: ev.Percent})
				default:
					drained = true
				}
			}

			if out.err != nil {
				if !errors.Is(out.err, context.Canceled) {
					h.Log.Error("analysis failed", zap.String("run_id", runID), zap.Error(out.err))
					send("error", map[string]string{"run_id": runID, "error": "analysis failed"})
				}
				return
			}
			send("result", dto.NewAnalysisResponse(runID, out.results))
			return
		}
	}
}

func (h *AnalysisHandler) validate(req domain.AnalysisRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if h.MaxRadiusKm > 0 && req.RadiusKm > h.MaxRadiusKm {
		return fmt.Errorf("%w: radius %v km exceeds maximum %v km", domain.ErrInvalidArgument, req.RadiusKm, h.MaxRadiusKm)
	}
	return nil
}

func (h *AnalysisHandler) fail(w http.ResponseWriter, r *http.Request, runID string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, r, h.Log, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is listening for a response.
		h.Log.Info("analysis cancelled", zap.String("run_id", runID))
	default:
		h.Log.Error("analysis failed", zap.String("run_id", runID), zap.Error(err))
		writeError(w, r, h.Log, http.StatusInternalServerError, "internal server error")
	}
}

func parseStreamQuery(r *http.Request) (domain.AnalysisRequest, error) {
	q := r.URL.Query()

	parse := func(key string) (float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return 0, fmt.Errorf("%s is required", key)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		return v, nil
	}

	lat, err := parse("lat")
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	lng, err := parse("lng")
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	radius, err := parse("radius_km")
	if err != nil {
		return domain.AnalysisRequest{}, err
	}

	return domain.AnalysisRequest{
		Center:   domain.Coordinates{Lat: lat, Lng: lng},
		RadiusKm: radius,
	}, nil
}
