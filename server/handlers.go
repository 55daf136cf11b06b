package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paulmach/profile"
	"github.com/paulmach/profile/export"
	"github.com/paulmach/profile/geojsonio"
)

const (
	maxBodySize = 10 << 20

	defaultPNGWidth  = 800
	defaultPNGHeight = 300
	maxPNGDim        = 4096
)

type ctxKey struct{}

// ProfileResponse is the JSON view of a session profile.
type ProfileResponse struct {
	ID      string           `json:"id"`
	State   string           `json:"state"`
	Samples []profile.Sample `json:"samples"`
	Summary *profile.Summary `json:"summary,omitempty"`
	Details string           `json:"details,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, errors.New("session not found"))
			return
		}

		sess, ok := s.session(id)
		if !ok {
			writeError(w, http.StatusNotFound, errors.New("session not found"))
			return
		}

		sess.touch(time.Now())

		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session {
	return r.Context().Value(ctxKey{}).(*session)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.newSession()
	s.logger.InfoContext(r.Context(), "session created", "session", sess.id)

	writeJSON(w, http.StatusCreated, sess.response())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.removeSession(sess.id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setPath(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("reading body: %w", err))
		return
	}

	path, err := geojsonio.Decode(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err = sess.profile.SetPath(r.Context(), path)
	switch {
	case err == nil:
	case profile.IsInputError(err):
		writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, profile.ErrSuperseded):
		writeError(w, http.StatusConflict, err)
		return
	default:
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, http.StatusOK, sess.response())
}

func (s *Server) clearPath(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	// clearing never fails
	_ = sess.profile.SetPath(r.Context(), nil)
	writeJSON(w, http.StatusOK, sess.response())
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).response())
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := sessionFrom(r).chart.Render(w); err != nil {
		s.logger.ErrorContext(r.Context(), "chart render failed", "error", err)
	}
}

func (s *Server) getChartPNG(w http.ResponseWriter, r *http.Request) {
	width, err := dimension(r, "width", defaultPNGWidth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	height, err := dimension(r, "height", defaultPNGHeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := sessionFrom(r).chart.RenderPNG(w, width, height); err != nil {
		s.logger.ErrorContext(r.Context(), "chart png render failed", "error", err)
	}
}

func (s *Server) getIndicator(w http.ResponseWriter, r *http.Request) {
	distance, err := strconv.ParseFloat(r.URL.Query().Get("distance"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid distance: %w", err))
		return
	}

	sample, ok := sessionFrom(r).chart.IndicatorAt(distance)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no profile"))
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

func (s *Server) getKML(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if !sess.chart.Active() {
		writeError(w, http.StatusNotFound, errors.New("no profile"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="profile.kml"`)

	annotated := annotatedFromSamples(sess.chart.Samples())
	if err := export.KML(w, "Profile", annotated); err != nil {
		s.logger.ErrorContext(r.Context(), "kml export failed", "error", err)
	}
}

func (sess *session) response() ProfileResponse {
	resp := ProfileResponse{
		ID:      sess.id.String(),
		State:   sess.profile.State().String(),
		Samples: sess.chart.Samples(),
	}

	if summary, ok := sess.chart.Summary(); ok {
		resp.Summary = &summary
		resp.Details = sess.chart.Details()
	}

	return resp
}

// annotatedFromSamples splits the samples back into parts, a new part
// starts wherever the vertex index goes back to zero.
func annotatedFromSamples(samples []profile.Sample) profile.AnnotatedPath {
	var result profile.AnnotatedPath
	for _, s := range samples {
		if s.Index == 0 || len(result) == 0 {
			result = append(result, nil)
		}

		last := len(result) - 1
		result[last] = append(result[last], s.Coordinate)
	}

	return result
}

func dimension(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}

	d, err := strconv.Atoi(v)
	if err != nil || d <= 0 || d > maxPNGDim {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}

	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
