package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aminofox/loopcast/pkg/errors"
	"github.com/aminofox/loopcast/pkg/logger"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleMaster serves GET /hls/index.m3u8 (spec §6.2): the stable master
// playlist, identical on every request.
func (s *Server) handleMaster(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Write([]byte(s.playlist.RenderMaster(s.config.Base)))
}

// handleVariant serves GET /hls/variant{N}.m3u8 (spec §6.2): any other
// path under /hls/ than index.m3u8 is resolved against the stream
// index N, and an out-of-range N is a 404 (spec §6.2's "any other N").
func (s *Server) handleVariant(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/hls/")
	idx, ok := parseVariantIndex(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	now := time.Now()
	second := now.Unix()

	if s.cache != nil {
		if text, hit, err := s.cache.Get(r.Context(), idx, second); err == nil && hit {
			w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
			w.Write([]byte(text))
			return
		}
	}

	text, err := s.playlist.RenderVariant(idx, now, s.config.Speed, s.config.MediaBase)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.cache != nil {
		ttl := s.cacheTTL
		if ttl <= 0 {
			ttl = time.Second
		}
		_ = s.cache.Set(r.Context(), idx, second, text, ttl)
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Write([]byte(text))
}

// parseVariantIndex extracts N from "variantN.m3u8".
func parseVariantIndex(name string) (int, bool) {
	const prefix, suffix = "variant", ".m3u8"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// handleSchedule serves GET /schedule (SPEC_FULL §13): the channel's
// source-level run-down as JSON, for operators and dashboards.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sched := s.playlist.Schedule()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scheduleDTO(sched))
}

// handleInspect serves GET /inspect (SPEC_FULL §13): the current
// playhead for every configured stream, for on-call debugging of "what
// is live right now" without decoding a media playlist by hand.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	type streamView struct {
		Name           string  `json:"name"`
		SourceVid      uint32  `json:"source_vid"`
		LoopIndex      uint64  `json:"loop_index"`
		SourceIndex    int     `json:"source_index"`
		OffsetInSource float64 `json:"offset_in_source_seconds"`
		Discontinuity  uint64  `json:"discontinuity_sequence"`
	}
	views := make([]streamView, len(s.playlist.Streams))
	for i, stream := range s.playlist.Streams {
		ph := s.playlist.Locate(now, s.config.Speed)
		views[i] = streamView{
			Name:           stream.Spec.Name,
			SourceVid:      stream.Sources[ph.SourceIndex].Vid,
			LoopIndex:      ph.LoopIndex,
			SourceIndex:    ph.SourceIndex,
			OffsetInSource: ph.OffsetInSource.ToSeconds(s.playlist.Step),
			Discontinuity:  ph.Discontinuity,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Now     time.Time    `json:"now"`
		Streams []streamView `json:"streams"`
	}{Now: now, Streams: views})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.IsErrorCode(err, errors.ErrCodeUnknownVariant) || errors.IsErrorCode(err, errors.ErrCodeNotFound) {
		status = http.StatusNotFound
	}
	fields := []logger.Field{
		logger.String("path", r.URL.Path),
		logger.String("request_id", requestID(r)),
		logger.Err(err),
	}
	if status == http.StatusNotFound {
		s.logger.Debug("httpapi: request failed", fields...)
	} else {
		s.logger.Warn("httpapi: request failed", fields...)
	}
	http.Error(w, err.Error(), status)
}
