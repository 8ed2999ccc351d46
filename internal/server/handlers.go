package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
	"git.home.luguber.info/inful/formtrack/internal/classify"
	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
)

// ClassifyResult is one classified entry in a /classify response.
type ClassifyResult struct {
	classify.ErrorEntry
	classify.Classification
	Event analytics.Event `json:"event"`
}

func classifyResult(e classify.ErrorEntry) ClassifyResult {
	c := classify.ClassifyEntry(e)
	return ClassifyResult{ErrorEntry: e, Classification: c, Event: analytics.FromClassification(c)}
}

// handleClassify accepts one entry object or a list of them.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(s.limit(w, r))
	if err != nil {
		s.writeReadError(w, r, err)
		return
	}
	body = bytes.TrimSpace(body)

	if bytes.HasPrefix(body, []byte("[")) {
		var entries []classify.ErrorEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			s.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryValidation, "invalid classify request").Build())
			return
		}
		out := make([]ClassifyResult, 0, len(entries))
		for _, e := range entries {
			out = append(out, classifyResult(e))
		}
		s.Success(w, http.StatusOK, out)
		return
	}

	var entry classify.ErrorEntry
	if err := json.Unmarshal(body, &entry); err != nil {
		s.adapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryValidation, "invalid classify request").Build())
		return
	}
	s.Success(w, http.StatusOK, classifyResult(entry))
}

// handlePages runs a posted HTML page through the tracker.
func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.Header.Get("X-Page-Source"))
	if source == "" {
		source = "http"
	}
	pv := analytics.NewPageView(source)
	pv.Path = r.Header.Get("X-Page-Path")

	res, err := s.deps.Tracker.ProcessPageView(r.Context(), pv, s.limit(w, r))
	switch {
	case err == nil:
		s.Success(w, http.StatusOK, res)
	case res != nil:
		// Events were produced but not all were delivered.
		writeJSON(w, s.adapter.StatusCodeFor(err), Response{Success: false, Data: res, Error: err.Error()})
	default:
		s.writeReadError(w, r, err)
	}
}

// StatsResponse is the /stats payload.
type StatsResponse struct {
	Events    int                `json:"events"`
	PageViews int                `json:"page_views"`
	Top       []eventstore.Count `json:"top"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Projection == nil {
		s.adapter.WriteErrorResponse(w, r, errors.NewError(errors.CategoryNotFound, "event store is not enabled").Build())
		return
	}
	top := 10
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.adapter.WriteErrorResponse(w, r, errors.ValidationError("top must be a non-negative integer").
				WithContext("top", raw).
				Build())
			return
		}
		top = n
	}
	events, pageViews := s.deps.Projection.Totals()
	s.Success(w, http.StatusOK, StatsResponse{Events: events, PageViews: pageViews, Top: s.deps.Projection.Top(top)})
}

// FailedResponse lists dead-lettered events.
type FailedResponse struct {
	Total  int                    `json:"total"`
	Events []pipeline.FailedEvent `json:"events"`
}

func (s *Server) handleListFailed(w http.ResponseWriter, _ *http.Request) {
	failed := s.deps.Tracker.DeadLetters().GetAll()
	s.Success(w, http.StatusOK, FailedResponse{Total: len(failed), Events: failed})
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Tracker.Replay(r.Context())
	if err != nil {
		writeJSON(w, s.adapter.StatusCodeFor(err), Response{Success: false, Data: map[string]int{"replayed": n}, Error: err.Error()})
		return
	}
	s.Success(w, http.StatusOK, map[string]int{"replayed": n})
}

func (s *Server) handleClearFailed(w http.ResponseWriter, _ *http.Request) {
	s.deps.Tracker.DeadLetters().Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) limit(w http.ResponseWriter, r *http.Request) io.Reader {
	if s.maxBody <= 0 {
		return r.Body
	}
	return http.MaxBytesReader(w, r.Body, s.maxBody)
}

func (s *Server) writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		s.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	s.adapter.WriteErrorResponse(w, r, err)
}
