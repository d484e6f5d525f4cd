package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stordev/sitescout/internal/id/uuid"
	"github.com/stordev/sitescout/internal/sites"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	defaultRunLimit  = 20
	maxRunLimit      = 200
)

// listCandidates handles GET /v1/candidates?state=&county=&status=&min_score=&limit=&offset=.
func (s *Server) listCandidates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	q := r.URL.Query()
	filter := sites.CandidateFilter{
		State:  strings.TrimSpace(q.Get("state")),
		County: strings.TrimSpace(q.Get("county")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := parseCandidateStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if raw := q.Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_score")
			return
		}
		filter.MinScore = &v
	}
	limit, offset, err := parseLimitOffset(r, defaultListLimit, maxListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit, filter.Offset = limit, offset

	candidates, err := s.stores.Candidates.List(ctx, filter)
	if err != nil {
		s.logger.Error("list candidates failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list candidates")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": orEmpty(candidates)})
}

// getCandidate handles GET /v1/candidates/{candidate_id}, assembling the
// candidate with whichever analyses exist for it so far.
func (s *Server) getCandidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "candidate_id")
	if err := uuid.Validate(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid candidate id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	candidate, err := s.stores.Candidates.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sites.ErrNotFound) {
			writeError(w, http.StatusNotFound, "candidate not found")
			return
		}
		s.logger.Error("get candidate failed", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "failed to load candidate")
		return
	}
	detail := sites.CandidateDetail{Candidate: candidate}

	parcel, err := s.stores.Parcels.GetByCandidate(ctx, id)
	switch {
	case err == nil:
		detail.Parcel = &parcel
	case !errors.Is(err, sites.ErrNotFound):
		s.logger.Error("get parcel failed", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "failed to load candidate")
		return
	}

	saturation, err := s.stores.Saturations.GetByCandidate(ctx, id)
	switch {
	case err == nil:
		detail.Saturation = &saturation
	case !errors.Is(err, sites.ErrNotFound):
		s.logger.Error("get saturation failed", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "failed to load candidate")
		return
	}

	scores, err := s.stores.Scores.GetByCandidate(ctx, id)
	switch {
	case err == nil:
		detail.Scores = &scores
	case !errors.Is(err, sites.ErrNotFound):
		s.logger.Error("get scores failed", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "failed to load candidate")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// listCounties handles GET /v1/counties?state=.
func (s *Server) listCounties(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	counties, err := s.stores.Counties.List(ctx, strings.TrimSpace(r.URL.Query().Get("state")))
	if err != nil {
		s.logger.Error("list counties failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list counties")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counties": orEmpty(counties)})
}

// getZip handles GET /v1/zips/{zip}.
func (s *Server) getZip(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")
	if !isZip(zip) {
		writeError(w, http.StatusBadRequest, "invalid zip")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	z, err := s.stores.Zips.Get(ctx, zip)
	if err != nil {
		if errors.Is(err, sites.ErrNotFound) {
			writeError(w, http.StatusNotFound, "zip not found")
			return
		}
		s.logger.Error("get zip failed", zap.Error(err), zap.String("zip", zip))
		writeError(w, http.StatusInternalServerError, "failed to load zip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"zip": z})
}

// listSignals handles GET /v1/signals?kind=&state=, serving flattened map
// pins from one signal table at a time.
func (s *Server) listSignals(w http.ResponseWriter, r *http.Request) {
	kind, err := parseSignalKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	pins, err := s.stores.Signals.ListPins(ctx, kind, strings.TrimSpace(r.URL.Query().Get("state")))
	if err != nil {
		s.logger.Error("list signals failed", zap.Error(err), zap.String("kind", string(kind)))
		writeError(w, http.StatusInternalServerError, "failed to list signals")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pins": orEmpty(pins)})
}

// listPermits handles GET /v1/permits?county=&state=&classification=&development=&limit=.
func (s *Server) listPermits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := sites.PermitFilter{
		County:      strings.TrimSpace(q.Get("county")),
		State:       strings.TrimSpace(q.Get("state")),
		Development: strings.TrimSpace(q.Get("development")),
	}
	if raw := strings.TrimSpace(q.Get("classification")); raw != "" {
		class, err := parsePermitClass(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Classification = class
	}
	limit, err := parseLimit(r, defaultListLimit, maxListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit = limit

	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	permits, err := s.stores.Permits.List(ctx, filter)
	if err != nil {
		s.logger.Error("list permits failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list permits")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permits": orEmpty(permits)})
}

// listRuns handles GET /v1/runs?source=&limit=.
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultRunLimit, maxRunLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), queryTimeout)
	defer cancel()

	runs, err := s.stores.Runs.ListRuns(ctx, strings.TrimSpace(r.URL.Query().Get("source")), limit)
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": orEmpty(runs)})
}

func parseCandidateStatus(input string) (sites.CandidateStatus, error) {
	switch strings.ToLower(input) {
	case "pending":
		return sites.StatusPending, nil
	case "scored":
		return sites.StatusScored, nil
	case "reviewed":
		return sites.StatusReviewed, nil
	default:
		return "", errors.New("invalid status")
	}
}

func parseSignalKind(input string) (sites.SignalKind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case string(sites.SignalLogistics):
		return sites.SignalLogistics, nil
	case string(sites.SignalStorage):
		return sites.SignalStorage, nil
	case string(sites.SignalMilitary):
		return sites.SignalMilitary, nil
	case string(sites.SignalUniversity):
		return sites.SignalUniversity, nil
	case "":
		return "", errors.New("kind is required")
	default:
		return "", errors.New("invalid kind")
	}
}

func parsePermitClass(input string) (sites.PermitClass, error) {
	switch strings.ToLower(input) {
	case string(sites.PermitMultiUnit):
		return sites.PermitMultiUnit, nil
	case string(sites.PermitSingleFamily):
		return sites.PermitSingleFamily, nil
	case string(sites.PermitOther):
		return sites.PermitOther, nil
	default:
		return "", errors.New("invalid classification")
	}
}

func parseLimitOffset(r *http.Request, def, maxLimit int) (int, int, error) {
	limit, err := parseLimit(r, def, maxLimit)
	if err != nil {
		return 0, 0, err
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}

func parseLimit(r *http.Request, def, maxLimit int) (int, error) {
	limit := def
	if raw := r.URL.Query().Get("limit"); raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil || val <= 0 {
			return 0, errors.New("invalid limit")
		}
		if val > maxLimit {
			val = maxLimit
		}
		limit = val
	}
	return limit, nil
}

func isZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// orEmpty keeps empty listings rendering as [] rather than null.
func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
