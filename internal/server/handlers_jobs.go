package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jonathan/hr-pulse/internal/db"
	"github.com/jonathan/hr-pulse/internal/types"
)

// parseQueryInt parses an integer query parameter, returning def when absent.
func parseQueryInt(r *http.Request, key string, def int) (int, error) {
	raw := trimmedQuery(r, key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

// handleListJobs handles GET /jobs?skill=&limit=.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseQueryInt(r, "limit", types.DefaultJobsLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := types.JobsQuery{Limit: limit, Skill: trimmedQuery(r, "skill")}
	if err := q.Validate(); err != nil {
		s.writeError(w, extractValidationErrors(err))
		return
	}

	if s.jobs == nil {
		s.writeError(w, &ErrUpstream{Service: "database", Cause: errors.New("not configured")})
		return
	}

	jobs, err := s.jobs.ListJobs(r.Context(), db.JobFilter{Limit: q.Limit, Skill: q.Skill})
	if err != nil {
		s.writeError(w, &ErrUpstream{Service: "database", Cause: err})
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}
