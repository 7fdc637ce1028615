package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// respondLoadError maps a reload failure to a status and a client-safe
// message. Input problems are reported in detail; anything else is logged
// and answered generically so file system paths stay private.
func (s *Server) respondLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, topology.ErrMissingEntities):
		s.respondError(w, http.StatusUnprocessableEntity, topology.ErrMissingEntities.Error())
	case topology.IsMalformed(err), errors.Is(err, pocket.ErrInconsistentTopology):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, "reload failed")
	}
}

// currentIndex writes 503 and returns nil when no model is loaded.
func (s *Server) currentIndex(w http.ResponseWriter) *pocket.Index {
	ix, err := s.holder.Require()
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return nil
	}
	return ix
}
