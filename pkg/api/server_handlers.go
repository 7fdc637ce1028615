package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ix := s.currentIndex(w)
	if ix == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, SummaryResponse{
		RunID:       ix.RunID(),
		CreatedAt:   ix.CreatedAt(),
		PocketCount: ix.PocketCount(),
		Stats:       ix.Stats(),
	})
}

func (s *Server) handlePockets(w http.ResponseWriter, r *http.Request) {
	ix := s.currentIndex(w)
	if ix == nil {
		return
	}
	s.respondJSON(w, http.StatusOK, PocketsResponse{
		RunID:   ix.RunID(),
		Pockets: ix.Pockets(),
	})
}

func (s *Server) handlePocket(w http.ResponseWriter, r *http.Request) {
	ix := s.currentIndex(w)
	if ix == nil {
		return
	}

	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "pocket index must be an integer")
		return
	}
	p, ok := ix.Pocket(n)
	if !ok {
		s.logger.Debug("pocket index out of range", logging.PocketIndex(n), logging.Count(ix.PocketCount()))
		s.respondError(w, http.StatusNotFound, "pocket "+strconv.Itoa(n)+" does not exist")
		return
	}
	s.respondJSON(w, http.StatusOK, PocketResponse{RunID: ix.RunID(), Pocket: p})
}

// handleEntity never 404s: an id the model does not know is simply in no pocket.
func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	ix := s.currentIndex(w)
	if ix == nil {
		return
	}

	id := r.PathValue("id")
	resp := EntityResponse{
		RunID:    ix.RunID(),
		EntityID: id,
		Color:    ix.Color(id),
	}
	if n, ok := ix.PocketOf(id); ok {
		resp.InPocket = true
		resp.Pocket = &n
	}
	s.metrics.RecordPocketQuery("rest", resp.InPocket)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	prev := s.holder.Current()

	ix, err := s.Reload(TriggerAPI)
	if err != nil {
		s.respondLoadError(w, err)
		return
	}

	resp := ReloadResponse{
		RunID:          ix.RunID(),
		PocketCount:    ix.PocketCount(),
		Entities:       ix.Stats().Entities,
		ConcaveLinks:   ix.Stats().ConcaveLinks,
		DurationMillis: time.Since(start).Milliseconds(),
	}
	if prev != nil {
		resp.PreviousRunID = prev.RunID()
	}
	s.respondJSON(w, http.StatusOK, resp)
}
