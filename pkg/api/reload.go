package api

import (
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/notify"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

// Reload triggers
const (
	TriggerStartup = "startup"
	TriggerSignal  = "signal"
	TriggerAPI     = "api"
)

// Reload loads the model directory, analyses it and swaps the new index in.
// On failure the previous index keeps being served. Concurrent calls run
// one after another.
func (s *Server) Reload(trigger string) (*pocket.Index, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	logger := s.logger.With(logging.Operation("reload"), logging.String("trigger", trigger))
	start := time.Now()

	ix, err := s.load(logger)
	s.setLastErr(err)
	if err != nil {
		s.metrics.RecordReload(trigger, "error")
		logger.Error("model reload failed", logging.Error(err), logging.Latency(time.Since(start)))
		return nil, err
	}
	s.metrics.RecordReload(trigger, "success")

	prev := s.holder.Store(ix)
	fields := []logging.Field{
		logging.RunID(ix.RunID()),
		logging.Count(ix.PocketCount()),
		logging.Latency(time.Since(start)),
	}
	if prev != nil {
		fields = append(fields, logging.String("previous_run_id", prev.RunID()))
	}
	logger.Info("model reloaded", fields...)

	// Clients poll the API anyway; a lost notification is only logged
	if err := s.notifier.Publish(notify.ModelLoaded(ix)); err != nil {
		logger.Warn("model loaded notification failed", logging.Error(err))
	}
	return ix, nil
}

func (s *Server) load(logger logging.Logger) (*pocket.Index, error) {
	snap, err := topology.LoadDir(s.cfg.ModelDir, topology.LoadOptions{
		DecodeOptions: topology.DecodeOptions{Delimiter: s.cfg.Delimiter},
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	return pocket.Analyze(snap,
		pocket.WithLogger(logger),
		pocket.WithMetrics(s.metrics),
		pocket.WithStrictNeighbors(s.cfg.StrictNeighbors),
	)
}

func (s *Server) setLastErr(err error) {
	s.lastErrMu.Lock()
	defer s.lastErrMu.Unlock()
	s.lastErr = err
}
