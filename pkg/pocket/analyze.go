package pocket

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

// ErrNilSnapshot is returned when Analyze is called without a topology.
var ErrNilSnapshot = errors.New("nil topology snapshot")

type options struct {
	logger          logging.Logger
	metrics         *metrics.Registry
	strictNeighbors bool
}

// Option configures Analyze.
type Option func(*options)

// WithLogger sets the logger used for the analysis summary and warnings.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records analysis results in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) { o.metrics = r }
}

// WithStrictNeighbors turns neighbour graph mismatches into a failed run
// instead of warnings.
func WithStrictNeighbors(strict bool) Option {
	return func(o *options) { o.strictNeighbors = strict }
}

// Analyze runs the whole detection pass: concave adjacency, partition, index.
// A failed run produces no index.
func Analyze(snap *topology.Snapshot, opts ...Option) (*Index, error) {
	o := options{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()

	ix, err := analyze(snap, &o)

	status := "success"
	if err != nil {
		status = "error"
		o.logger.Error("analysis failed", logging.Error(err), logging.Latency(time.Since(start)))
	}
	if o.metrics != nil {
		var s Stats
		if ix != nil {
			s = ix.Stats()
		}
		o.metrics.RecordAnalysis(status, time.Since(start), s.Entities, s.ConcaveLinks, s.Pockets)
	}
	return ix, err
}

func analyze(snap *topology.Snapshot, o *options) (*Index, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}

	if ms := CheckNeighborGraph(snap); len(ms) > 0 {
		if o.strictNeighbors {
			return nil, mismatchError(ms)
		}
		for _, m := range ms {
			o.logger.Warn("concave pair missing from adjacency graph",
				logging.EntityID(m.EntityA), logging.String("neighbor_id", m.EntityB))
		}
	}

	timer := logging.StartTimer(o.logger, "analysis complete")

	adj := BuildAdjacency(snap)
	components := Partition(adj)
	ix := NewIndex(components, len(snap.Entities), adj.Links())

	s := ix.Stats()
	timer.EndWith(
		logging.RunID(ix.RunID()),
		logging.Int("entities", s.Entities),
		logging.Int("concave_links", s.ConcaveLinks),
		logging.Int("pockets", s.Pockets),
		logging.Int("largest_pocket", s.LargestPocket),
	)
	return ix, nil
}
