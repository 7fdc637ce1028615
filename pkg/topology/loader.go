package topology

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// Dump file names inside a model directory.
const (
	EntitiesFile  = "entity_geometry_info.json"
	EdgesFile     = "adjacency_graph_edge_metadata.json"
	NeighborsFile = "adjacency_graph.json"

	// SnappySuffix marks a snappy-framed variant of a dump file.
	SnappySuffix = ".sz"
)

// LoadOptions controls LoadDir.
type LoadOptions struct {
	DecodeOptions
	Logger logging.Logger
}

// LoadDir reads a model directory. The entity file is required; the edge
// table and neighbor graph are optional. Each file may be stored plain or
// snappy-framed with the .sz suffix.
func LoadDir(dir string, opts LoadOptions) (*Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("topology"), logging.Path(dir))
	timer := logging.StartTimer(logger, "topology loaded")

	entities, err := openDump(dir, EntitiesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrMissingEntities, dir)
		}
		return nil, err
	}
	defer entities.Close()

	edges, err := openOptional(dir, EdgesFile, logger)
	if err != nil {
		return nil, err
	}
	if edges != nil {
		defer edges.Close()
	}

	neighbors, err := openOptional(dir, NeighborsFile, logger)
	if err != nil {
		return nil, err
	}
	if neighbors != nil {
		defer neighbors.Close()
	}

	snap, err := Decode(entities, readerOrNil(edges), readerOrNil(neighbors), opts.DecodeOptions)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	timer.EndWith(
		logging.Int("entities", len(snap.Entities)),
		logging.Int("edges", len(snap.Edges)),
		logging.Bool("neighbor_graph", snap.HasNeighborGraph()),
	)
	return snap, nil
}

// readerOrNil keeps a nil *dumpReader from becoming a non-nil io.Reader.
func readerOrNil(d *dumpReader) io.Reader {
	if d == nil {
		return nil
	}
	return d
}

func openOptional(dir, name string, logger logging.Logger) (*dumpReader, error) {
	d, err := openDump(dir, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("optional dump file absent", logging.String("file", name))
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// dumpReader streams one dump file from either a memory map or a snappy stream.
type dumpReader struct {
	io.Reader
	closer io.Closer
}

func (d *dumpReader) Close() error {
	return d.closer.Close()
}

// openDump prefers the plain file, mapped read-only, and falls back to the
// snappy-framed variant.
func openDump(dir, name string) (*dumpReader, error) {
	plain := filepath.Join(dir, name)
	if _, err := os.Stat(plain); err == nil {
		m, err := mmap.Open(plain)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", name, err)
		}
		return &dumpReader{Reader: io.NewSectionReader(m, 0, int64(m.Len())), closer: m}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}

	f, err := os.Open(plain + SnappySuffix)
	if err != nil {
		return nil, err
	}
	return &dumpReader{Reader: snappy.NewReader(f), closer: f}, nil
}
