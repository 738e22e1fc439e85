package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Loader reads the pipeline artifact at most once per process and hands out
// the same read-only *Pipeline afterwards. A failed load is memoized too;
// there is no retry.
type Loader struct {
	path   string
	logger zerolog.Logger

	once     sync.Once
	pipeline *Pipeline
	err      error
	loads    atomic.Int32
	ready    atomic.Bool
}

func NewLoader(path string, logger *zerolog.Logger) *Loader {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "model-loader").Logger()
	}
	return &Loader{path: path, logger: base}
}

// Get returns the cached pipeline, loading it on first use.
func (l *Loader) Get() (*Pipeline, error) {
	l.once.Do(func() {
		l.loads.Add(1)
		start := time.Now()

		l.pipeline, l.err = Load(l.path)
		if l.err != nil {
			l.logger.Error().Err(l.err).Str("path", l.path).Msg("load model artifact")
			return
		}
		l.ready.Store(true)

		l.logger.Info().
			Str("path", l.path).
			Str("model", l.pipeline.Name()).
			Str("model_version", l.pipeline.Version()).
			Int("features", len(l.pipeline.features)).
			Int("nodes", len(l.pipeline.nodes)).
			Dur("duration", time.Since(start)).
			Msg("model artifact loaded")
	})
	return l.pipeline, l.err
}

// Loaded reports whether a pipeline is available.
func (l *Loader) Loaded() bool {
	return l.ready.Load()
}

// Loads returns how many times the artifact file was read.
func (l *Loader) Loads() int {
	return int(l.loads.Load())
}

func (l *Loader) Path() string {
	return l.path
}

// ResolvePath anchors a relative artifact path at the directory of the
// running executable. Absolute paths are returned unchanged.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return resolveFrom(filepath.Dir(exe), path), nil
}

func resolveFrom(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
