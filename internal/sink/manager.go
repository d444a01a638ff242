package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jonboulle/clockwork"
)

// Manager owns every output resource for one bag's extraction. Sinks are
// created lazily on the first accepted message for a topic and stay bound to
// that topic until CloseAll. A Manager is not safe for concurrent use and
// must not outlive its bag.
type Manager struct {
	baseDir string
	clock   clockwork.Clock
	logger  *slog.Logger

	tabular map[string]*TabularSink
	images  map[string]*ImageSink
	closed  bool
}

// NewManager creates a Manager rooted at <outputDir>/<bagName>.
func NewManager(outputDir, bagName string, clock clockwork.Clock, logger *slog.Logger) *Manager {
	return &Manager{
		baseDir: filepath.Join(outputDir, bagName),
		clock:   clock,
		logger:  logger,
		tabular: make(map[string]*TabularSink),
		images:  make(map[string]*ImageSink),
	}
}

// TabularSink returns the CSV sink for topic, creating <baseDir>/<name>.csv
// with the given header on first call. Later calls ignore name and columns
// and return the existing sink.
func (m *Manager) TabularSink(topic, name string, columns []string) (*TabularSink, error) {
	if s, ok := m.tabular[topic]; ok {
		return s, nil
	}

	path := filepath.Join(m.baseDir, name+".csv")
	s, err := newTabularSink(path, columns)
	if err != nil {
		return nil, fmt.Errorf("topic %s: %w", topic, err)
	}

	m.logger.Debug("opened csv sink", "topic", topic, "path", path, "columns", columns)
	m.tabular[topic] = s
	return s, nil
}

// ImageSink returns the image-directory sink for topic, creating
// <baseDir>/<name>/ on first call.
func (m *Manager) ImageSink(topic, name string) (*ImageSink, error) {
	if s, ok := m.images[topic]; ok {
		return s, nil
	}

	dir := filepath.Join(m.baseDir, name)
	s, err := newImageSink(dir, m.clock.Now)
	if err != nil {
		return nil, fmt.Errorf("topic %s: %w", topic, err)
	}

	m.logger.Debug("opened image sink", "topic", topic, "dir", dir)
	m.images[topic] = s
	return s, nil
}

// CloseAll flushes and releases every open tabular sink. Image directories
// need no explicit close. Safe to call once per bag only; repeated calls are
// no-ops so a deferred close after an explicit one cannot double-close.
func (m *Manager) CloseAll() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for topic, s := range m.tabular {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("topic %s: %w", topic, err))
		}
	}
	return errors.Join(errs...)
}
