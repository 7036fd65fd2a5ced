package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"sheet_ai_server/internal/utils"

	"go.uber.org/zap"
)

// maxCreateAttempts bounds the number of fresh names tried when a generated name already exists.
const maxCreateAttempts = 5

// NamePattern matches every file name produced by Store.Create.
var NamePattern = regexp.MustCompile(`^sheet-\d+-[A-Za-z0-9]{6}\.xlsx$`)

// File is a spreadsheet materialized in the output directory.
type File struct {
	Name string // base name, used as the download file name
	Path string
}

// Store owns the output directory: it hands out unique file names and deletes files after a delay.
type Store struct {
	dir    string
	delay  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer

	now func() time.Time
}

// NewStore creates the output directory if it does not exist.
func NewStore(dir string, delay time.Duration, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", dir, err)
	}
	return &Store{
		dir:     abs,
		delay:   delay,
		logger:  logger,
		pending: make(map[string]*time.Timer),
		now:     time.Now,
	}, nil
}

// Dir returns the absolute path of the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Create opens a new, previously non-existent file named sheet-<epoch-millis>-<id>.xlsx.
// The caller must close the returned *os.File.
func (s *Store) Create() (*os.File, *File, error) {
	var lastErr error
	for i := 0; i < maxCreateAttempts; i++ {
		name := fmt.Sprintf("sheet-%d-%s.xlsx", s.now().UnixMilli(), utils.RandomID(6))
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, &File{Name: name, Path: path}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
		}
		s.logger.Warn("Output file name collision, drawing a new name", zap.String("file", name))
		lastErr = err
	}
	return nil, nil, fmt.Errorf("no free output file name after %d attempts: %w", maxCreateAttempts, lastErr)
}

// ScheduleRemoval deletes path once the store's delay has elapsed.
func (s *Store) ScheduleRemoval(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.pending[path]; ok {
		t.Stop()
	}
	s.pending[path] = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		delete(s.pending, path)
		s.mu.Unlock()
		s.remove(path)
	})
}

// Pending returns the number of files waiting for removal.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush removes every file still waiting for its timer. Used on shutdown.
func (s *Store) Flush() {
	s.mu.Lock()
	var due []string
	for path, t := range s.pending {
		if t.Stop() {
			due = append(due, path)
		}
		delete(s.pending, path)
	}
	s.mu.Unlock()

	for _, path := range due {
		s.remove(path)
	}
	if len(due) > 0 {
		s.logger.Info("Flushed pending output files", zap.Int("count", len(due)))
	}
}

// Sweep deletes generated files left in the directory by an earlier process that are older than maxAge.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list output directory: %w", err)
	}
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !NamePattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("Failed to sweep leftover output file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Store) remove(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		s.logger.Debug("Removed output file", zap.String("path", path))
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("Output file already gone", zap.String("path", path))
	default:
		s.logger.Error("Cleanup error", zap.String("path", path), zap.Error(err))
	}
}
