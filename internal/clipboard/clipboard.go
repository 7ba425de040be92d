// Package clipboard writes text to the system clipboard.
package clipboard

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"
)

// System is the platform clipboard. The zero value is ready to use;
// the underlying clipboard is initialized on first write.
type System struct {
	mu          sync.Mutex
	initialized bool
	initErr     error
	logger      *slog.Logger
}

// New creates a clipboard writer that logs through logger.
func New(logger *slog.Logger) *System {
	return &System{logger: logger}
}

// Init initializes the clipboard. It is safe to call multiple times; an
// initialization failure is remembered and returned on every later call.
func (s *System) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked()
}

func (s *System) initLocked() error {
	if s.initialized || s.initErr != nil {
		return s.initErr
	}
	if err := clipboard.Init(); err != nil {
		s.initErr = fmt.Errorf("failed to initialize clipboard: %w", err)
		s.log().Warn("clipboard unavailable", "error", err)
		return s.initErr
	}
	s.initialized = true
	return nil
}

// WriteText replaces the clipboard contents with text.
func (s *System) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.initLocked(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	s.log().Debug("clipboard written", "bytes", len(text))
	return nil
}

func (s *System) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}
