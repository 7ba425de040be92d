// Package shortcuts maps keyboard chords to session commands.
package shortcuts

import (
	"log/slog"
	"strings"
)

// Commands is the subset of the session the keyboard can drive.
type Commands interface {
	Translate() error
	SwapSlots() error
}

// KeyEvent is a key press as reported by the UI layer.
// Meta is the Command key on macOS.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// Action is the command a chord resolves to.
type Action string

const (
	ActionNone      Action = ""
	ActionTranslate Action = "translate"
	ActionSwap      Action = "swap"
)

// Resolve returns the action bound to ev.
func Resolve(ev KeyEvent) Action {
	if !strings.EqualFold(ev.Key, "Enter") || !(ev.Ctrl || ev.Meta) || ev.Alt {
		return ActionNone
	}
	if ev.Shift {
		return ActionSwap
	}
	return ActionTranslate
}

// Dispatcher invokes session commands for recognised chords.
type Dispatcher struct {
	commands Commands
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher bound to commands.
func NewDispatcher(commands Commands, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{commands: commands, logger: logger}
}

// Handle runs the command bound to ev and reports whether ev was consumed.
// Command errors are logged; a refused command is not a keyboard failure.
func (d *Dispatcher) Handle(ev KeyEvent) bool {
	var err error
	switch Resolve(ev) {
	case ActionTranslate:
		err = d.commands.Translate()
	case ActionSwap:
		err = d.commands.SwapSlots()
	default:
		return false
	}
	if err != nil {
		d.logger.Debug("shortcut command refused", "key", ev.Key, "error", err)
	}
	return true
}
