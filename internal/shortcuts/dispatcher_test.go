package shortcuts

import (
	"errors"
	"testing"
)

type fakeCommands struct {
	translates int
	swaps      int
	err        error
}

func (f *fakeCommands) Translate() error {
	f.translates++
	return f.err
}

func (f *fakeCommands) SwapSlots() error {
	f.swaps++
	return f.err
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		ev   KeyEvent
		want Action
	}{
		{"ctrl enter", KeyEvent{Key: "Enter", Ctrl: true}, ActionTranslate},
		{"cmd enter", KeyEvent{Key: "Enter", Meta: true}, ActionTranslate},
		{"ctrl shift enter", KeyEvent{Key: "Enter", Ctrl: true, Shift: true}, ActionSwap},
		{"cmd shift enter", KeyEvent{Key: "enter", Meta: true, Shift: true}, ActionSwap},
		{"plain enter", KeyEvent{Key: "Enter"}, ActionNone},
		{"shift enter", KeyEvent{Key: "Enter", Shift: true}, ActionNone},
		{"ctrl a", KeyEvent{Key: "a", Ctrl: true}, ActionNone},
		{"ctrl alt enter", KeyEvent{Key: "Enter", Ctrl: true, Alt: true}, ActionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.ev); got != tc.want {
				t.Fatalf("Resolve(%+v) = %q, want %q", tc.ev, got, tc.want)
			}
		})
	}
}

func TestDispatcherHandle(t *testing.T) {
	cmds := &fakeCommands{}
	d := NewDispatcher(cmds, nil)

	if !d.Handle(KeyEvent{Key: "Enter", Ctrl: true}) {
		t.Fatal("ctrl+enter not consumed")
	}
	if !d.Handle(KeyEvent{Key: "Enter", Meta: true, Shift: true}) {
		t.Fatal("cmd+shift+enter not consumed")
	}
	if d.Handle(KeyEvent{Key: "x"}) {
		t.Fatal("unbound key consumed")
	}
	if cmds.translates != 1 || cmds.swaps != 1 {
		t.Fatalf("translates=%d swaps=%d, want 1/1", cmds.translates, cmds.swaps)
	}
}

// TestDispatcherIgnoresCommandErrors checks refusals do not change handling.
func TestDispatcherIgnoresCommandErrors(t *testing.T) {
	cmds := &fakeCommands{err: errors.New("pending")}
	d := NewDispatcher(cmds, nil)
	if !d.Handle(KeyEvent{Key: "Enter", Ctrl: true}) {
		t.Fatal("chord should be consumed even when refused")
	}
}
