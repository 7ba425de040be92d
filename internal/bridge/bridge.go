// Package bridge is the restricted message channel between the host process
// and the UI. Messages arrive on "toMain" and leave on "fromMain"; no other
// channel names are accepted.
package bridge

import (
	"context"
	"errors"
	"fmt"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	// ChannelToMain carries messages from the UI to the host.
	ChannelToMain = "toMain"
	// ChannelFromMain carries messages from the host to the UI.
	ChannelFromMain = "fromMain"
)

// ErrChannelNotAllowed is returned for channel names outside the whitelist.
var ErrChannelNotAllowed = errors.New("bridge channel not allowed")

// Handler receives the opaque payload of one inbound message.
type Handler func(payload ...any)

// Bridge sends on the outbound channel and subscribes to the inbound one.
type Bridge interface {
	Send(channel string, payload any) error
	Receive(channel string, handler Handler) (cancel func(), err error)
}

func checkSend(channel string) error {
	if channel != ChannelFromMain {
		return fmt.Errorf("%w: send on %q", ErrChannelNotAllowed, channel)
	}
	return nil
}

func checkReceive(channel string) error {
	if channel != ChannelToMain {
		return fmt.Errorf("%w: receive on %q", ErrChannelNotAllowed, channel)
	}
	return nil
}

// Noop is used when no UI process is attached. It enforces the whitelist and
// drops everything else.
type Noop struct{}

// Send validates channel and discards payload.
func (Noop) Send(channel string, payload any) error {
	return checkSend(channel)
}

// Receive validates channel; handler is never called.
func (Noop) Receive(channel string, handler Handler) (func(), error) {
	if err := checkReceive(channel); err != nil {
		return nil, err
	}
	return func() {}, nil
}

// Wails carries bridge messages over the Wails runtime event bus.
type Wails struct {
	ctx context.Context
}

// NewWails binds the bridge to a started Wails runtime context.
func NewWails(ctx context.Context) *Wails {
	return &Wails{ctx: ctx}
}

// Send emits payload to the UI.
func (w *Wails) Send(channel string, payload any) error {
	if err := checkSend(channel); err != nil {
		return err
	}
	wailsruntime.EventsEmit(w.ctx, channel, payload)
	return nil
}

// Receive subscribes handler to messages from the UI.
func (w *Wails) Receive(channel string, handler Handler) (func(), error) {
	if err := checkReceive(channel); err != nil {
		return nil, err
	}
	return wailsruntime.EventsOn(w.ctx, channel, func(data ...interface{}) {
		handler(data...)
	}), nil
}
