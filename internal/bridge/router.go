package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KazKozDev/ConText/internal/domain"
)

// Commands is the session surface reachable through the bridge.
type Commands interface {
	Translate() error
	SwapSlots() error
	SummarizeSlot(id domain.SlotID) error
	ToggleSummaryView(id domain.SlotID) error
	IngestURL(id domain.SlotID, rawURL string) error
	IngestTranscript(id domain.SlotID, rawURL string) error
	Speak(id domain.SlotID) error
	CopySlot(id domain.SlotID) error
	SetText(id domain.SlotID, text string) error
	SetLanguage(id domain.SlotID, code string) error
	SetModel(name string) error
	SetTheme(enabled bool)
	RefreshModels() error
	DetectSourceLanguage() error
}

// ErrUnknownCommand is returned for envelopes naming no known command.
var ErrUnknownCommand = errors.New("unknown bridge command")

// Envelope is one inbound command message.
type Envelope struct {
	ID       string        `json:"id,omitempty"`
	Command  string        `json:"command"`
	Slot     domain.SlotID `json:"slot,omitempty"`
	Text     string        `json:"text,omitempty"`
	URL      string        `json:"url,omitempty"`
	Language string        `json:"language,omitempty"`
	Model    string        `json:"model,omitempty"`
	Enabled  bool          `json:"enabled,omitempty"`
}

// Reply acknowledges one envelope on the outbound channel.
type Reply struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Router decodes inbound envelopes, runs the named command, and replies.
type Router struct {
	bridge   Bridge
	commands Commands
	logger   *slog.Logger
}

// NewRouter creates a router between b and commands.
func NewRouter(b Bridge, commands Commands, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{bridge: b, commands: commands, logger: logger}
}

// Start subscribes to the inbound channel.
func (r *Router) Start() (func(), error) {
	return r.bridge.Receive(ChannelToMain, r.handle)
}

func (r *Router) handle(payload ...any) {
	if len(payload) == 0 {
		r.logger.Debug("empty bridge message")
		return
	}

	env, err := decodeEnvelope(payload[0])
	if err != nil {
		r.logger.Warn("malformed bridge message", "error", err)
		r.reply(Reply{OK: false, Error: err.Error()})
		return
	}

	reply := Reply{ID: env.ID, Command: env.Command, OK: true}
	if err := r.Dispatch(env); err != nil {
		reply.OK = false
		reply.Error = err.Error()
	}
	r.reply(reply)
}

func (r *Router) reply(reply Reply) {
	if err := r.bridge.Send(ChannelFromMain, reply); err != nil {
		r.logger.Warn("bridge reply failed", "error", err)
	}
}

// Dispatch runs the command named by env.
func (r *Router) Dispatch(env Envelope) error {
	c := r.commands
	switch env.Command {
	case "translate":
		return c.Translate()
	case "swap":
		return c.SwapSlots()
	case "summarize":
		return c.SummarizeSlot(env.Slot)
	case "toggleSummary":
		return c.ToggleSummaryView(env.Slot)
	case "ingestUrl":
		return c.IngestURL(env.Slot, env.URL)
	case "ingestTranscript":
		return c.IngestTranscript(env.Slot, env.URL)
	case "speak":
		return c.Speak(env.Slot)
	case "copy":
		return c.CopySlot(env.Slot)
	case "setText":
		return c.SetText(env.Slot, env.Text)
	case "setLanguage":
		return c.SetLanguage(env.Slot, env.Language)
	case "setModel":
		return c.SetModel(env.Model)
	case "setTheme":
		c.SetTheme(env.Enabled)
		return nil
	case "refreshModels":
		return c.RefreshModels()
	case "detectLanguage":
		return c.DetectSourceLanguage()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, env.Command)
	}
}

// decodeEnvelope accepts a JSON string, raw bytes, or a decoded JS object.
func decodeEnvelope(raw any) (Envelope, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode payload: %w", err)
		}
		data = encoded
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode payload: %w", err)
	}
	if env.Command == "" {
		return Envelope{}, fmt.Errorf("%w: missing command", ErrUnknownCommand)
	}
	return env, nil
}
