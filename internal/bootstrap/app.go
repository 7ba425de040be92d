package bootstrap

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/KazKozDev/ConText/internal/audio"
	"github.com/KazKozDev/ConText/internal/bridge"
	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/diagnostics"
	"github.com/KazKozDev/ConText/internal/domain"
	"github.com/KazKozDev/ConText/internal/ops"
	"github.com/KazKozDev/ConText/internal/session"
	"github.com/KazKozDev/ConText/internal/shortcuts"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const (
	stateEvent   = "session:state"
	historyEvent = "session:event"
	audioEvent   = "audio:play"

	diagnosticsTimeout = 10 * time.Second
)

// App wires the session, diagnostics, and UI runtime callbacks.
type App struct {
	Settings config.Settings
	Session  *session.Orchestrator

	assets     fs.FS
	checker    *diagnostics.Checker
	keys       *shortcuts.Dispatcher
	logger     *slog.Logger
	components *Components

	mu          sync.Mutex
	diagnostics domain.DiagnosticReport
	history     *ops.History
	runtimeCtx  context.Context
	stopBridge  func()
}

// New builds the application from the user's configuration.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return NewWithSettings(settings, assets)
}

// NewWithSettings builds the application for explicit settings.
func NewWithSettings(settings config.Settings, assets fs.FS) (*App, error) {
	player := &webviewPlayer{}
	components, err := Assemble(context.Background(), settings, player)
	if err != nil {
		return nil, err
	}
	player.fallback = audio.NewPlayer(components.Logger)

	app := newApp(settings, components.Session, components.Checker, components.Logger)
	app.assets = assets
	app.components = components
	player.app = app
	return app, nil
}

// newApp attaches the UI plumbing to an existing session.
func newApp(settings config.Settings, sess *session.Orchestrator, checker *diagnostics.Checker, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Settings: settings,
		Session:  sess,
		checker:  checker,
		keys:     shortcuts.NewDispatcher(sess, logger),
		logger:   logger,
		history:  ops.NewHistory(1000),
	}
	sess.OnStateChange(a.publishState)
	return a
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "ConText",
		Width:       1180,
		Height:      780,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// Startup stores the Wails runtime context, opens the bridge, and loads the
// model catalog.
func (a *App) Startup(ctx context.Context) {
	b := bridge.NewWails(ctx)
	stop, err := bridge.NewRouter(b, a.Session, a.logger).Start()
	if err != nil {
		a.logger.Warn("bridge unavailable", "error", err)
	}

	a.mu.Lock()
	a.runtimeCtx = ctx
	a.stopBridge = stop
	a.mu.Unlock()

	if err := a.Session.RefreshModels(); err != nil {
		a.logger.Debug("initial model refresh skipped", "error", err)
	}
	go func() {
		if _, err := a.RefreshDiagnostics(); err != nil {
			a.logger.Warn("startup diagnostics", "error", err)
		}
	}()
}

// Shutdown detaches from the runtime and releases resources.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	stop := a.stopBridge
	a.stopBridge = nil
	a.runtimeCtx = nil
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
	a.Session.Close()
	if a.components != nil {
		if err := a.components.Close(); err != nil {
			a.logger.Warn("shutdown", "error", err)
		}
	}
}

// GetState returns the current session snapshot.
func (a *App) GetState() domain.Snapshot {
	return a.Session.Snapshot()
}

// SetText replaces a slot's text as typed by the user.
func (a *App) SetText(slot domain.SlotID, text string) error {
	return a.Session.SetText(slot, text)
}

// SetLanguage assigns a language code to a slot.
func (a *App) SetLanguage(slot domain.SlotID, code string) error {
	return a.Session.SetLanguage(slot, code)
}

// Translate translates the source slot into the target slot.
func (a *App) Translate() error {
	return a.Session.Translate()
}

// Swap exchanges the two slots.
func (a *App) Swap() error {
	return a.Session.SwapSlots()
}

// Summarize requests a summary of a slot.
func (a *App) Summarize(slot domain.SlotID) error {
	return a.Session.SummarizeSlot(slot)
}

// ToggleSummary flips a slot between raw text and its summary.
func (a *App) ToggleSummary(slot domain.SlotID) error {
	return a.Session.ToggleSummaryView(slot)
}

// IngestURL loads a web page into a slot.
func (a *App) IngestURL(slot domain.SlotID, rawURL string) error {
	return a.Session.IngestURL(slot, rawURL)
}

// IngestTranscript loads a video transcript into a slot.
func (a *App) IngestTranscript(slot domain.SlotID, rawURL string) error {
	return a.Session.IngestTranscript(slot, rawURL)
}

// Speak reads a slot aloud.
func (a *App) Speak(slot domain.SlotID) error {
	return a.Session.Speak(slot)
}

// Copy copies a slot's visible text to the clipboard.
func (a *App) Copy(slot domain.SlotID) error {
	return a.Session.CopySlot(slot)
}

// SetTheme records the dark mode preference.
func (a *App) SetTheme(enabled bool) {
	a.Session.SetTheme(enabled)
}

// DetectLanguage detects the source slot's language.
func (a *App) DetectLanguage() error {
	return a.Session.DetectSourceLanguage()
}

// HandleKey runs the command bound to a key chord and reports whether the
// chord was consumed.
func (a *App) HandleKey(ev shortcuts.KeyEvent) bool {
	return a.keys.Handle(ev)
}

// SessionEvents returns all events with sequence greater than sinceSeq.
func (a *App) SessionEvents(sinceSeq int64) []ops.Event {
	return a.history.Since(sinceSeq)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.diagnostics
}

// RefreshDiagnostics reruns the backend and filesystem checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	if a.checker == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostics are not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), diagnosticsTimeout)
	defer cancel()
	report := a.checker.Run(ctx, a.Settings)

	a.mu.Lock()
	a.diagnostics = report
	a.mu.Unlock()
	return report, nil
}

// publishState records every committed snapshot in the event history and
// pushes it to the runtime.
func (a *App) publishState(snap domain.Snapshot) {
	events := a.history.Record(snap)

	ctx := a.runtimeContext()
	if ctx == nil {
		return
	}
	wailsruntime.EventsEmit(ctx, stateEvent, snap)
	for _, event := range events {
		wailsruntime.EventsEmit(ctx, historyEvent, event)
	}
}

// runtimeContext returns the current Wails runtime context, or nil before
// startup and after shutdown.
func (a *App) runtimeContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runtimeCtx
}

// webviewPlayer hands audio to the webview while the window is up and falls
// back to the platform player otherwise.
type webviewPlayer struct {
	app      *App
	fallback session.Player
}

// Play emits the payload as base64 WAV for the frontend audio element.
func (p *webviewPlayer) Play(ctx context.Context, audio []byte) error {
	var runtimeCtx context.Context
	if p.app != nil {
		runtimeCtx = p.app.runtimeContext()
	}
	if runtimeCtx == nil {
		if p.fallback == nil {
			return fmt.Errorf("no audio output is available")
		}
		return p.fallback.Play(ctx, audio)
	}
	wailsruntime.EventsEmit(runtimeCtx, audioEvent, base64.StdEncoding.EncodeToString(audio))
	return nil
}
