// Package session owns the mutable client state: the two text slots, the
// model catalog, in-flight backend operations, and the last error.
//
// Commands return immediately. Backend calls run in the background and their
// results are committed as single atomic steps; every commit produces a new
// Snapshot that is delivered to listeners in commit order.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/domain"
	"github.com/KazKozDev/ConText/internal/gateway"
	"github.com/KazKozDev/ConText/internal/ops"
)

var (
	// ErrBlankText is returned when a command needs non-blank text.
	ErrBlankText = errors.New("text is blank")
	// ErrNoSummary is returned when toggling a slot without a summary.
	ErrNoSummary = errors.New("slot has no summary")
	// ErrUnknownModel is returned when selecting a model outside the loaded catalog.
	ErrUnknownModel = errors.New("model is not in the catalog")
	// ErrUnknownLanguage is returned for codes outside the language catalog.
	ErrUnknownLanguage = errors.New("unsupported language")
	// ErrUnknownSlot is returned for slot ids other than source and target.
	ErrUnknownSlot = errors.New("unknown slot")
	// ErrClosed is returned for operations started after Close.
	ErrClosed = errors.New("session is closed")
)

// Gateway is the backend surface the orchestrator depends on.
type Gateway interface {
	ListModels(ctx context.Context) ([]domain.Model, error)
	Translate(ctx context.Context, text, sourceLang, targetLang, model string) (string, error)
	SynthesizeSpeech(ctx context.Context, text, lang string) ([]byte, error)
	Summarize(ctx context.Context, text, lang, model string) (string, error)
	ScrapeURL(ctx context.Context, url string) (string, error)
	FetchTranscript(ctx context.Context, url string) (string, error)
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// Player plays a synthesized audio payload.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// Notifier shows a best-effort desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// Listener receives the full state after every committed mutation.
type Listener func(domain.Snapshot)

// Options configures a new Orchestrator. Gateway is required.
type Options struct {
	Context        context.Context
	Gateway        Gateway
	Prefs          config.PrefStore
	Clipboard      Clipboard
	Player         Player
	Notifier       Notifier
	Logger         *slog.Logger
	SourceLang     string
	TargetLang     string
	FallbackModel  string
	CopiedInterval time.Duration
}

// slotState is the mutable form of domain.SlotState.
type slotState struct {
	text     string
	lang     domain.Language
	summary  *string
	view     domain.ViewMode
	revision uint64
}

// setText replaces the text and drops the summary overlay.
func (s *slotState) setText(text string) {
	s.text = text
	s.clearSummary()
	s.revision++
}

// beginIngest drops the summary overlay and invalidates any summary still in
// flight for the text being replaced.
func (s *slotState) beginIngest() {
	s.clearSummary()
	s.revision++
}

func (s *slotState) clearSummary() {
	s.summary = nil
	s.view = domain.ViewRaw
}

// Orchestrator is the single owner of a client session.
type Orchestrator struct {
	id             string
	ctx            context.Context
	gw             Gateway
	prefs          config.PrefStore
	clipboard      Clipboard
	player         Player
	notifier       Notifier
	logger         *slog.Logger
	tracker        *ops.Tracker
	copiedInterval time.Duration
	rejections     metric.Int64Counter
	inflight       sync.WaitGroup

	mu           sync.Mutex
	closed       bool
	source       slotState
	target       slotState
	models       []domain.Model
	modelsLoaded bool
	selected     string
	lastErr      *domain.ErrorInfo
	theme        bool
	copied       bool
	copyGen      uint64
	version      int64
	outbox       []domain.Snapshot
	delivering   bool
	listeners    map[int]Listener
	nextListener int
}

// New creates the session with the configured language pair and restores
// the persisted theme and model preferences.
func New(opts Options) (*Orchestrator, error) {
	if opts.Gateway == nil {
		return nil, errors.New("session: gateway is required")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CopiedInterval <= 0 {
		opts.CopiedInterval = 2 * time.Second
	}

	sourceLang, ok := domain.LanguageByCode(opts.SourceLang)
	if !ok {
		sourceLang, _ = domain.LanguageByCode("ru")
	}
	targetLang, ok := domain.LanguageByCode(opts.TargetLang)
	if !ok {
		targetLang, _ = domain.LanguageByCode("en")
	}

	id := uuid.NewString()
	o := &Orchestrator{
		id:             id,
		ctx:            opts.Context,
		gw:             opts.Gateway,
		prefs:          opts.Prefs,
		clipboard:      opts.Clipboard,
		player:         opts.Player,
		notifier:       opts.Notifier,
		logger:         opts.Logger.With("session", id),
		tracker:        ops.NewTracker(),
		copiedInterval: opts.CopiedInterval,
		source:         slotState{lang: sourceLang, view: domain.ViewRaw},
		target:         slotState{lang: targetLang, view: domain.ViewRaw},
		selected:       opts.FallbackModel,
		listeners:      map[int]Listener{},
	}

	if counter, err := otel.Meter("github.com/KazKozDev/ConText/internal/session").Int64Counter(
		"session.command.rejected",
		metric.WithDescription("Commands rejected by session preconditions"),
	); err == nil {
		o.rejections = counter
	}

	if o.prefs != nil {
		if value, ok := o.prefs.Get(config.PrefDarkMode); ok {
			o.theme, _ = strconv.ParseBool(value)
		}
		if value, ok := o.prefs.Get(config.PrefSelectedModel); ok && value != "" {
			o.selected = value
		}
	}

	return o, nil
}

// ID returns the session identifier.
func (o *Orchestrator) ID() string {
	return o.id
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() domain.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// OnStateChange registers listener and returns a function that removes it.
// Listeners run on a delivery goroutine, one snapshot at a time, in commit order,
// and may issue commands.
func (o *Orchestrator) OnStateChange(listener Listener) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextListener
	o.nextListener++
	o.listeners[id] = listener
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.listeners, id)
	}
}

// Wait blocks until every operation started so far has settled. Callers must
// not start operations concurrently with Wait; use Close when other
// goroutines may still issue commands.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close refuses new operations and waits for the in-flight ones to settle.
// It is safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	o.inflight.Wait()
}

// slotLocked resolves id to its mutable state.
func (o *Orchestrator) slotLocked(id domain.SlotID) (*slotState, error) {
	switch id {
	case domain.SlotSource:
		return &o.source, nil
	case domain.SlotTarget:
		return &o.target, nil
	default:
		return nil, ErrUnknownSlot
	}
}

// commitLocked publishes the current state as a new version.
func (o *Orchestrator) commitLocked() {
	o.version++
	o.outbox = append(o.outbox, o.snapshotLocked())
	if !o.delivering && len(o.listeners) > 0 {
		o.delivering = true
		go o.deliver()
	}
	if len(o.listeners) == 0 {
		o.outbox = o.outbox[:0]
	}
}

// deliver drains the outbox; only one deliver loop runs at a time.
func (o *Orchestrator) deliver() {
	for {
		o.mu.Lock()
		if len(o.outbox) == 0 {
			o.delivering = false
			o.mu.Unlock()
			return
		}
		batch := o.outbox
		o.outbox = nil
		listeners := make([]Listener, 0, len(o.listeners))
		for _, l := range o.listeners {
			listeners = append(listeners, l)
		}
		o.mu.Unlock()

		for _, snap := range batch {
			for _, l := range listeners {
				l(snap)
			}
		}
	}
}

func (o *Orchestrator) snapshotLocked() domain.Snapshot {
	models := make([]domain.Model, len(o.models))
	copy(models, o.models)

	var lastErr *domain.ErrorInfo
	if o.lastErr != nil {
		e := *o.lastErr
		lastErr = &e
	}

	return domain.Snapshot{
		SessionID:     o.id,
		Version:       o.version,
		Source:        o.slotSnapshotLocked(domain.SlotSource, o.source),
		Target:        o.slotSnapshotLocked(domain.SlotTarget, o.target),
		Models:        models,
		ModelsLoaded:  o.modelsLoaded,
		ModelsLoading: o.tracker.IsPending(ops.Key{Slot: ops.SessionWide, Kind: domain.OpDiscover}),
		SelectedModel: o.selected,
		LastError:     lastErr,
		ThemeEnabled:  o.theme,
		Copied:        o.copied,
	}
}

func (o *Orchestrator) slotSnapshotLocked(id domain.SlotID, s slotState) domain.SlotState {
	busy := o.tracker.Busy(id)
	if o.tracker.IsPending(translateKey) {
		busy = append(busy, domain.OpTranslate)
	}

	var summary *string
	if s.summary != nil {
		value := *s.summary
		summary = &value
	}
	return domain.SlotState{
		Text:     s.text,
		Language: s.lang,
		Summary:  summary,
		ViewMode: s.view,
		Busy:     busy,
	}
}

// failLocked records err as the session's single visible error.
func (o *Orchestrator) failLocked(kind domain.OperationKind, err error) {
	o.lastErr = &domain.ErrorInfo{Operation: kind, Message: gateway.Message(err)}
	o.logger.Warn("operation failed", "op", kind, "error", err)
}

// succeedLocked clears the visible error when it belongs to the same operation.
func (o *Orchestrator) succeedLocked(kind domain.OperationKind) {
	if o.lastErr != nil && o.lastErr.Operation == kind {
		o.lastErr = nil
	}
}

// reject logs and counts a command refused by its preconditions.
func (o *Orchestrator) reject(kind domain.OperationKind, slot domain.SlotID, err error) error {
	o.logger.Debug("command rejected", "op", kind, "slot", slot, "reason", err)
	if o.rejections != nil {
		o.rejections.Add(o.ctx, 1, metric.WithAttributes(
			attribute.String("operation", string(kind)),
			attribute.String("reason", err.Error()),
		))
	}
	return err
}

// work performs a backend exchange outside the lock and returns the commit
// step applied when the operation settles.
type work func(ctx context.Context) (apply func())

// start checks that key is idle, runs prepare under the lock, marks key
// pending, and executes the returned work in the background.
func (o *Orchestrator) start(key ops.Key, prepare func() (work, error)) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return o.reject(key.Kind, key.Slot, ErrClosed)
	}
	if o.tracker.IsPending(key) {
		o.mu.Unlock()
		return o.reject(key.Kind, key.Slot, ops.ErrPending)
	}
	run, err := prepare()
	if err != nil {
		o.mu.Unlock()
		return o.reject(key.Kind, key.Slot, err)
	}
	if err := o.tracker.Begin(key); err != nil {
		o.mu.Unlock()
		return o.reject(key.Kind, key.Slot, err)
	}
	o.inflight.Add(1)
	o.commitLocked()
	o.mu.Unlock()

	go func() {
		defer o.inflight.Done()
		apply := run(o.ctx)

		o.mu.Lock()
		defer o.mu.Unlock()
		_ = o.tracker.Settle(key)
		if apply != nil {
			apply()
		}
		o.commitLocked()
	}()
	return nil
}

// update applies fn and commits atomically.
func (o *Orchestrator) update(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
	o.commitLocked()
}
