package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/diagnostics"
	"github.com/KazKozDev/ConText/internal/domain"
	"github.com/KazKozDev/ConText/internal/ops"
	"github.com/KazKozDev/ConText/internal/session"
	"github.com/KazKozDev/ConText/internal/shortcuts"
)

// fakeBackend serves both the session gateway and the diagnostics probe.
type fakeBackend struct {
	translate func(text string) (string, error)
	healthErr error
}

func (b *fakeBackend) ListModels(context.Context) ([]domain.Model, error) {
	return []domain.Model{{Name: "llama3:8b"}, {Name: "gemma:7b"}}, nil
}

func (b *fakeBackend) Translate(ctx context.Context, text, src, tgt, model string) (string, error) {
	if b.translate == nil {
		return "translated", nil
	}
	return b.translate(text)
}

func (b *fakeBackend) SynthesizeSpeech(context.Context, string, string) ([]byte, error) {
	return []byte("RIFF"), nil
}

func (b *fakeBackend) Summarize(context.Context, string, string, string) (string, error) {
	return "summary", nil
}

func (b *fakeBackend) ScrapeURL(context.Context, string) (string, error) { return "page", nil }

func (b *fakeBackend) FetchTranscript(context.Context, string) (string, error) {
	return "transcript", nil
}

func (b *fakeBackend) DetectLanguage(context.Context, string) (string, error) { return "en", nil }

func (b *fakeBackend) Health(context.Context) (string, error) {
	if b.healthErr != nil {
		return "", b.healthErr
	}
	return "healthy", nil
}

func (b *fakeBackend) BackendURL() string  { return "http://localhost:5002" }
func (b *fakeBackend) RegistryURL() string { return "http://localhost:11434" }

// recordingPlayer records payloads handed to the platform player.
type recordingPlayer struct {
	mu     sync.Mutex
	played int
}

func (p *recordingPlayer) Play(context.Context, []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played++
	return nil
}

func newTestApp(t *testing.T, backend *fakeBackend, player session.Player) *App {
	t.Helper()
	settings := config.DefaultSettings()
	settings.Log.Dir = filepath.Join(t.TempDir(), "logs")
	settings.Prefs.Path = filepath.Join(t.TempDir(), "prefs.db")

	sess, err := session.New(session.Options{
		Gateway:       backend,
		Player:        player,
		SourceLang:    "ru",
		TargetLang:    "en",
		FallbackModel: "gemma:7b",
	})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return newApp(settings, sess, diagnostics.NewChecker(backend), nil)
}

// TestTranslatePublishesStateEvents checks committed snapshots reach the history.
func TestTranslatePublishesStateEvents(t *testing.T) {
	app := newTestApp(t, &fakeBackend{translate: func(text string) (string, error) {
		return "Hello", nil
	}}, nil)

	if err := app.SetText(domain.SlotSource, "Привет"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := app.Translate(); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	app.Session.Wait()

	waitForEvent(t, app, func(e ops.Event) bool {
		return e.Type == ops.EventTypeState && e.State.Target.Text == "Hello"
	})
	if got := app.GetState().Target.Text; got != "Hello" {
		t.Fatalf("target = %q, want Hello", got)
	}
}

// TestFailurePublishesErrorEventOnce checks error events fire on change only.
func TestFailurePublishesErrorEventOnce(t *testing.T) {
	app := newTestApp(t, &fakeBackend{translate: func(string) (string, error) {
		return "", errors.New("backend down")
	}}, nil)

	app.SetText(domain.SlotSource, "text")
	app.Translate()
	app.Session.Wait()
	waitForEvent(t, app, func(e ops.Event) bool { return e.Type == ops.EventTypeError })

	app.SetTheme(true)
	waitForEvent(t, app, func(e ops.Event) bool {
		return e.Type == ops.EventTypeState && e.State.ThemeEnabled
	})

	count := 0
	for _, e := range app.SessionEvents(0) {
		if e.Type == ops.EventTypeError {
			count++
			if e.Error == nil || e.Error.Operation != domain.OpTranslate {
				t.Fatalf("error event = %+v", e)
			}
		}
	}
	if count != 1 {
		t.Fatalf("error events = %d, want 1", count)
	}
}

// TestHandleKeyDispatchesShortcuts checks keyboard chords reach the session.
func TestHandleKeyDispatchesShortcuts(t *testing.T) {
	app := newTestApp(t, &fakeBackend{}, nil)
	app.SetText(domain.SlotSource, "Привет")

	if !app.HandleKey(shortcuts.KeyEvent{Key: "Enter", Ctrl: true}) {
		t.Fatal("ctrl+enter not handled")
	}
	app.Session.Wait()
	if got := app.GetState().Target.Text; got != "translated" {
		t.Fatalf("target = %q, want translated", got)
	}

	if !app.HandleKey(shortcuts.KeyEvent{Key: "Enter", Meta: true, Shift: true}) {
		t.Fatal("cmd+shift+enter not handled")
	}
	snap := app.GetState()
	if snap.Source.Text != "translated" || snap.Source.Language.Code != "en" {
		t.Fatalf("after swap source = %+v", snap.Source)
	}
}

// TestSpeakFallsBackWithoutRuntime checks headless playback.
func TestSpeakFallsBackWithoutRuntime(t *testing.T) {
	fallback := &recordingPlayer{}
	player := &webviewPlayer{fallback: fallback}
	app := newTestApp(t, &fakeBackend{}, player)
	player.app = app

	app.SetText(domain.SlotTarget, "Hello")
	if err := app.Speak(domain.SlotTarget); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	app.Session.Wait()

	if fallback.played != 1 {
		t.Fatalf("played = %d, want 1", fallback.played)
	}
	if app.GetState().LastError != nil {
		t.Fatalf("lastError = %+v", app.GetState().LastError)
	}
}

// TestModelsAndDiagnostics checks catalog and diagnostics bindings.
func TestModelsAndDiagnostics(t *testing.T) {
	app := newTestApp(t, &fakeBackend{healthErr: errors.New("connection refused")}, nil)

	if err := app.RefreshModels(); err != nil {
		t.Fatalf("RefreshModels: %v", err)
	}
	app.Session.Wait()
	models := app.GetModels()
	if len(models) != 2 || !models[1].Selected {
		t.Fatalf("models = %+v", models)
	}
	if err := app.SetModel("llama3:8b"); err != nil {
		t.Fatalf("SetModel: %v", err)
	}
	if len(app.GetLanguages()) != 15 {
		t.Fatal("language catalog incomplete")
	}

	report, err := app.RefreshDiagnostics()
	if err != nil {
		t.Fatalf("RefreshDiagnostics: %v", err)
	}
	if !report.HasFailures {
		t.Fatal("expected backend failure in report")
	}
	if got := app.GetDiagnostics(); got.GeneratedAt != report.GeneratedAt {
		t.Fatal("diagnostics not cached")
	}
}

// TestCopyPublishesCopiedEvent checks the transient flag reaches the history.
func TestCopyPublishesCopiedEvent(t *testing.T) {
	app := newTestApp(t, &fakeBackend{}, nil)
	app.SetText(domain.SlotSource, "text")

	if err := app.Copy(domain.SlotSource); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	waitForEvent(t, app, func(e ops.Event) bool { return e.Type == ops.EventTypeCopied })
}

// waitForEvent polls the history until an event matches or times out.
func waitForEvent(t *testing.T, app *App, match func(ops.Event) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, event := range app.SessionEvents(0) {
			if match(event) {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no matching event among %d events", len(app.SessionEvents(0)))
}
