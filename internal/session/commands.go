package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/domain"
	"github.com/KazKozDev/ConText/internal/gateway"
	"github.com/KazKozDev/ConText/internal/ops"
)

var (
	translateKey = ops.Key{Slot: ops.SessionWide, Kind: domain.OpTranslate}
	discoverKey  = ops.Key{Slot: ops.SessionWide, Kind: domain.OpDiscover}
)

// Translate sends the source text to the backend and writes the result into
// the target slot. At most one translation is pending per session.
func (o *Orchestrator) Translate() error {
	return o.start(translateKey, func() (work, error) {
		if domain.IsBlank(o.source.text) {
			return nil, ErrBlankText
		}
		text, from, to, model := o.source.text, o.source.lang.Code, o.target.lang.Code, o.selected

		return func(ctx context.Context) func() {
			result, err := o.gw.Translate(ctx, text, from, to, model)
			return func() {
				if err != nil {
					o.failLocked(domain.OpTranslate, err)
					return
				}
				o.target.setText(result)
				o.succeedLocked(domain.OpTranslate)
			}
		}, nil
	})
}

// SwapSlots exchanges text and language between the slots and drops both
// summaries. It does nothing when both slots are blank.
func (o *Orchestrator) SwapSlots() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if domain.IsBlank(o.source.text) && domain.IsBlank(o.target.text) {
		return nil
	}

	o.source.text, o.target.text = o.target.text, o.source.text
	o.source.lang, o.target.lang = o.target.lang, o.source.lang
	for _, s := range []*slotState{&o.source, &o.target} {
		s.clearSummary()
		s.revision++
	}
	o.commitLocked()
	return nil
}

// SummarizeSlot requests a summary of the slot's text and shows it when it
// arrives. A summary of text that was edited in the meantime is discarded.
func (o *Orchestrator) SummarizeSlot(id domain.SlotID) error {
	return o.start(ops.Key{Slot: id, Kind: domain.OpSummarize}, func() (work, error) {
		s, err := o.slotLocked(id)
		if err != nil {
			return nil, err
		}
		if domain.IsBlank(s.text) {
			return nil, ErrBlankText
		}
		text, lang, model, revision := s.text, s.lang.Code, o.selected, s.revision

		return func(ctx context.Context) func() {
			summary, err := o.gw.Summarize(ctx, text, lang, model)
			return func() {
				if err != nil {
					o.failLocked(domain.OpSummarize, err)
					return
				}
				if s.revision != revision {
					o.logger.Debug("discarding summary of edited text", "slot", id)
					return
				}
				s.summary = &summary
				s.view = domain.ViewSummary
				o.succeedLocked(domain.OpSummarize)
			}
		}, nil
	})
}

// ToggleSummaryView flips between the raw text and the summary overlay.
func (o *Orchestrator) ToggleSummaryView(id domain.SlotID) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, err := o.slotLocked(id)
	if err != nil {
		return err
	}
	if s.summary == nil {
		return ErrNoSummary
	}
	if s.view == domain.ViewSummary {
		s.view = domain.ViewRaw
	} else {
		s.view = domain.ViewSummary
	}
	o.commitLocked()
	return nil
}

// IngestURL replaces the slot's text with the readable content of a web page.
func (o *Orchestrator) IngestURL(id domain.SlotID, rawURL string) error {
	return o.ingest(id, rawURL, gateway.OpScrapeURL, o.gw.ScrapeURL, false)
}

// IngestTranscript replaces the slot's text with a video transcript. On
// success the other slot is cleared, since any earlier translation no longer
// matches the new text.
func (o *Orchestrator) IngestTranscript(id domain.SlotID, rawURL string) error {
	return o.ingest(id, rawURL, gateway.OpFetchTranscript, o.gw.FetchTranscript, true)
}

func (o *Orchestrator) ingest(
	id domain.SlotID,
	rawURL, op string,
	fetch func(context.Context, string) (string, error),
	clearOther bool,
) error {
	if !id.Valid() {
		return ErrUnknownSlot
	}
	target, err := gateway.ValidateURL(op, rawURL)
	if err != nil {
		o.update(func() { o.failLocked(domain.OpIngest, err) })
		return err
	}

	return o.start(ops.Key{Slot: id, Kind: domain.OpIngest}, func() (work, error) {
		s, err := o.slotLocked(id)
		if err != nil {
			return nil, err
		}
		s.beginIngest()

		return func(ctx context.Context) func() {
			content, err := fetch(ctx, target)
			if err == nil {
				o.notifyIngested(id, op)
			}
			return func() {
				if err != nil {
					o.failLocked(domain.OpIngest, err)
					return
				}
				s.setText(content)
				if clearOther {
					other, _ := o.slotLocked(id.Other())
					other.setText("")
				}
				o.succeedLocked(domain.OpIngest)
			}
		}, nil
	})
}

// notifyIngested sends a best-effort desktop notification.
func (o *Orchestrator) notifyIngested(id domain.SlotID, op string) {
	if o.notifier == nil {
		return
	}
	message := "Web page content loaded into the " + string(id) + " panel"
	if op == gateway.OpFetchTranscript {
		message = "Video transcript loaded into the " + string(id) + " panel"
	}
	if err := o.notifier.Notify("ConText", message); err != nil {
		o.logger.Debug("desktop notification failed", "error", err)
	}
}

// Speak synthesizes the slot's text and plays it. State is unchanged
// apart from the pending marker and a possible error.
func (o *Orchestrator) Speak(id domain.SlotID) error {
	return o.start(ops.Key{Slot: id, Kind: domain.OpSpeak}, func() (work, error) {
		s, err := o.slotLocked(id)
		if err != nil {
			return nil, err
		}
		if domain.IsBlank(s.text) {
			return nil, ErrBlankText
		}
		text, lang := s.text, s.lang.Code

		return func(ctx context.Context) func() {
			err := o.speak(ctx, text, lang)
			return func() {
				if err != nil {
					o.failLocked(domain.OpSpeak, err)
					return
				}
				o.succeedLocked(domain.OpSpeak)
			}
		}, nil
	})
}

func (o *Orchestrator) speak(ctx context.Context, text, lang string) error {
	audio, err := o.gw.SynthesizeSpeech(ctx, text, lang)
	if err != nil {
		return err
	}
	if o.player == nil {
		return fmt.Errorf("no audio output is configured")
	}
	if err := o.player.Play(ctx, audio); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// DetectSourceLanguage asks the backend for the language of the source text
// and selects it when it is in the catalog.
func (o *Orchestrator) DetectSourceLanguage() error {
	return o.start(ops.Key{Slot: domain.SlotSource, Kind: domain.OpDetect}, func() (work, error) {
		if domain.IsBlank(o.source.text) {
			return nil, ErrBlankText
		}
		text := o.source.text

		return func(ctx context.Context) func() {
			code, err := o.gw.DetectLanguage(ctx, text)
			return func() {
				if err != nil {
					o.failLocked(domain.OpDetect, err)
					return
				}
				lang, ok := domain.LanguageByCode(code)
				if !ok {
					o.failLocked(domain.OpDetect, fmt.Errorf("%w: detected %q", ErrUnknownLanguage, code))
					return
				}
				o.source.lang = lang
				o.succeedLocked(domain.OpDetect)
			}
		}, nil
	})
}

// CopySlot copies the slot's active view to the clipboard and raises the
// transient copied flag. Clipboard failures are logged and otherwise ignored.
func (o *Orchestrator) CopySlot(id domain.SlotID) error {
	o.mu.Lock()
	s, err := o.slotLocked(id)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	text := domain.SlotState{Text: s.text, Summary: s.summary, ViewMode: s.view}.ActiveText()
	o.mu.Unlock()

	if domain.IsBlank(text) {
		return o.reject("copy", id, ErrBlankText)
	}

	if o.clipboard != nil {
		if err := o.clipboard.WriteText(text); err != nil {
			o.logger.Warn("clipboard write failed", "error", err)
		}
	}

	var gen uint64
	o.update(func() {
		o.copyGen++
		gen = o.copyGen
		o.copied = true
	})
	time.AfterFunc(o.copiedInterval, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.copyGen != gen || !o.copied {
			return
		}
		o.copied = false
		o.commitLocked()
	})
	return nil
}

// SetText replaces the slot's text as typed by the user. Any change drops
// the slot's summary.
func (o *Orchestrator) SetText(id domain.SlotID, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	s, err := o.slotLocked(id)
	if err != nil {
		return err
	}
	if s.text == text {
		return nil
	}
	s.setText(text)
	o.commitLocked()
	return nil
}

// SetLanguage assigns a catalog language to the slot.
func (o *Orchestrator) SetLanguage(id domain.SlotID, code string) error {
	lang, ok := domain.LanguageByCode(code)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	s, err := o.slotLocked(id)
	if err != nil {
		return err
	}
	s.lang = lang
	o.commitLocked()
	return nil
}

// SetModel selects a model from the loaded catalog and persists the choice.
// Before the first catalog load any name is accepted.
func (o *Orchestrator) SetModel(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.modelsLoaded && !containsModel(o.models, name) {
		return fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	o.selected = name
	o.persist(config.PrefSelectedModel, name)
	o.commitLocked()
	return nil
}

// SetTheme records and persists the dark mode flag.
func (o *Orchestrator) SetTheme(enabled bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.theme = enabled
	o.persist(config.PrefDarkMode, strconv.FormatBool(enabled))
	o.commitLocked()
}

// RefreshModels reloads the catalog. Discovery failures are logged only.
// When the selected model disappears the first catalog entry is selected.
func (o *Orchestrator) RefreshModels() error {
	return o.start(discoverKey, func() (work, error) {
		return func(ctx context.Context) func() {
			models, err := o.gw.ListModels(ctx)
			return func() {
				if err != nil {
					o.logger.Warn("model discovery failed", "error", err)
					return
				}
				o.models = models
				o.modelsLoaded = true
				if !containsModel(models, o.selected) && len(models) > 0 {
					o.logger.Info("selected model unavailable, falling back", "from", o.selected, "to", models[0].Name)
					o.selected = models[0].Name
				}
			}
		}, nil
	})
}

func (o *Orchestrator) persist(key, value string) {
	if o.prefs == nil {
		return
	}
	if err := o.prefs.Set(key, value); err != nil {
		o.logger.Warn("persist preference", "key", key, "error", err)
	}
}

func containsModel(models []domain.Model, name string) bool {
	for _, m := range models {
		if m.Name == name {
			return true
		}
	}
	return false
}
