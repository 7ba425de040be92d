package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/KazKozDev/ConText/internal/bridge"
	"github.com/KazKozDev/ConText/internal/clipboard"
	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/diagnostics"
	"github.com/KazKozDev/ConText/internal/gateway"
	"github.com/KazKozDev/ConText/internal/notify"
	"github.com/KazKozDev/ConText/internal/session"
	"github.com/KazKozDev/ConText/internal/telemetry"
)

// Version is reported by the CLI and attached to telemetry.
const Version = "1.0.0"

// Components is the runtime graph shared by the desktop app and the CLI.
type Components struct {
	Settings config.Settings
	Logger   *slog.Logger
	Gateway  *gateway.Client
	Prefs    config.PrefStore
	Session  *session.Orchestrator
	Checker  *diagnostics.Checker
	// Router serves bridge commands while no window is attached.
	Router   *bridge.Router

	closers []func() error
}

// Assemble builds logging, telemetry, preferences, the gateway, and the
// session from settings. player receives synthesized speech.
func Assemble(ctx context.Context, settings config.Settings, player session.Player) (*Components, error) {
	c := &Components{Settings: settings}

	previous := slog.Default()
	logger, logFile, err := telemetry.InitLogger(settings.Log.Dir, settings.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	c.Logger = logger
	c.closers = append(c.closers, logFile.Close, func() error {
		slog.SetDefault(previous)
		return nil
	})

	if settings.Telemetry.Enabled {
		shutdown, err := telemetry.InitTelemetry(ctx, settings.Log.Dir, Version)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init telemetry: %w", err)
		}
		c.closers = append(c.closers, func() error {
			shutdown()
			return nil
		})
	}

	prefs, err := config.OpenPrefStore(settings.Prefs)
	if err != nil {
		// Preferences are optional; the session runs with defaults.
		logger.Warn("preference store unavailable", "driver", settings.Prefs.Driver, "path", settings.Prefs.Path, "error", err)
	} else {
		c.Prefs = prefs
		if closer, ok := prefs.(io.Closer); ok {
			c.closers = append(c.closers, closer.Close)
		}
	}

	c.Gateway = gateway.New(settings.Backend.BaseURL, settings.Registry.BaseURL, settings.Backend.Timeout, logger)
	c.Checker = diagnostics.NewChecker(c.Gateway)

	sess, err := session.New(session.Options{
		Context:        ctx,
		Gateway:        c.Gateway,
		Prefs:          c.Prefs,
		Clipboard:      clipboard.New(logger),
		Player:         player,
		Notifier:       notify.New(settings.Notifications.Enabled, logger),
		Logger:         logger,
		SourceLang:     settings.Languages.Source,
		TargetLang:     settings.Languages.Target,
		FallbackModel:  settings.Model.Fallback,
		CopiedInterval: settings.UI.CopiedInterval,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.Session = sess

	c.Router = bridge.NewRouter(bridge.Noop{}, sess, logger)
	stopRouter, err := c.Router.Start()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("start bridge: %w", err)
	}
	c.closers = append(c.closers, func() error {
		stopRouter()
		return nil
	})

	logger.Info("session started",
		"session", sess.ID(),
		"backend", settings.Backend.BaseURL,
		"registry", settings.Registry.BaseURL,
		"prefs", settings.Prefs.Driver,
	)
	return c, nil
}

// Close releases resources in reverse order of acquisition.
func (c *Components) Close() error {
	if c.Session != nil {
		c.Session.Close()
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
