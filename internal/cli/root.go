// Package cli is the command line entry point. With no subcommand it opens
// the desktop window; subcommands drive the same session headless.
package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KazKozDev/ConText/internal/audio"
	"github.com/KazKozDev/ConText/internal/bootstrap"
	"github.com/KazKozDev/ConText/internal/config"
	"github.com/KazKozDev/ConText/internal/domain"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
	assets     fs.FS
}

// NewRootCommand builds the command tree. assets holds the embedded frontend.
func NewRootCommand(assets fs.FS) *cobra.Command {
	opts := &rootOptions{assets: assets}

	root := &cobra.Command{
		Use:   "context",
		Short: "Desktop translator backed by local language models",
		Long: `ConText translates, summarizes, and reads text aloud using a local
translation service and model registry. Run without arguments to open the
desktop window.`,
		Version:       bootstrap.Version,
		RunE:          opts.runDesktop,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/context/config.toml or $CONTEXT_CONFIG)")

	root.AddCommand(
		newModelsCommand(opts),
		newTranslateCommand(opts),
		newSummarizeCommand(opts),
		newDoctorCommand(opts),
	)
	return root
}

// Execute runs the command tree.
func Execute(assets fs.FS) error {
	return NewRootCommand(assets).Execute()
}

func (o *rootOptions) settings() (config.Settings, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

func (o *rootOptions) runDesktop(cmd *cobra.Command, args []string) error {
	settings, err := o.settings()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	app, err := bootstrap.NewWithSettings(settings, o.assets)
	if err != nil {
		return fmt.Errorf("bootstrap app: %w", err)
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

// headless assembles a session without a window. Speech plays through the
// platform audio player.
func (o *rootOptions) headless(ctx context.Context) (*bootstrap.Components, error) {
	settings, err := o.settings()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return bootstrap.Assemble(ctx, settings, audio.NewPlayer(nil))
}

// readInput joins args, or reads stdin when no args are given.
func readInput(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// failure converts the session's visible error into a command error.
func failure(snap domain.Snapshot) error {
	if snap.LastError == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %s", snap.LastError.Operation, snap.LastError.Message)
}
