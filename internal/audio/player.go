// Package audio plays synthesized speech through the platform's audio tools.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrEmptyAudio is returned when asked to play an empty payload.
var ErrEmptyAudio = errors.New("audio payload is empty")

// commandResult is the outcome of one player process.
type commandResult struct {
	Stderr   string
	ExitCode int
}

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (commandResult, error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

// Run executes one command and captures stderr and the exit code.
func (r *execRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := commandResult{Stderr: stderr.String()}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, err
	}
	return result, nil
}

// Player writes WAV payloads to a temporary file and plays them with the
// platform command line player. Play blocks until playback ends.
type Player struct {
	goos   string
	tmpDir string
	runner commandRunner
	logger *slog.Logger
}

// NewPlayer creates a player for the running platform.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		goos:   runtime.GOOS,
		runner: &execRunner{},
		logger: logger,
	}
}

// Play plays one WAV payload.
func (p *Player) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return ErrEmptyAudio
	}

	file, err := os.CreateTemp(p.tmpDir, "context-speech-*.wav")
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.Write(audio); err != nil {
		file.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}

	name, args := playerCommand(p.goos, path)
	p.logger.Debug("playing speech", "player", name, "bytes", len(audio))
	result, err := p.runner.Run(ctx, name, args...)
	if err != nil {
		stderr := strings.TrimSpace(result.Stderr)
		if stderr != "" {
			return fmt.Errorf("%s exited with %d: %s: %w", name, result.ExitCode, stderr, err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// playerCommand returns the command that plays path on goos.
func playerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "afplay", []string{path}
	case "windows":
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", strings.ReplaceAll(path, "'", "''"))
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}
	default:
		return "aplay", []string{"-q", path}
	}
}
