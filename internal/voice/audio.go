package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Recorder captures audio from the host microphone.
type Recorder interface {
	// Available reports whether the capture capability exists on this
	// host. When false, Record must not be called.
	Available() bool

	// Record captures audio for at most the given duration and returns
	// WAV bytes. An empty slice means no audio arrived.
	Record(ctx context.Context, limit time.Duration) ([]byte, error)
}

// Player plays an audio file and blocks until playback completes.
type Player interface {
	Available() bool
	Play(ctx context.Context, path string) error
}

// recorderCommands are tried in order when probing for a capture tool.
var recorderCommands = []string{"arecord", "rec", "sox"}

// ExecRecorder records through a command-line capture tool.
type ExecRecorder struct {
	command string
}

// NewExecRecorder probes the host for a usable capture tool. The
// returned recorder reports unavailable when none is found; that is not
// an error, callers degrade to typed input.
func NewExecRecorder() *ExecRecorder {
	for _, name := range recorderCommands {
		if _, err := exec.LookPath(name); err == nil {
			return &ExecRecorder{command: name}
		}
	}
	return &ExecRecorder{}
}

// Available reports whether a capture tool was found.
func (r *ExecRecorder) Available() bool {
	return r.command != ""
}

// Record captures audio into a temporary WAV file and returns its
// contents. The file is removed regardless of outcome.
func (r *ExecRecorder) Record(ctx context.Context, limit time.Duration) ([]byte, error) {
	if !r.Available() {
		return nil, fmt.Errorf("no capture tool available")
	}

	f, err := os.CreateTemp("", "capture-*.wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(ctx, limit+time.Second)
	defer cancel()

	seconds := fmt.Sprintf("%d", int(limit.Seconds()))
	var cmd *exec.Cmd
	switch r.command {
	case "arecord":
		cmd = exec.CommandContext(ctx, r.command, "-f", "cd", "-d", seconds, path)
	default:
		cmd = exec.CommandContext(ctx, r.command, path, "trim", "0", seconds)
	}

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("recording audio: %w", err)
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}
	return audio, nil
}

// playerCommands are tried in order when probing for a playback tool.
var playerCommands = []string{"afplay", "mpg123", "ffplay"}

// ExecPlayer plays audio through a command-line playback tool.
type ExecPlayer struct {
	command string
}

// NewExecPlayer probes the host for a usable playback tool.
func NewExecPlayer() *ExecPlayer {
	for _, name := range playerCommands {
		if _, err := exec.LookPath(name); err == nil {
			return &ExecPlayer{command: name}
		}
	}
	return &ExecPlayer{}
}

// Available reports whether a playback tool was found.
func (p *ExecPlayer) Available() bool {
	return p.command != ""
}

// Play runs the playback tool and blocks until it exits.
func (p *ExecPlayer) Play(ctx context.Context, path string) error {
	if !p.Available() {
		return fmt.Errorf("no playback tool available")
	}

	var cmd *exec.Cmd
	switch p.command {
	case "ffplay":
		cmd = exec.CommandContext(ctx, p.command, "-nodisp", "-autoexit", "-loglevel", "quiet", path)
	default:
		cmd = exec.CommandContext(ctx, p.command, path)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("playing audio: %w", err)
	}
	return nil
}
