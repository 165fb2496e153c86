package voice

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// CaptureStatus is the typed outcome of one capture attempt. Every
// status except CaptureOK carries no text; none of them is a fatal
// failure. Callers decide how to tell the user.
type CaptureStatus string

const (
	CaptureOK           CaptureStatus = "ok"
	CaptureTimedOut     CaptureStatus = "timed_out"
	CaptureUnrecognized CaptureStatus = "unrecognized"
	CaptureUnavailable  CaptureStatus = "unavailable"
)

// CaptureOutcome reports what one pass through the capture state
// machine produced.
type CaptureOutcome struct {
	Status     CaptureStatus
	Text       string
	Confidence float64
}

// RenderError wraps a failure to synthesize or play a response.
type RenderError struct {
	Stage string // "synthesize", "write", "play"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("voice: rendering speech (%s): %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// confidenceThreshold is the minimum speech-recognition confidence; a
// transcript below it counts as unrecognized.
const confidenceThreshold = 0.5

// defaultCaptureLimit bounds how long capture waits for audio.
const defaultCaptureLimit = 8 * time.Second

// SpeechToText is the transcription boundary the adapter depends on.
type SpeechToText interface {
	Configured() bool
	Recognize(ctx context.Context, audio []byte) (Transcription, error)
}

// TextToSpeech is the synthesis boundary the adapter depends on.
type TextToSpeech interface {
	Configured() bool
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Adapter converts spoken audio to text and text to played-back
// speech. The capture capability is probed once at construction; when
// absent, Capture returns CaptureUnavailable immediately and never
// blocks.
type Adapter struct {
	recorder Recorder
	player   Player
	stt      SpeechToText
	tts      TextToSpeech

	captureLimit time.Duration
	available    bool
}

// NewAdapter creates the adapter and probes capture availability:
// capture needs both a recording tool and a configured transcription
// service.
func NewAdapter(recorder Recorder, player Player, stt SpeechToText, tts TextToSpeech) *Adapter {
	available := recorder != nil && recorder.Available() && stt != nil && stt.Configured()
	if !available {
		log.Printf("Voice capture unavailable on this host, falling back to typed input")
	}
	return &Adapter{
		recorder:     recorder,
		player:       player,
		stt:          stt,
		tts:          tts,
		captureLimit: defaultCaptureLimit,
		available:    available,
	}
}

// WithCaptureLimit overrides the bounded wait for audio.
func (a *Adapter) WithCaptureLimit(limit time.Duration) *Adapter {
	a.captureLimit = limit
	return a
}

// Available reports whether capture can be attempted at all.
func (a *Adapter) Available() bool {
	return a.available
}

// Capture runs one pass of the capture state machine:
//
//	IDLE -> LISTENING -> { TRANSCRIBING | TIMED_OUT | UNRECOGNIZED } -> IDLE
//
// Failures are swallowed into a typed outcome; Capture never returns
// an error and never crashes the caller.
func (a *Adapter) Capture(ctx context.Context) CaptureOutcome {
	if !a.available {
		return CaptureOutcome{Status: CaptureUnavailable}
	}

	// LISTENING: wait for audio within the bounded window.
	audio, err := a.recorder.Record(ctx, a.captureLimit)
	if err != nil {
		log.Printf("Voice capture timed out or failed: %v", err)
		return CaptureOutcome{Status: CaptureTimedOut}
	}
	if len(audio) == 0 {
		return CaptureOutcome{Status: CaptureTimedOut}
	}

	// TRANSCRIBING: recognition failures are routine, not fatal.
	result, err := a.stt.Recognize(ctx, audio)
	if err != nil {
		log.Printf("Speech recognition failed: %v", err)
		return CaptureOutcome{Status: CaptureUnrecognized}
	}
	if result.Transcript == "" || result.Confidence < confidenceThreshold {
		return CaptureOutcome{Status: CaptureUnrecognized, Confidence: result.Confidence}
	}

	return CaptureOutcome{Status: CaptureOK, Text: result.Transcript, Confidence: result.Confidence}
}

// CanRender reports whether speech output is configured.
func (a *Adapter) CanRender() bool {
	return a.tts != nil && a.tts.Configured() && a.player != nil && a.player.Available()
}

// Render synthesizes the text, plays it, and blocks until playback
// completes. The transient audio file is removed unconditionally, even
// when playback fails.
func (a *Adapter) Render(ctx context.Context, text string) error {
	if !a.CanRender() {
		return &RenderError{Stage: "synthesize", Err: fmt.Errorf("speech output not configured")}
	}

	audio, err := a.tts.Synthesize(ctx, text)
	if err != nil {
		return &RenderError{Stage: "synthesize", Err: err}
	}

	f, err := os.CreateTemp("", "speech-*.mp3")
	if err != nil {
		return &RenderError{Stage: "write", Err: err}
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return &RenderError{Stage: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		return &RenderError{Stage: "write", Err: err}
	}

	if err := a.player.Play(ctx, path); err != nil {
		return &RenderError{Stage: "play", Err: err}
	}
	return nil
}
