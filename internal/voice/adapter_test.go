package voice

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type fakeRecorder struct {
	available bool
	audio     []byte
	err       error
	calls     int
}

func (f *fakeRecorder) Available() bool { return f.available }

func (f *fakeRecorder) Record(ctx context.Context, limit time.Duration) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

type fakePlayer struct {
	available  bool
	err        error
	playedPath string
	sawFile    bool
}

func (f *fakePlayer) Available() bool { return f.available }

func (f *fakePlayer) Play(ctx context.Context, path string) error {
	f.playedPath = path
	if _, err := os.Stat(path); err == nil {
		f.sawFile = true
	}
	return f.err
}

type fakeSTT struct {
	configured bool
	result     Transcription
	err        error
}

func (f *fakeSTT) Configured() bool { return f.configured }

func (f *fakeSTT) Recognize(ctx context.Context, audio []byte) (Transcription, error) {
	return f.result, f.err
}

type fakeTTS struct {
	configured bool
	audio      []byte
	err        error
}

func (f *fakeTTS) Configured() bool { return f.configured }

func (f *fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return f.audio, f.err
}

func TestCaptureUnavailableWithoutRecorder(t *testing.T) {
	recorder := &fakeRecorder{available: false}
	adapter := NewAdapter(recorder, nil, &fakeSTT{configured: true}, nil)

	if adapter.Available() {
		t.Error("Expected adapter unavailable")
	}
	outcome := adapter.Capture(context.Background())
	if outcome.Status != CaptureUnavailable {
		t.Errorf("Expected unavailable status, got %s", outcome.Status)
	}
	if recorder.calls != 0 {
		t.Errorf("Expected no recording attempt, got %d", recorder.calls)
	}
}

func TestCaptureUnavailableWithoutCredentials(t *testing.T) {
	adapter := NewAdapter(&fakeRecorder{available: true}, nil, &fakeSTT{configured: false}, nil)

	if adapter.Available() {
		t.Error("Expected adapter unavailable without transcription credentials")
	}
}

func TestCaptureTimedOut(t *testing.T) {
	recorder := &fakeRecorder{available: true, err: errors.New("recording timed out")}
	adapter := NewAdapter(recorder, nil, &fakeSTT{configured: true}, nil)

	outcome := adapter.Capture(context.Background())
	if outcome.Status != CaptureTimedOut {
		t.Errorf("Expected timed_out status, got %s", outcome.Status)
	}
}

func TestCaptureEmptyAudioIsTimeout(t *testing.T) {
	recorder := &fakeRecorder{available: true, audio: nil}
	adapter := NewAdapter(recorder, nil, &fakeSTT{configured: true}, nil)

	outcome := adapter.Capture(context.Background())
	if outcome.Status != CaptureTimedOut {
		t.Errorf("Expected timed_out status, got %s", outcome.Status)
	}
}

func TestCaptureLowConfidenceIsUnrecognized(t *testing.T) {
	recorder := &fakeRecorder{available: true, audio: []byte("wav")}
	stt := &fakeSTT{configured: true, result: Transcription{Transcript: "forse", Confidence: 0.3}}
	adapter := NewAdapter(recorder, nil, stt, nil)

	outcome := adapter.Capture(context.Background())
	if outcome.Status != CaptureUnrecognized {
		t.Errorf("Expected unrecognized status, got %s", outcome.Status)
	}
	if outcome.Text != "" {
		t.Errorf("Expected no text below threshold, got %q", outcome.Text)
	}
}

func TestCaptureRecognitionErrorIsUnrecognized(t *testing.T) {
	recorder := &fakeRecorder{available: true, audio: []byte("wav")}
	stt := &fakeSTT{configured: true, err: errors.New("service unavailable")}
	adapter := NewAdapter(recorder, nil, stt, nil)

	outcome := adapter.Capture(context.Background())
	if outcome.Status != CaptureUnrecognized {
		t.Errorf("Expected unrecognized status, got %s", outcome.Status)
	}
}

func TestCaptureOK(t *testing.T) {
	recorder := &fakeRecorder{available: true, audio: []byte("wav")}
	stt := &fakeSTT{configured: true, result: Transcription{Transcript: "aggiungi un evento", Confidence: 0.87}}
	adapter := NewAdapter(recorder, nil, stt, nil)

	outcome := adapter.Capture(context.Background())
	if outcome.Status != CaptureOK {
		t.Fatalf("Expected ok status, got %s", outcome.Status)
	}
	if outcome.Text != "aggiungi un evento" {
		t.Errorf("Unexpected transcript: %q", outcome.Text)
	}
	if outcome.Confidence != 0.87 {
		t.Errorf("Unexpected confidence: %f", outcome.Confidence)
	}
}

func TestRenderPlaysAndCleansUp(t *testing.T) {
	player := &fakePlayer{available: true}
	tts := &fakeTTS{configured: true, audio: []byte("mp3")}
	adapter := NewAdapter(&fakeRecorder{}, player, &fakeSTT{}, tts)

	if !adapter.CanRender() {
		t.Fatal("Expected rendering available")
	}
	if err := adapter.Render(context.Background(), "Fatto."); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !player.sawFile {
		t.Error("Expected audio file present during playback")
	}
	if _, err := os.Stat(player.playedPath); !os.IsNotExist(err) {
		t.Errorf("Expected audio file removed after playback, stat err: %v", err)
	}
}

func TestRenderPlaybackFailureStillCleansUp(t *testing.T) {
	player := &fakePlayer{available: true, err: errors.New("device busy")}
	tts := &fakeTTS{configured: true, audio: []byte("mp3")}
	adapter := NewAdapter(&fakeRecorder{}, player, &fakeSTT{}, tts)

	err := adapter.Render(context.Background(), "Fatto.")
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Expected RenderError, got %v", err)
	}
	if renderErr.Stage != "play" {
		t.Errorf("Expected play stage, got %s", renderErr.Stage)
	}
	if _, statErr := os.Stat(player.playedPath); !os.IsNotExist(statErr) {
		t.Errorf("Expected audio file removed after failure, stat err: %v", statErr)
	}
}

func TestRenderSynthesisFailure(t *testing.T) {
	player := &fakePlayer{available: true}
	tts := &fakeTTS{configured: true, err: errors.New("quota exceeded")}
	adapter := NewAdapter(&fakeRecorder{}, player, &fakeSTT{}, tts)

	err := adapter.Render(context.Background(), "Fatto.")
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Expected RenderError, got %v", err)
	}
	if renderErr.Stage != "synthesize" {
		t.Errorf("Expected synthesize stage, got %s", renderErr.Stage)
	}
	if player.playedPath != "" {
		t.Error("Expected no playback attempt")
	}
}
