// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package collect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/storage"
	"github.com/voicebankai/pkg/commons"
)

type fakeForwarder struct {
	result *ForwardResult
	err    error

	calls    int
	gotName  string
	gotType  string
	gotLabel string
}

func (f *fakeForwarder) Forward(_ context.Context, _ []byte, filename, contentType, label string) (*ForwardResult, error) {
	f.calls++
	f.gotName = filename
	f.gotType = contentType
	f.gotLabel = label
	return f.result, f.err
}

type fakeTranscoder struct {
	err   error
	calls int
}

func (f *fakeTranscoder) ToMP3(_ context.Context, input []byte, filename string) ([]byte, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return append([]byte("mp3:"), input...), strings.TrimSuffix(filename, ".webm") + ".mp3", nil
}

func newTestService(t *testing.T, forwarder Forwarder, transcoder *fakeTranscoder) *Service {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-collect"),
		commons.Level("debug"),
	)
	if err != nil {
		t.Fatalf("NewApplicationLogger: %v", err)
	}
	cfg := &config.AppConfig{}
	cfg.Collect.MaxUploadBytes = 1 << 20
	cfg.Session.UploadsDir = t.TempDir()
	archive, err := storage.NewArchive(cfg, logger)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	return NewService(cfg, logger, transcoder, forwarder, archive)
}

func TestProcessForwardsAcceptedFormatsUnchanged(t *testing.T) {
	fwd := &fakeForwarder{result: &ForwardResult{Status: 200, Body: []byte(`{"success":true}`)}}
	trans := &fakeTranscoder{}
	svc := newTestService(t, fwd, trans)

	result, err := svc.Process(context.Background(), []byte("RIFFaudio"), "take.wav", "audio/wav", []byte(`{"sessionId":"s"}`))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Kind != ResultForwarded {
		t.Fatalf("kind = %v, want ResultForwarded", result.Kind)
	}
	if result.Status != 200 {
		t.Errorf("status = %d, want 200", result.Status)
	}
	if trans.calls != 0 {
		t.Errorf("wav payload must not be transcoded, got %d conversion calls", trans.calls)
	}
	if fwd.gotName != "take.wav" || fwd.gotLabel != `{"sessionId":"s"}` {
		t.Errorf("forwarder got name=%q label=%q", fwd.gotName, fwd.gotLabel)
	}
}

func TestProcessTranscodesUnsupportedFormats(t *testing.T) {
	fwd := &fakeForwarder{result: &ForwardResult{Status: 200, Body: []byte(`{}`)}}
	trans := &fakeTranscoder{}
	svc := newTestService(t, fwd, trans)

	result, err := svc.Process(context.Background(), []byte("opus"), "take.webm", "audio/webm", nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if trans.calls != 1 {
		t.Fatalf("conversion calls = %d, want 1", trans.calls)
	}
	if fwd.gotName != "take.mp3" || fwd.gotType != "audio/mpeg" {
		t.Errorf("forwarder got name=%q type=%q, want converted mp3", fwd.gotName, fwd.gotType)
	}
	if result.Filename != "take.mp3" {
		t.Errorf("result filename = %q, want take.mp3", result.Filename)
	}
}

func TestProcessTranscodeFailure(t *testing.T) {
	fwd := &fakeForwarder{}
	trans := &fakeTranscoder{err: errors.New("ffmpeg exited 1")}
	svc := newTestService(t, fwd, trans)

	_, err := svc.Process(context.Background(), []byte("opus"), "take.webm", "audio/webm", nil)
	var te *ErrTranscode
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *ErrTranscode", err)
	}
	if fwd.calls != 0 {
		t.Errorf("failed conversion must not be forwarded, got %d calls", fwd.calls)
	}
}

func TestProcessCallerErrors(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		filename    string
		contentType string
		wantErr     error
	}{
		{"empty payload", nil, "take.wav", "audio/wav", ErrEmptyPayload},
		{"not audio", []byte("x"), "notes.txt", "text/plain", ErrUnsupportedMedia},
		{"too large", make([]byte, 2<<20), "take.wav", "audio/wav", ErrPayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd := &fakeForwarder{}
			svc := newTestService(t, fwd, &fakeTranscoder{})
			_, err := svc.Process(context.Background(), tt.data, tt.filename, tt.contentType, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if fwd.calls != 0 {
				t.Errorf("caller error must not reach the forwarder")
			}
		})
	}
}

func TestProcessDegradesOnTransportError(t *testing.T) {
	fwd := &fakeForwarder{err: errors.New("dial tcp: connection refused")}
	svc := newTestService(t, fwd, &fakeTranscoder{})

	result, err := svc.Process(context.Background(), []byte("RIFFaudio"), "take.wav", "audio/wav", []byte(`{"sessionId":"s","duration":1.5}`))
	if err != nil {
		t.Fatalf("degradation must not surface an error, got %v", err)
	}
	if result.Kind != ResultAcceptedLocally {
		t.Fatalf("kind = %v, want ResultAcceptedLocally", result.Kind)
	}
	if !strings.Contains(result.Message, "saved locally") {
		t.Errorf("message = %q, want a saved-locally notice", result.Message)
	}

	recordings, listErr := svc.archive.List()
	if listErr != nil {
		t.Fatalf("List: %v", listErr)
	}
	if len(recordings) != 1 {
		t.Fatalf("archived recordings = %d, want 1", len(recordings))
	}
	if recordings[0].SessionID != "s" {
		t.Errorf("archived session id = %q, want s", recordings[0].SessionID)
	}
}

func TestProcessDegradesOnGatewayStatuses(t *testing.T) {
	for _, status := range []int{502, 503, 504} {
		fwd := &fakeForwarder{result: &ForwardResult{Status: status, Body: []byte("bad gateway")}}
		svc := newTestService(t, fwd, &fakeTranscoder{})

		result, err := svc.Process(context.Background(), []byte("RIFFaudio"), "take.wav", "audio/wav", nil)
		if err != nil {
			t.Fatalf("status %d: %v", status, err)
		}
		if result.Kind != ResultAcceptedLocally {
			t.Errorf("status %d: kind = %v, want ResultAcceptedLocally", status, result.Kind)
		}
	}
}

func TestProcessPassesThroughRemoteRejections(t *testing.T) {
	// The remote service answered for itself; its verdict is relayed, not
	// masked by degradation.
	for _, status := range []int{400, 401, 413, 500} {
		fwd := &fakeForwarder{result: &ForwardResult{Status: status, Body: []byte(`{"error":"nope"}`)}}
		svc := newTestService(t, fwd, &fakeTranscoder{})

		result, err := svc.Process(context.Background(), []byte("RIFFaudio"), "take.wav", "audio/wav", nil)
		if err != nil {
			t.Fatalf("status %d: %v", status, err)
		}
		if result.Kind != ResultForwarded {
			t.Errorf("status %d: kind = %v, want ResultForwarded", status, result.Kind)
		}
		if result.Status != status {
			t.Errorf("status %d not passed through, got %d", status, result.Status)
		}
	}
}

func TestIsAudioUpload(t *testing.T) {
	tests := []struct {
		filename    string
		contentType string
		want        bool
	}{
		{"take.wav", "audio/wav", true},
		{"take.webm", "audio/webm", true},
		{"blob", "application/octet-stream", true},
		{"take.ogg", "", true},
		{"notes.txt", "text/plain", false},
		{"clip.mov", "video/quicktime", false},
	}
	for _, tt := range tests {
		if got := IsAudioUpload(tt.filename, tt.contentType); got != tt.want {
			t.Errorf("IsAudioUpload(%q, %q) = %v, want %v", tt.filename, tt.contentType, got, tt.want)
		}
	}
}
