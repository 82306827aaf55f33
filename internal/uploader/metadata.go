// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package uploader

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Metadata is the label payload attached to each upload. It is derived per
// request and never stored beyond it.
type Metadata struct {
	SessionID   string  `json:"sessionId"`
	PhraseID    int     `json:"phraseId"`
	PhraseText  string  `json:"phraseText"`
	Timestamp   int64   `json:"timestamp"`
	Duration    float64 `json:"duration"`
	AudioFormat string  `json:"audioFormat"`
	SampleRate  int     `json:"sampleRate"`
	ProjectID   string  `json:"projectId"`
	AppVersion  string  `json:"appVersion"`

	// CustomFields are flattened into the label object alongside the
	// standard keys.
	CustomFields map[string]string `json:"-"`
}

// Label renders the metadata as the JSON string the collect API expects
// under the "label" form field.
func (m Metadata) Label() (string, error) {
	base, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	if len(m.CustomFields) == 0 {
		return string(base), nil
	}

	var merged map[string]interface{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return "", err
	}
	for k, v := range m.CustomFields {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	out, err := json.Marshal(merged)
	return string(out), err
}

// Filename derives the upload filename from the session, phrase and the
// declared mime type.
func (m Metadata) Filename() string {
	return fmt.Sprintf("recording_%s_%d.%s", m.SessionID, m.PhraseID, ExtensionFor(m.AudioFormat))
}

// ExtensionFor maps a declared mime type to a file extension. Unrecognized
// types fall back to webm, the browser recorder default.
func ExtensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "wav"
	case strings.Contains(mimeType, "mp3"), strings.Contains(mimeType, "mpeg"):
		return "mp3"
	case strings.Contains(mimeType, "mp4"):
		return "mp4"
	case strings.Contains(mimeType, "flac"):
		return "flac"
	default:
		return "webm"
	}
}
