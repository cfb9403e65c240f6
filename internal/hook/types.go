// Package hook runs external executables in response to game events, for
// example to speak coaching messages or flash a light on a knockout.
package hook

import (
	"encoding/json"

	"github.com/ayusman/physioduel/internal/exercise"
)

// ManifestFile is the manifest file name inside each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and the event kinds it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Request is written as JSON to the hook's stdin.
type Request struct {
	MatchID string          `json:"match_id"`
	Event   exercise.Event  `json:"event"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is read as JSON from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribes to kind. "*" matches every
// event.
func (h *Hook) Handles(kind exercise.EventKind) bool {
	for _, e := range h.Manifest.Events {
		if e == "*" || e == string(kind) {
			return true
		}
	}
	return false
}
