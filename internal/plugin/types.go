// Package plugin discovers external action plugins and runs them when a
// gesture is recognized.
package plugin

import "encoding/json"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request is written to the plugin's stdin as JSON.
type Request struct {
	Action     string          `json:"action"`
	Label      string          `json:"label"`
	Previous   string          `json:"previous,omitempty"`
	Side       string          `json:"side,omitempty"`
	SkeletonID int             `json:"skeleton_id"`
	Fingers    int             `json:"fingers"`
	Config     json.RawMessage `json:"config,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// Response is read from the plugin's stdout as JSON.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
