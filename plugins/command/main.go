// Package main provides a plugin that runs a configured command when a
// gesture is recognized.
//
// The "run" action executes config.argv with {label}, {previous}, {side}
// and {fingers} replaced by the request's values. The same values are
// exported as YUBI_* environment variables. The "notify" action only
// formats config.message and returns it as response data.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ayusman/yubi/internal/plugin"
)

// CommandConfig is the per-action configuration stored with the binding.
type CommandConfig struct {
	Argv    []string `json:"argv"`
	Message string   `json:"message"`
}

func main() {
	resp := handle(os.Stdin)
	json.NewEncoder(os.Stdout).Encode(resp)
}

func handle(r io.Reader) plugin.Response {
	var req plugin.Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return failure(fmt.Sprintf("failed to decode request: %v", err))
	}

	var cfg CommandConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return failure(fmt.Sprintf("failed to parse config: %v", err))
		}
	}

	switch req.Action {
	case "run":
		out, err := run(cfg.Argv, &req)
		if err != nil {
			return failure(fmt.Sprintf("action run failed: %v", err))
		}
		return success(map[string]string{"output": out})
	case "notify":
		msg := cfg.Message
		if msg == "" {
			msg = "{side} hand: {label}"
		}
		return success(map[string]string{"message": expand(msg, &req)})
	default:
		return failure(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func run(argv []string, req *plugin.Request) (string, error) {
	if len(argv) == 0 {
		return "", errors.New("argv is required")
	}

	args := make([]string, len(argv))
	for i, a := range argv {
		args[i] = expand(a, req)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = append(os.Environ(),
		"YUBI_LABEL="+req.Label,
		"YUBI_PREVIOUS="+req.Previous,
		"YUBI_SIDE="+req.Side,
		"YUBI_FINGERS="+strconv.Itoa(req.Fingers),
		"YUBI_SKELETON="+strconv.Itoa(req.SkeletonID),
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, string(output))
	}
	return strings.TrimSpace(string(output)), nil
}

func expand(s string, req *plugin.Request) string {
	return strings.NewReplacer(
		"{label}", req.Label,
		"{previous}", req.Previous,
		"{side}", req.Side,
		"{fingers}", strconv.Itoa(req.Fingers),
	).Replace(s)
}

func success(data any) plugin.Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return failure(err.Error())
	}
	return plugin.Response{Success: true, Data: raw}
}

func failure(msg string) plugin.Response {
	return plugin.Response{Success: false, Error: msg}
}
