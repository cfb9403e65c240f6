// Package main provides a hook that reads physioduel event messages aloud.
// It uses "say" on macOS and "espeak" elsewhere.
//
// Build it next to its manifest:
//
//	go build -o hooks/speak/speak ./hooks/speak
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// Request represents the input from the hook executor.
type Request struct {
	MatchID string `json:"match_id"`
	Event   struct {
		Kind    string `json:"kind"`
		Player  int    `json:"player"`
		Message string `json:"message"`
	} `json:"event"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type speakConfig struct {
	Rate int `json:"rate"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	if req.Event.Message == "" {
		writeResponse(nil)
		return
	}

	var cfg speakConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeResponse(fmt.Errorf("invalid config: %w", err))
			return
		}
	}

	writeResponse(speak(req.Event.Message, cfg.Rate))
}

// speak runs the platform speech synthesizer.
func speak(text string, rate int) error {
	name, args := "espeak", []string{}
	if runtime.GOOS == "darwin" {
		name = "say"
	}
	if rate > 0 {
		if name == "say" {
			args = append(args, "-r", strconv.Itoa(rate))
		} else {
			args = append(args, "-s", strconv.Itoa(rate))
		}
	}
	args = append(args, text)

	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(output))
	}
	return nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
