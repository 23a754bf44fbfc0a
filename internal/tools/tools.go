package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"storyreel/internal/media"
)

// Tool names the external binaries the renderer shells out to.
const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
)

// Status describes one detected tool.
type Status struct {
	Tool    string `json:"tool"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Found   bool   `json:"found"`
	Error   string `json:"error,omitempty"`
}

// Resolve returns the path to a tool, honoring the STORYREEL_FFMPEG /
// STORYREEL_FFPROBE overrides before falling back to PATH lookup.
func Resolve(name string) (string, error) {
	if override := os.Getenv("STORYREEL_" + strings.ToUpper(name)); override != "" {
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", name, err)
	}
	return path, nil
}

// Detect reports the status of ffmpeg and ffprobe, including version strings
// when the binaries respond.
func Detect(ctx context.Context, runner media.Runner) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	var statuses []Status
	for _, name := range []string{FFmpeg, FFprobe} {
		st := Status{Tool: name}
		path, err := Resolve(name)
		if err != nil {
			st.Error = err.Error()
			statuses = append(statuses, st)
			continue
		}
		st.Path = path
		st.Found = true
		if version, err := readVersion(ctx, runner, path); err != nil {
			st.Error = err.Error()
		} else {
			st.Version = version
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// readVersion parses the first line of `<tool> -version`, which both ffmpeg
// and ffprobe print as "<tool> version <ver> ...".
func readVersion(ctx context.Context, runner media.Runner, path string) (string, error) {
	res, err := runner.Run(ctx, path, []string{"-version"}, media.RunOptions{})
	if err != nil {
		return "", fmt.Errorf("run %s -version: %w", path, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	fields := strings.Fields(line)
	if len(fields) >= 3 && fields[1] == "version" {
		return fields[2], nil
	}
	if line == "" {
		return "", fmt.Errorf("%s produced no version output", path)
	}
	return line, nil
}
