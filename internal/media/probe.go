package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// LoadError marks a local asset that failed to probe or decode. A failing
// asset is surfaced on its own and never aborts unrelated assets.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load media %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError reports whether err wraps a media load failure.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// ProbeInfo is the subset of ffprobe output the compositor and synchronizers
// need.
type ProbeInfo struct {
	FormatName      string
	DurationSeconds float64
	Width           int
	Height          int
	HasAudio        bool
	HasVideo        bool
}

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Probe runs ffprobe against a local media file.
func Probe(ctx context.Context, runner Runner, ffprobePath, target string) (ProbeInfo, error) {
	if runner == nil {
		runner = CmdRunner{}
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	args := []string{
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-print_format", "json",
		target,
	}

	result, runErr := runner.Run(ctx, ffprobePath, args, RunOptions{})
	if runErr != nil {
		return ProbeInfo{}, &LoadError{Path: target, Err: fmt.Errorf("ffprobe: %w", runErr)}
	}
	if len(result.Stdout) == 0 {
		return ProbeInfo{}, &LoadError{Path: target, Err: fmt.Errorf("ffprobe produced no output")}
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return ProbeInfo{}, &LoadError{Path: target, Err: fmt.Errorf("decode ffprobe output: %w", err)}
	}

	info := ProbeInfo{FormatName: parsed.Format.FormatName}
	if parsed.Format.Duration != "" {
		if v, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.DurationSeconds = v
		}
	}
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			info.HasVideo = true
			if s.Width > 0 {
				info.Width = s.Width
				info.Height = s.Height
			}
		}
	}

	return info, nil
}
