package tui

import (
	"io"
	"os"
	"runtime"
	"strings"
)

// OutputMode selects how a long-running command (generate, export) reports
// progress.
type OutputMode int

const (
	// ModeTUI renders a live display: the generation table or the export
	// status line.
	ModeTUI OutputMode = iota
	// ModePlain writes plain text once the work completes.
	ModePlain
	// ModeJSON writes structured output only; no progress rendering.
	ModeJSON
)

// DetectMode picks the reporting mode: --json wins over everything,
// --no-progress forces plain text, and the live display additionally needs
// out to be an interactive terminal.
func DetectMode(out io.Writer, noProgress, jsonOutput bool) OutputMode {
	switch {
	case jsonOutput:
		return ModeJSON
	case noProgress, !IsTerminal(out):
		return ModePlain
	}
	return ModeTUI
}

// IsTerminal reports whether out is an interactive character device with a
// usable TERM. The preview player requires one; progress displays fall back
// to plain text without it.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return false
		}
	}
	return true
}
