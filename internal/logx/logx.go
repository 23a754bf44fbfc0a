package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"storyreel/internal/paths"
)

// New creates the per-run log file for a command, named
// <command>-<timestamp>.log inside the project's logs directory. Every run
// gets its own file so a failed generate or export can be inspected after
// the fact; the first line records the command and project root.
func New(p paths.ProjectPaths, command string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", command, time.Now().Format("20060102-150405"))
	file, err := os.OpenFile(filepath.Join(p.LogsDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	logger.Printf("storyreel %s: project %s", command, p.Root)
	return logger, file, nil
}
