package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// ProjectPaths captures canonical locations for a storyreel project.
type ProjectPaths struct {
	Root           string
	ConfigFile     string
	StoryboardFile string
	MetaDir        string
	KeysFile       string
	AssetsDir      string
	ExportsDir     string
	LogsDir        string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".storyreel")
	return ProjectPaths{
		Root:           root,
		ConfigFile:     filepath.Join(root, "config.yaml"),
		StoryboardFile: filepath.Join(root, "storyreel.yaml"),
		MetaDir:        metaDir,
		KeysFile:       filepath.Join(metaDir, "keys.yaml"),
		AssetsDir:      filepath.Join(root, "assets"),
		ExportsDir:     filepath.Join(root, "exports"),
		LogsDir:        filepath.Join(root, "logs"),
	}
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureMetaDirs creates the standard assets/exports/logs hierarchy alongside
// the hidden .storyreel metadata directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.AssetsDir, p.ExportsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportFile returns the path for a named export inside the exports dir.
func (p ProjectPaths) ExportFile(name string) string {
	return filepath.Join(p.ExportsDir, name)
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
