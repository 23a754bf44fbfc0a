package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	p, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := map[string]string{
		"config":     filepath.Join(root, "config.yaml"),
		"storyboard": filepath.Join(root, "storyreel.yaml"),
		"meta":       filepath.Join(root, ".storyreel"),
		"keys":       filepath.Join(root, ".storyreel", "keys.yaml"),
		"assets":     filepath.Join(root, "assets"),
		"exports":    filepath.Join(root, "exports"),
		"logs":       filepath.Join(root, "logs"),
	}
	got := map[string]string{
		"config":     p.ConfigFile,
		"storyboard": p.StoryboardFile,
		"meta":       p.MetaDir,
		"keys":       p.KeysFile,
		"assets":     p.AssetsDir,
		"exports":    p.ExportsDir,
		"logs":       p.LogsDir,
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s = %s, want %s", name, got[name], w)
		}
	}
}

func TestResolveEmptyFlagUsesCwd(t *testing.T) {
	p, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if p.Root != cwd {
		t.Errorf("root = %s, want cwd %s", p.Root, cwd)
	}
}

func TestEnsureMetaDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	p, err := Resolve(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.EnsureRoot(); err != nil {
		t.Fatalf("EnsureRoot: %v", err)
	}
	if err := p.EnsureMetaDirs(); err != nil {
		t.Fatalf("EnsureMetaDirs: %v", err)
	}

	for _, dir := range []string{p.MetaDir, p.AssetsDir, p.ExportsDir, p.LogsDir} {
		ok, err := DirExists(dir)
		if err != nil || !ok {
			t.Errorf("DirExists(%s) = %v, %v", dir, ok, err)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if ok, err := FileExists(file); err != nil || !ok {
		t.Errorf("FileExists(file) = %v, %v", ok, err)
	}
	if ok, err := FileExists(dir); err != nil || ok {
		t.Errorf("FileExists(dir) = %v, %v, want false", ok, err)
	}
	if ok, err := FileExists(filepath.Join(dir, "absent")); err != nil || ok {
		t.Errorf("FileExists(absent) = %v, %v, want false", ok, err)
	}
}

func TestExportFile(t *testing.T) {
	p, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got := p.ExportFile("story.mp4")
	if got != filepath.Join(p.ExportsDir, "story.mp4") {
		t.Errorf("ExportFile = %s", got)
	}
}
