package story

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// CharacterImage is a user-supplied reference image fed to scene generation.
type CharacterImage struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// Storyboard is the whole authoring state for one project: the story text,
// reference characters, ordered scenes, and the narration track.
type Storyboard struct {
	Story      string           `yaml:"story"`
	Characters []CharacterImage `yaml:"characters,omitempty"`
	Scenes     []Scene          `yaml:"scenes"`
	Narration  *Narration       `yaml:"narration,omitempty"`
}

// Session holds the current storyboard snapshot. Every mutation derives a new
// snapshot from the latest state under the lock, so concurrent async
// completions (e.g. per-scene generations finishing out of order) can never
// lose updates; no caller holds a mutable alias into scene internals across a
// suspension point.
type Session struct {
	mu    sync.Mutex
	board Storyboard
}

// NewSession starts an empty session.
func NewSession() *Session {
	return &Session{}
}

// Snapshot returns a deep copy of the current storyboard.
func (s *Session) Snapshot() Storyboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneBoard(s.board)
}

// Update applies fn to a copy of the latest storyboard and commits the
// result. fn must not retain references into the snapshot after returning.
func (s *Session) Update(fn func(*Storyboard)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneBoard(s.board)
	fn(&next)
	s.board = next
}

// ReplaceScenes swaps the whole scene list, the only way scenes are removed.
func (s *Session) ReplaceScenes(scenes []Scene) {
	s.Update(func(b *Storyboard) {
		b.Scenes = scenes
	})
}

// UpdateScene applies fn to the scene with the given id, if present.
func (s *Session) UpdateScene(id string, fn func(*Scene)) {
	s.Update(func(b *Storyboard) {
		for i := range b.Scenes {
			if b.Scenes[i].ID == id {
				fn(&b.Scenes[i])
				return
			}
		}
	})
}

// SetNarration replaces the narration configuration.
func (s *Session) SetNarration(n *Narration) {
	s.Update(func(b *Storyboard) {
		if n == nil {
			b.Narration = nil
			return
		}
		copy := *n
		b.Narration = &copy
	})
}

// AddCharacter registers a reference character image.
func (s *Session) AddCharacter(path string) CharacterImage {
	ch := CharacterImage{ID: uuid.New().String(), Path: path}
	s.Update(func(b *Storyboard) {
		b.Characters = append(b.Characters, ch)
	})
	return ch
}

// Load reads a storyboard from a YAML file. A missing file yields an empty
// storyboard.
func Load(path string) (Storyboard, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Storyboard{}, nil
		}
		return Storyboard{}, fmt.Errorf("read storyboard: %w", err)
	}
	var b Storyboard
	if err := yaml.Unmarshal(contents, &b); err != nil {
		return Storyboard{}, fmt.Errorf("unmarshal storyboard: %w", err)
	}
	return b, nil
}

// Save writes the storyboard as YAML. Serialization is the explicit
// persistence boundary; nothing else writes session state.
func Save(path string, b Storyboard) error {
	buf, err := yaml.Marshal(&b)
	if err != nil {
		return fmt.Errorf("marshal storyboard: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write storyboard: %w", err)
	}
	return nil
}

// Restore seeds the session from a loaded storyboard.
func (s *Session) Restore(b Storyboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = cloneBoard(b)
}

func cloneBoard(b Storyboard) Storyboard {
	out := b
	out.Characters = append([]CharacterImage(nil), b.Characters...)
	out.Scenes = make([]Scene, len(b.Scenes))
	for i, sc := range b.Scenes {
		out.Scenes[i] = sc
		out.Scenes[i].Images = append([]SceneImage(nil), sc.Images...)
		if sc.Music != nil {
			m := *sc.Music
			out.Scenes[i].Music = &m
		}
		if sc.Overlay != nil {
			o := *sc.Overlay
			out.Scenes[i].Overlay = &o
		}
	}
	if b.Narration != nil {
		n := *b.Narration
		out.Narration = &n
	}
	return out
}
