package story

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"storyreel/internal/genai"
)

// SceneResult reports the outcome of one scene in a batch run.
type SceneResult struct {
	SceneID string
	ImageID string
	Err     error
}

// Generator orchestrates image generation against the service and applies the
// outcomes to the session. Batch runs are sequential per scene: the provider
// is the bottleneck, and backpressure keeps quota errors from cascading.
type Generator struct {
	Service   genai.Service
	Session   *Session
	AssetsDir string
	Logger    *log.Logger

	// ImageDurationSec is the duration assigned to freshly generated images.
	ImageDurationSec float64

	// OnProgress, when set, is invoked after each scene completes.
	OnProgress func(done, total int, res SceneResult)
}

// SplitStory calls the service and replaces the session's scenes with the
// returned descriptions. Existing scenes are discarded; callers confirm first.
func (g *Generator) SplitStory(ctx context.Context, storyText string, desiredScenes int) ([]Scene, error) {
	descriptions, err := g.Service.SplitStory(ctx, storyText, desiredScenes)
	if err != nil {
		return nil, err
	}
	scenes := ScenesFromDescriptions(descriptions)
	g.Session.Update(func(b *Storyboard) {
		b.Story = storyText
		b.Scenes = scenes
	})
	return scenes, nil
}

// GenerateCharacter asks the service for a reference character image, stores
// it under the assets dir, and registers it on the session.
func (g *Generator) GenerateCharacter(ctx context.Context, prompt string) (CharacterImage, error) {
	data, err := g.Service.GenerateCharacterImage(ctx, prompt)
	if err != nil {
		return CharacterImage{}, err
	}
	path, err := g.writeAsset("character", data)
	if err != nil {
		return CharacterImage{}, err
	}
	return g.Session.AddCharacter(path), nil
}

// GenerateAll runs scene-image generation for every scene in order. A failing
// scene records an error status on its image entry and the batch moves on; the
// returned results hold one entry per scene. Context cancellation stops the
// remainder of the batch.
func (g *Generator) GenerateAll(ctx context.Context) ([]SceneResult, error) {
	board := g.Session.Snapshot()
	results := make([]SceneResult, 0, len(board.Scenes))
	for i, sc := range board.Scenes {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := g.generateScene(ctx, sc.ID)
		results = append(results, res)
		if g.OnProgress != nil {
			g.OnProgress(i+1, len(board.Scenes), res)
		}
	}
	return results, nil
}

// RegenerateScene runs generation for one scene, the retry affordance after a
// failed or filtered attempt.
func (g *Generator) RegenerateScene(ctx context.Context, sceneID string) SceneResult {
	return g.generateScene(ctx, sceneID)
}

// EditImage applies a prompt-driven edit to an existing scene image. The edit
// result is written to a new asset; the original file stays untouched so a
// rejected edit loses nothing.
func (g *Generator) EditImage(ctx context.Context, sceneID, imageID, prompt string) (SceneImage, error) {
	var src SceneImage
	found := false
	for _, sc := range g.Session.Snapshot().Scenes {
		if sc.ID != sceneID {
			continue
		}
		for _, img := range sc.Images {
			if img.ID == imageID {
				src = img
				found = true
			}
		}
	}
	if !found {
		return SceneImage{}, fmt.Errorf("scene %s has no image %s", sceneID, imageID)
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return SceneImage{}, fmt.Errorf("read source image: %w", err)
	}
	edited, err := g.Service.EditImage(ctx, data, mimeForPath(src.Path), prompt)
	if err != nil {
		return SceneImage{}, err
	}
	path, err := g.writeAsset("scene", edited)
	if err != nil {
		return SceneImage{}, err
	}

	img := NewImage(path, g.imageDuration())
	img.Status = StatusDone
	img.Included = true
	g.Session.UpdateScene(sceneID, func(sc *Scene) {
		sc.Images = append(sc.Images, img)
	})
	return img, nil
}

func (g *Generator) generateScene(ctx context.Context, sceneID string) SceneResult {
	board := g.Session.Snapshot()
	var scene *Scene
	for i := range board.Scenes {
		if board.Scenes[i].ID == sceneID {
			scene = &board.Scenes[i]
		}
	}
	if scene == nil {
		return SceneResult{SceneID: sceneID, Err: fmt.Errorf("unknown scene %s", sceneID)}
	}

	img := NewImage("", g.imageDuration())
	img.Status = StatusGenerating
	g.Session.UpdateScene(sceneID, func(sc *Scene) {
		sc.Images = append(sc.Images, img)
	})
	res := SceneResult{SceneID: sceneID, ImageID: img.ID}

	refs, err := g.loadReferences(board.Characters)
	if err == nil {
		var data []byte
		data, err = g.Service.GenerateSceneImage(ctx, refs, scene.Description)
		if err == nil {
			var path string
			path, err = g.writeAsset("scene", data)
			if err == nil {
				g.Session.UpdateScene(sceneID, func(sc *Scene) {
					for i := range sc.Images {
						if sc.Images[i].ID == img.ID {
							sc.Images[i].Path = path
							sc.Images[i].Status = StatusDone
							sc.Images[i].Included = true
							sc.Images[i].LastError = ""
						}
					}
				})
				return res
			}
		}
	}

	res.Err = err
	g.logf("scene %s: generation failed: %v", sceneID, err)
	g.Session.UpdateScene(sceneID, func(sc *Scene) {
		for i := range sc.Images {
			if sc.Images[i].ID == img.ID {
				sc.Images[i].Status = StatusError
				sc.Images[i].LastError = err.Error()
			}
		}
	})
	return res
}

func (g *Generator) loadReferences(chars []CharacterImage) ([][]byte, error) {
	var refs [][]byte
	for _, ch := range chars {
		data, err := os.ReadFile(ch.Path)
		if err != nil {
			return nil, fmt.Errorf("read character image: %w", err)
		}
		refs = append(refs, data)
	}
	return refs, nil
}

func (g *Generator) writeAsset(prefix string, data []byte) (string, error) {
	if err := os.MkdirAll(g.AssetsDir, 0o755); err != nil {
		return "", fmt.Errorf("create assets dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.png", prefix, shortID())
	path := filepath.Join(g.AssetsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return path, nil
}

func (g *Generator) imageDuration() float64 {
	if g.ImageDurationSec > 0 {
		return g.ImageDurationSec
	}
	return 2.5
}

func (g *Generator) logf(format string, args ...any) {
	if g.Logger != nil {
		g.Logger.Printf("generate: "+format, args...)
	}
}

func mimeForPath(path string) string {
	switch filepath.Ext(path) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

func shortID() string {
	return uuid.New().String()[:8]
}
