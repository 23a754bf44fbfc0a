package media

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// AssetCache retains decoded image handles and probed metadata for every
// unique media reference used in one render pass, so rendering never repeats
// decode work and every handle is ready before the draw loop starts. Handles
// live only for the duration of the pass; Release drops them all.
type AssetCache struct {
	runner  Runner
	ffprobe string

	mu     sync.Mutex
	images map[string]image.Image
	probes map[string]ProbeInfo
}

// NewAssetCache creates an empty cache backed by the given tool runner.
func NewAssetCache(runner Runner, ffprobePath string) *AssetCache {
	if runner == nil {
		runner = CmdRunner{}
	}
	return &AssetCache{
		runner:  runner,
		ffprobe: ffprobePath,
		images:  make(map[string]image.Image),
		probes:  make(map[string]ProbeInfo),
	}
}

// Image returns the decoded image for path, decoding and retaining it on
// first use.
func (c *AssetCache) Image(path string) (image.Image, error) {
	c.mu.Lock()
	if img, ok := c.images[path]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("decode image: %w", err)}
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()
	return img, nil
}

// ProbeInfo returns probed metadata for path, probing and retaining it on
// first use.
func (c *AssetCache) ProbeInfo(ctx context.Context, path string) (ProbeInfo, error) {
	c.mu.Lock()
	if info, ok := c.probes[path]; ok {
		c.mu.Unlock()
		return info, nil
	}
	c.mu.Unlock()

	info, err := Probe(ctx, c.runner, c.ffprobe, path)
	if err != nil {
		return ProbeInfo{}, err
	}

	c.mu.Lock()
	c.probes[path] = info
	c.mu.Unlock()
	return info, nil
}

// Duration returns the probed duration for path in seconds.
func (c *AssetCache) Duration(ctx context.Context, path string) (float64, error) {
	info, err := c.ProbeInfo(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.DurationSeconds, nil
}

// Release drops every retained handle.
func (c *AssetCache) Release() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.probes = make(map[string]ProbeInfo)
	c.mu.Unlock()
}
