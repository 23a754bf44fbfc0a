package export

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/media"
	"storyreel/internal/overlay"
	"storyreel/internal/story"
	"storyreel/internal/timeline"
)

// Options carries the output encoding parameters.
type Options struct {
	Width            int
	Height           int
	FPS              int
	Codec            string
	Preset           string
	CRF              int
	AudioCodec       string
	AudioBitrateKbps int
	SampleRate       int

	// Progress, when set, receives (framesDone, framesTotal) as the draw loop
	// advances.
	Progress func(done, total int)
}

func (o *Options) applyDefaults() {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 720
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.Codec == "" {
		o.Codec = "libx264"
	}
	if o.Preset == "" {
		o.Preset = "medium"
	}
	if o.CRF <= 0 {
		o.CRF = 20
	}
	if o.AudioCodec == "" {
		o.AudioCodec = "aac"
	}
	if o.AudioBitrateKbps <= 0 {
		o.AudioBitrateKbps = 192
	}
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
}

// Service renders a storyboard into a single video file. It owns transient
// decoded-media handles only for the duration of one export and releases them
// on completion or abort.
type Service struct {
	Runner  media.Runner
	Logger  *log.Logger
	FFmpeg  string
	FFprobe string
	LogsDir string
}

// NewService creates an exporter using the given tool paths ("ffmpeg" /
// "ffprobe" resolve through PATH when empty).
func NewService(runner media.Runner, logger *log.Logger) *Service {
	if runner == nil {
		runner = media.CmdRunner{}
	}
	return &Service{
		Runner:  runner,
		Logger:  logger,
		FFmpeg:  "ffmpeg",
		FFprobe: "ffprobe",
	}
}

// Export renders scenes + narration into outputPath. The operation is a
// one-shot: there is no automatic retry, and a failure leaves no partial
// output behind.
func (s *Service) Export(ctx context.Context, scenes []story.Scene, narration *story.Narration, outputPath string, opts Options) error {
	opts.applyDefaults()

	// Pre-flight validation happens before any preload or recording work.
	eligible := 0
	for _, sc := range scenes {
		eligible += len(sc.EligibleImages())
	}
	if eligible == 0 {
		return &ValidationError{Reason: "no scene has an included, finished image"}
	}
	if outputPath == "" {
		return &ValidationError{Reason: "output path is empty"}
	}

	scenes = cloneScenes(scenes)
	rate := 1.0
	var localNarration *story.Narration
	if narration != nil && narration.Path != "" {
		n := *narration
		localNarration = &n
		rate = n.EffectiveRate()
	}

	// The nominal timeline is rate-adjusted once; the draw loop and the audio
	// graph both consume this adjusted timeline so their clocks agree.
	tl := timeline.Build(scenes).RateAdjusted(rate)
	if tl.Empty() {
		return &ValidationError{Reason: "timeline is empty"}
	}

	cache := media.NewAssetCache(s.Runner, s.FFprobe)
	defer cache.Release()

	renderer := newFrameRenderer(opts.Width, opts.Height)
	if err := s.preload(ctx, cache, renderer, scenes, localNarration, tl, opts); err != nil {
		return exportErr("preload", err)
	}

	graph := buildAudioGraph(scenes, localNarration, tl, rate)

	if err := s.record(ctx, scenes, tl, graph, renderer, outputPath, opts); err != nil {
		// No partial output may remain visible as if it were complete.
		_ = os.Remove(outputPath)
		return err
	}

	return nil
}

// preload decodes every unique media reference the adjusted timeline or any
// overlay needs, concurrently, and fails the whole export on the first
// failure. Audio durations are probed here so trim windows can be clamped.
func (s *Service) preload(ctx context.Context, cache *media.AssetCache, renderer *frameRenderer, scenes []story.Scene, narration *story.Narration, tl timeline.Timeline, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(media.PreloadConcurrency())

	var mu sync.Mutex // guards renderer maps

	seen := make(map[string]bool)
	for _, seg := range tl.Segments {
		if seen[seg.Path] {
			continue
		}
		seen[seg.Path] = true
		path := seg.Path
		g.Go(func() error {
			img, err := cache.Image(path)
			if err != nil {
				return err
			}
			mu.Lock()
			renderer.addImage(path, img)
			mu.Unlock()
			return nil
		})
	}

	if narration != nil && narration.DurationSec <= 0 {
		path := narration.Path
		g.Go(func() error {
			d, err := cache.Duration(gctx, path)
			if err != nil {
				return err
			}
			narration.DurationSec = d
			return nil
		})
	}

	for i := range scenes {
		sc := &scenes[i]
		if m := sc.Music; m != nil && m.Path != "" && m.DurationSec <= 0 {
			track := m
			g.Go(func() error {
				d, err := cache.Duration(gctx, track.Path)
				if err != nil {
					return err
				}
				track.DurationSec = d
				return nil
			})
		}
		if ov := sc.Overlay; ov != nil && ov.Path != "" {
			cfg := ov
			switch cfg.Kind {
			case overlay.KindImage:
				g.Go(func() error {
					img, err := cache.Image(cfg.Path)
					if err != nil {
						return err
					}
					rect := cfg.PixelRect(float64(opts.Width), float64(opts.Height))
					mu.Lock()
					renderer.addOverlayImage(cfg.Path, img, int(rect.W), int(rect.H))
					mu.Unlock()
					return nil
				})
			case overlay.KindVideo:
				g.Go(func() error {
					_, err := cache.ProbeInfo(gctx, cfg.Path)
					return err
				})
			}
		}
	}

	return g.Wait()
}

// record runs the draw loop against the recorder: raw RGBA frames are piped
// into one ffmpeg process that also mixes the audio graph, so video frame
// timestamps and audio offsets derive from the same elapsed-time source.
func (s *Service) record(ctx context.Context, scenes []story.Scene, tl timeline.Timeline, graph audioGraph, renderer *frameRenderer, outputPath string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return exportErr("record", fmt.Errorf("ensure output directory: %w", err))
	}

	args := recorderArgs(graph, tl.Total, outputPath, opts)

	cmd := exec.CommandContext(ctx, s.FFmpeg, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return exportErr("record", fmt.Errorf("recorder stdin: %w", err))
	}

	var logFile *os.File
	if s.LogsDir != "" {
		if err := os.MkdirAll(s.LogsDir, 0o755); err == nil {
			logFile, _ = os.Create(filepath.Join(s.LogsDir, "export.log"))
		}
	}
	if logFile != nil {
		defer logFile.Close()
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		return exportErr("record", fmt.Errorf("start recorder: %w", err))
	}

	kill := func() {
		stdin.Close()
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}

	overlaySources := make(map[int]*videoFrameSource)
	defer func() {
		for _, src := range overlaySources {
			src.Close()
		}
	}()

	writer := bufio.NewWriterSize(stdin, opts.Width*opts.Height*4)
	totalFrames := int(math.Ceil(tl.Total * float64(opts.FPS)))

	for f := 0; f < totalFrames; f++ {
		if err := ctx.Err(); err != nil {
			kill()
			return exportErr("record", err)
		}

		elapsed := float64(f) / float64(opts.FPS)
		segIdx := tl.SegmentAt(elapsed)
		if segIdx < 0 {
			segIdx = len(tl.Segments) - 1
		}
		sceneIdx := tl.SceneAt(elapsed)

		var ov *overlay.Config
		var ovFrame *image.RGBA
		if sceneIdx >= 0 && sceneIdx < len(scenes) {
			ov = scenes[sceneIdx].Overlay
			if ov != nil && ov.Kind == overlay.KindVideo {
				frame, err := s.overlayFrame(ctx, overlaySources, sceneIdx, ov, opts)
				if err != nil {
					kill()
					return exportErr("record", err)
				}
				ovFrame = frame
			}
		}

		frame := renderer.render(tl, elapsed, segIdx, ov, ovFrame)
		if _, err := writer.Write(frame.Pix); err != nil {
			kill()
			return exportErr("record", fmt.Errorf("write frame %d: %w", f, err))
		}

		if opts.Progress != nil {
			opts.Progress(f+1, totalFrames)
		}
	}

	if err := writer.Flush(); err != nil {
		kill()
		return exportErr("record", fmt.Errorf("flush frames: %w", err))
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return exportErr("record", fmt.Errorf("recorder: %w", err))
	}

	s.logf("export complete: %s (%d frames, %.2fs)", outputPath, totalFrames, tl.Total)
	return nil
}

// overlayFrame advances the scene's overlay video by one frame. The decoder
// is spawned when its scene first becomes active; frames then arrive in
// lock-step with the draw loop because both run at the export frame rate.
func (s *Service) overlayFrame(ctx context.Context, sources map[int]*videoFrameSource, sceneIdx int, ov *overlay.Config, opts Options) (*image.RGBA, error) {
	src, ok := sources[sceneIdx]
	if !ok {
		rect := ov.PixelRect(float64(opts.Width), float64(opts.Height))
		var err error
		src, err = newVideoFrameSource(ctx, s.FFmpeg, ov.Path, int(rect.W), int(rect.H), opts.FPS)
		if err != nil {
			return nil, err
		}
		sources[sceneIdx] = src
	}
	return src.Next()
}

// recorderArgs assembles the single ffmpeg invocation that consumes raw RGBA
// video on stdin, mixes the audio graph, and writes the final container.
func recorderArgs(graph audioGraph, total float64, outputPath string, opts Options) []string {
	args := []string{
		"-hide_banner",
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", strconv.Itoa(opts.FPS),
		"-i", "pipe:0",
	}

	for _, src := range graph.Sources {
		args = append(args, "-i", src.Path)
	}

	if fc := graph.FilterComplex(); fc != "" {
		args = append(args, "-filter_complex", fc)
	}

	args = append(args, "-map", "0:v")
	if out := graph.OutLabel(); out != "" {
		args = append(args, "-map", out)
	}

	args = append(args,
		"-t", ff(total),
		"-c:v", opts.Codec,
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-pix_fmt", "yuv420p",
	)

	if len(graph.Sources) > 0 {
		args = append(args,
			"-c:a", opts.AudioCodec,
			"-b:a", fmt.Sprintf("%dk", opts.AudioBitrateKbps),
			"-ar", strconv.Itoa(opts.SampleRate),
		)
	}

	args = append(args, "-movflags", "+faststart", outputPath)
	return args
}

// cloneScenes deep-copies the storyboard so export never aliases session
// state across its suspension points.
func cloneScenes(scenes []story.Scene) []story.Scene {
	out := make([]story.Scene, len(scenes))
	for i, sc := range scenes {
		out[i] = sc
		out[i].Images = append([]story.SceneImage(nil), sc.Images...)
		if sc.Music != nil {
			m := *sc.Music
			out[i].Music = &m
		}
		if sc.Overlay != nil {
			o := *sc.Overlay
			out[i].Overlay = &o
		}
	}
	return out
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf("export: "+format, args...)
	}
}
