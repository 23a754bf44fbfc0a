package export

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"storyreel/internal/overlay"
	"storyreel/internal/timeline"
)

// TransitionSec is the cross-fade window between image segments. When less
// than this remains before a segment's end and a next segment exists, the
// current frame fades out while the next fades in, linear in remaining time.
const TransitionSec = 0.5

// frameRenderer composites one output frame at a time. All letterboxed frame
// renders are prepared during preload so the draw loop only blends and copies.
type frameRenderer struct {
	width  int
	height int

	// frames maps an image path to its full-frame letterboxed render.
	frames map[string]*image.RGBA
	// overlayImages maps an overlay image path to its render at the overlay's
	// pixel rect size.
	overlayImages map[string]*image.RGBA

	scratch *image.RGBA
}

func newFrameRenderer(width, height int) *frameRenderer {
	return &frameRenderer{
		width:         width,
		height:        height,
		frames:        make(map[string]*image.RGBA),
		overlayImages: make(map[string]*image.RGBA),
		scratch:       image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// addImage letterboxes src into a full frame and retains it under path.
func (r *frameRenderer) addImage(path string, src image.Image) {
	frame := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(frame, frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	dst := letterboxRect(src.Bounds().Dx(), src.Bounds().Dy(), r.width, r.height)
	xdraw.CatmullRom.Scale(frame, dst, src, src.Bounds(), xdraw.Over, nil)

	r.frames[path] = frame
}

// addOverlayImage scales src to the overlay's pixel rect size and retains it.
func (r *frameRenderer) addOverlayImage(path string, src image.Image, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	r.overlayImages[path] = scaled
}

// render produces the frame for a timeline instant: the active segment's
// image, cross-faded into the next segment when inside the transition window,
// with the scene overlay (if any) drawn on top at its percentage rect. The
// returned buffer is reused between calls; the caller must consume it before
// the next render.
func (r *frameRenderer) render(tl timeline.Timeline, elapsed float64, segIdx int, ov *overlay.Config, ovFrame *image.RGBA) *image.RGBA {
	out := r.scratch
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	if segIdx >= 0 && segIdx < len(tl.Segments) {
		seg := tl.Segments[segIdx]
		cur := r.frames[seg.Path]

		remaining := seg.End - elapsed
		if remaining < TransitionSec && segIdx+1 < len(tl.Segments) {
			next := r.frames[tl.Segments[segIdx+1].Path]
			if next != nil {
				draw.Draw(out, out.Bounds(), next, image.Point{}, draw.Src)
			}
			if cur != nil {
				alpha := remaining / TransitionSec
				if alpha < 0 {
					alpha = 0
				}
				mask := image.NewUniform(color.Alpha{A: uint8(alpha * 255)})
				draw.DrawMask(out, out.Bounds(), cur, image.Point{}, mask, image.Point{}, draw.Over)
			}
		} else if cur != nil {
			draw.Draw(out, out.Bounds(), cur, image.Point{}, draw.Src)
		}
	}

	if ov != nil {
		r.drawOverlay(out, ov, ovFrame)
	}

	return out
}

func (r *frameRenderer) drawOverlay(dst *image.RGBA, ov *overlay.Config, ovFrame *image.RGBA) {
	rect := ov.PixelRect(float64(r.width), float64(r.height))
	bounds := image.Rect(int(rect.X), int(rect.Y), int(rect.X+rect.W), int(rect.Y+rect.H))

	var src *image.RGBA
	switch ov.Kind {
	case overlay.KindVideo:
		src = ovFrame
	default:
		src = r.overlayImages[ov.Path]
	}
	if src == nil {
		return
	}

	// Sources are pre-scaled to the overlay rect; a plain draw keeps the loop
	// cheap. Fall back to scaling when sizes drifted (e.g. rect edited after
	// preload).
	if src.Bounds().Dx() == bounds.Dx() && src.Bounds().Dy() == bounds.Dy() {
		draw.Draw(dst, bounds, src, src.Bounds().Min, draw.Over)
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, bounds, src, src.Bounds(), xdraw.Over, nil)
}

// letterboxRect centers a source of srcW x srcH inside frameW x frameH
// preserving aspect ratio (letterboxed or pillarboxed as needed).
func letterboxRect(srcW, srcH, frameW, frameH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rect(0, 0, frameW, frameH)
	}
	scaleW := float64(frameW) / float64(srcW)
	scaleH := float64(frameH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(srcW) * scale)
	h := int(float64(srcH) * scale)
	x := (frameW - w) / 2
	y := (frameH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}
