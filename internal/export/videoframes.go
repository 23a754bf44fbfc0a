package export

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// videoFrameSource streams an overlay video's frames as raw RGBA at the
// export frame rate, pre-scaled to the overlay's pixel size. Frames are read
// sequentially; the draw loop advances one frame per tick while the overlay's
// scene is active, so no random access is needed. When the stream ends before
// the scene does, the last frame is held.
type videoFrameSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	reader *bufio.Reader

	width  int
	height int
	last   *image.RGBA
	done   bool
}

func newVideoFrameSource(ctx context.Context, ffmpegPath, path string, width, height, fps int) (*videoFrameSource, error) {
	if width%2 != 0 {
		width++
	}
	if height%2 != 0 {
		height++
	}

	args := []string{
		"-hide_banner",
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf("scale=%d:%d,fps=%d", width, height, fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("overlay decoder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start overlay decoder: %w", err)
	}

	return &videoFrameSource{
		cmd:    cmd,
		stdout: stdout,
		reader: bufio.NewReaderSize(stdout, width*height*4),
		width:  width,
		height: height,
	}, nil
}

// Next returns the next decoded frame, or the held last frame once the video
// is exhausted. A nil frame means nothing was ever decoded.
func (s *videoFrameSource) Next() (*image.RGBA, error) {
	if s.done {
		return s.last, nil
	}

	frame := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if _, err := io.ReadFull(s.reader, frame.Pix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.done = true
			return s.last, nil
		}
		return nil, fmt.Errorf("read overlay frame: %w", err)
	}
	s.last = frame
	return frame, nil
}

// Close stops the decoder process.
func (s *videoFrameSource) Close() {
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
}
