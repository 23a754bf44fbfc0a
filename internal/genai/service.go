package genai

import "context"

// Service is the boundary to the external generative provider. The core only
// consumes these four operations; the wire format behind them belongs to the
// provider.
type Service interface {
	// SplitStory turns a story into an ordered list of scene descriptions.
	// desiredScenes <= 0 lets the service choose the count.
	SplitStory(ctx context.Context, storyText string, desiredScenes int) ([]string, error)

	// GenerateCharacterImage produces a reference character image from a
	// prompt.
	GenerateCharacterImage(ctx context.Context, prompt string) ([]byte, error)

	// GenerateSceneImage produces a scene image consistent with the given
	// reference images. May fail with ContentFilteredError when the service
	// returns no usable image.
	GenerateSceneImage(ctx context.Context, references [][]byte, prompt string) ([]byte, error)

	// EditImage applies a prompt-driven edit to an existing image.
	EditImage(ctx context.Context, src []byte, mimeType, prompt string) ([]byte, error)
}
