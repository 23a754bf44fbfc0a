package tui

import "storyreel/internal/story"

// SceneStartedMsg marks a scene's generation attempt as in flight.
type SceneStartedMsg struct {
	SceneID string
}

// SceneFinishedMsg carries the outcome of one scene's generation attempt.
// The model derives the displayed status from the result's error class.
type SceneFinishedMsg struct {
	Result story.SceneResult
}

// BatchDoneMsg signals that the generation batch has run to completion.
type BatchDoneMsg struct{}

// FatalMsg aborts the display with an error.
type FatalMsg struct {
	Err error
}
