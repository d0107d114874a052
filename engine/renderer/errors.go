package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/engine/handle"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer/material"
	"github.com/pkg/errors"
)

// ErrFrameAborted is returned by a render pass that stopped after too many consecutive failed draws.
var ErrFrameAborted = errors.New("renderer: frame aborted")

// Stage names the step of draw submission that failed.
type Stage string

const (
	StageProgram  Stage = "program"
	StageTexture  Stage = "texture"
	StageParams   Stage = "params"
	StageLights   Stage = "lights"
	StageGeometry Stage = "geometry"
	StageUniforms Stage = "uniforms"
	StageDraw     Stage = "draw"
)

// FrameError records one draw command that failed for a reason other than a resource still
// loading. The command was skipped and the pass carried on.
type FrameError struct {
	Queue   material.RenderQueue
	Object  handle.Handle
	Surface *model.Surface
	Stage   Stage
	Err     error
}

func (e FrameError) Error() string {
	return fmt.Sprintf("%s queue, object %s, %s: %v", e.Queue, e.Object, e.Stage, e.Err)
}

func (e FrameError) Unwrap() error {
	return e.Err
}

// stageError tags err with the submission stage it came from.
type stageError struct {
	stage Stage
	err   error
}

func (e *stageError) Error() string {
	return string(e.stage) + ": " + e.err.Error()
}

func (e *stageError) Unwrap() error {
	return e.err
}

func atStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &stageError{stage: stage, err: err}
}

// splitStage returns the stage err was tagged with and the error underneath the tag.
// Untagged errors are attributed to the draw.
func splitStage(err error) (Stage, error) {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage, se.err
	}
	return StageDraw, err
}
