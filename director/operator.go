package director

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/teranos/carousel/film"
	"github.com/teranos/carousel/trip"
)

// Operator is a Director that can also save the current view as a PNG.
type Operator struct {
	*Director
	stage      *film.Stage
	outputDir  string
	frameCount int
	frames     []string
}

// NewOperator returns an operator writing frames into outputDir.
func NewOperator(t *testing.T, model Inspectable, outputDir string) *Operator {
	return &Operator{
		Director:  New(t, model),
		stage:     film.NewStage(film.DefaultConfig()),
		outputDir: outputDir,
	}
}

// WithFilmConfig changes the frame geometry.
func (op *Operator) WithFilmConfig(config film.Config) *Operator {
	op.stage = film.NewStage(config)
	return op
}

// Start wraps Director.Start to keep the fluent chain on *Operator.
func (op *Operator) Start() *Operator {
	op.Director.Start()
	return op
}

// PressNext wraps Director.PressNext.
func (op *Operator) PressNext() *Operator {
	op.Director.PressNext()
	return op
}

// PressPrevious wraps Director.PressPrevious.
func (op *Operator) PressPrevious() *Operator {
	op.Director.PressPrevious()
	return op
}

// WaitForCondition wraps Director.WaitForCondition.
func (op *Operator) WaitForCondition(condition string) *Operator {
	op.Director.WaitForCondition(condition)
	return op
}

// Capture saves the current view as frame_NNN_label.png. A failed save is
// a stumble, not a failure.
func (op *Operator) Capture(label string) *Operator {
	op.stage.Load(op.View())
	path := filepath.Join(op.outputDir, fmt.Sprintf("frame_%03d_%s.png", op.frameCount, label))
	if err := op.stage.Capture(path); err != nil {
		op.record(trip.NewStumble("visual", "failed to capture frame", trip.Context{"path": path, "error": err.Error()}))
		return op
	}
	op.frameCount++
	op.frames = append(op.frames, path)
	op.step("capture", label)
	return op
}

// Frames returns the paths written so far.
func (op *Operator) Frames() []string { return op.frames }
