// Package pipeline implements the step factory and execution pipeline
// (C5): a Format's ordered, non-empty Step chain, where the first step is
// a Producer (builds a DocumentFile from the render context) and every
// later step is a Transformer (converts the previous DocumentFile).
package pipeline

import (
	"context"
	"fmt"

	"github.com/ternarybob/docworker/internal/models"
)

// ErrStepInvariantViolated is returned when a step is asked to play a role
// it does not support — a Producer-only step used as a Transformer, or
// vice versa.
type ErrStepInvariantViolated struct {
	StepName string
	Reason   string
}

func (e *ErrStepInvariantViolated) Error() string {
	return fmt.Sprintf("step %q invariant violated: %s", e.StepName, e.Reason)
}

// RenderContext is the data made available to the first (Producer) step.
type RenderContext struct {
	Data       map[string]any
	Files      map[string]string // template workspace files, by name, for the jinja producer
	Workdir    string            // the job's on-disk workspace, for subprocess converters needing real file access
	AssetFetch func(ctx context.Context, fileName string) (models.Asset, error)
}

// Step is one link of a Format's pipeline. A step plays exactly one role:
// Producer (ExecuteFirst) or Transformer (ExecuteFollow); calling the
// unsupported method is a StepInvariantViolated condition, not a panic.
type Step interface {
	Name() string
	ExecuteFirst(ctx context.Context, rc RenderContext) (*models.DocumentFile, error)
	ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error)
}

// BaseStep gives concrete steps the default "wrong role" behavior so each
// step type only needs to implement the method matching its actual role.
type BaseStep struct {
	StepName string
}

func (b BaseStep) Name() string { return b.StepName }

func (b BaseStep) ExecuteFirst(ctx context.Context, rc RenderContext) (*models.DocumentFile, error) {
	return nil, &ErrStepInvariantViolated{StepName: b.StepName, Reason: "cannot be the first step in a format"}
}

func (b BaseStep) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	return nil, &ErrStepInvariantViolated{StepName: b.StepName, Reason: "cannot follow another step"}
}

// Factory builds a Step from its descriptor. Registered factories are the
// closed set of step kinds the worker understands.
type Factory func(template *models.Template, options map[string]string) (Step, error)

var registry = map[string]Factory{}

// Register adds a step kind to the closed registry. Called from each step
// kind's init().
func Register(name string, factory Factory) {
	registry[name] = factory
}

// Create builds a step by name, returning StepInvariantViolated-class error
// on an unknown kind (mirroring the source's create_step KeyError).
func Create(name string, template *models.Template, options map[string]string) (Step, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, &ErrStepInvariantViolated{StepName: name, Reason: "unknown step kind"}
	}
	return factory(template, options)
}

// Pipeline executes a Format's ordered step chain.
type Pipeline struct {
	Steps []Step
}

// Build constructs a Pipeline from a Format's step descriptors.
func Build(template *models.Template, format models.Format) (*Pipeline, error) {
	if len(format.Steps) == 0 {
		return nil, &ErrStepInvariantViolated{StepName: format.Name, Reason: "format has no steps"}
	}
	steps := make([]Step, 0, len(format.Steps))
	for _, d := range format.Steps {
		step, err := Create(d.Name, template, d.Options)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return &Pipeline{Steps: steps}, nil
}

// Execute runs the chain: the first step as Producer, every subsequent
// step as Transformer.
func (p *Pipeline) Execute(ctx context.Context, rc RenderContext) (*models.DocumentFile, error) {
	doc, err := p.Steps[0].ExecuteFirst(ctx, rc)
	if err != nil {
		return nil, err
	}
	for _, step := range p.Steps[1:] {
		doc, err = step.ExecuteFollow(ctx, doc, rc.Workdir)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}
