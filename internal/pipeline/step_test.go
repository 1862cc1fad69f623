package pipeline

import (
	"context"
	"testing"

	"github.com/ternarybob/docworker/internal/models"
)

type stubProducer struct{ BaseStep }

func (s stubProducer) ExecuteFirst(ctx context.Context, rc RenderContext) (*models.DocumentFile, error) {
	return &models.DocumentFile{Format: models.FormatJSON, Content: []byte("{}")}, nil
}

type stubTransformer struct{ BaseStep }

func (s stubTransformer) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	return &models.DocumentFile{Format: models.FormatHTML, Content: append(doc.Content, []byte("<html/>")...)}, nil
}

func TestPipeline_ExecuteChainsProducerAndTransformers(t *testing.T) {
	p := &Pipeline{Steps: []Step{
		stubProducer{BaseStep{StepName: "producer"}},
		stubTransformer{BaseStep{StepName: "transformer"}},
	}}

	doc, err := p.Execute(context.Background(), RenderContext{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if doc.Format.Name != "html" {
		t.Fatalf("final format = %q, want html", doc.Format.Name)
	}
}

func TestBaseStep_WrongRoleIsInvariantViolation(t *testing.T) {
	b := BaseStep{StepName: "json"}

	if _, err := b.ExecuteFirst(context.Background(), RenderContext{}); err == nil {
		t.Fatal("ExecuteFirst() error = nil, want invariant violation")
	}
	if _, err := b.ExecuteFollow(context.Background(), &models.DocumentFile{}, ""); err == nil {
		t.Fatal("ExecuteFollow() error = nil, want invariant violation")
	}
}

func TestCreate_UnknownStepKind(t *testing.T) {
	if _, err := Create("does-not-exist", &models.Template{}, nil); err == nil {
		t.Fatal("Create() error = nil, want unknown step kind error")
	}
}

func TestBuild_EmptyFormatIsInvariantViolation(t *testing.T) {
	if _, err := Build(&models.Template{}, models.Format{Name: "empty"}); err == nil {
		t.Fatal("Build() error = nil, want empty-format invariant violation")
	}
}
