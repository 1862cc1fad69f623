package steps

import (
	"context"
	"fmt"

	"github.com/ternarybob/docworker/internal/convert"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func init() {
	pipeline.Register("relaxed", newRelaxedStep)
}

// relaxedStep renders HTML to PDF with a headless Chromium build instead
// of wkhtmltopdf/Prince, for templates that need modern CSS support
// those two renderers lack.
type relaxedStep struct {
	pipeline.BaseStep
}

func newRelaxedStep(tmpl *models.Template, options map[string]string) (pipeline.Step, error) {
	return &relaxedStep{BaseStep: pipeline.BaseStep{StepName: "relaxed"}}, nil
}

func (s *relaxedStep) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	if doc.Format.Name != models.FormatHTML.Name {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "relaxed", Reason: fmt.Sprintf("does not support %q as input", doc.Format.Name)}
	}
	cfg := externalsCfg.Relaxed
	out, err := convert.Relaxed(ctx, cfg.Command, workdir, doc.Content, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &models.DocumentFile{Format: models.FormatPDF, Content: out}, nil
}
