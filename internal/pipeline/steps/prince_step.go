package steps

import (
	"context"
	"fmt"

	"github.com/ternarybob/docworker/internal/convert"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func init() {
	pipeline.Register("prince", newPrinceStep)
}

// princeStep is an alternative HTML->PDF transformer to wkhtmltopdf,
// wired into the same closed registry so a Format can pick either
// renderer per its Steps descriptor.
type princeStep struct {
	pipeline.BaseStep
	extraArgs []string
}

func newPrinceStep(tmpl *models.Template, options map[string]string) (pipeline.Step, error) {
	return &princeStep{
		BaseStep:  pipeline.BaseStep{StepName: "prince"},
		extraArgs: splitArgs(options[optionArgs]),
	}, nil
}

func (s *princeStep) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	if doc.Format.Name != models.FormatHTML.Name {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "prince", Reason: fmt.Sprintf("does not support %q as input", doc.Format.Name)}
	}
	cfg := externalsCfg.Prince
	args := append(append([]string{}, s.extraArgs...), cfg.Args...)
	out, err := convert.Prince(ctx, cfg.Command, workdir, doc.Content, args, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &models.DocumentFile{Format: models.FormatPDF, Content: out}, nil
}
