package steps

import (
	"context"
	"fmt"

	"github.com/ternarybob/docworker/internal/convert"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func init() {
	pipeline.Register("wkhtmltopdf", newWkHtmlToPdfStep)
}

type wkHtmlToPdfStep struct {
	pipeline.BaseStep
	extraArgs []string
}

func newWkHtmlToPdfStep(tmpl *models.Template, options map[string]string) (pipeline.Step, error) {
	return &wkHtmlToPdfStep{
		BaseStep:  pipeline.BaseStep{StepName: "wkhtmltopdf"},
		extraArgs: splitArgs(options[optionArgs]),
	}, nil
}

func (s *wkHtmlToPdfStep) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	if doc.Format.Name != models.FormatHTML.Name {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "wkhtmltopdf", Reason: fmt.Sprintf("does not support %q as input", doc.Format.Name)}
	}
	cfg := externalsCfg.WkHtmlToPdf
	args := append(append([]string{}, s.extraArgs...), cfg.Args...)
	out, err := convert.WkHtmlToPdf(ctx, cfg.Command, workdir, doc.Content, args, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &models.DocumentFile{Format: models.FormatPDF, Content: out}, nil
}
