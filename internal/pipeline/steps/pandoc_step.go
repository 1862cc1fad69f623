package steps

import (
	"context"
	"fmt"

	"github.com/ternarybob/docworker/internal/convert"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func init() {
	pipeline.Register("pandoc", newPandocStep)
}

const (
	optionFrom = "from"
	optionTo   = "to"
	optionArgs = "args"
)

// pandocInputFormats and pandocOutputFormats are the closed sets pandoc is
// actually asked to read and write in this worker; pandoc itself supports
// a much larger set, but the step only exposes what the templates use.
var (
	pandocInputFormats = map[string]bool{
		models.FormatDOCX.Name: true, models.FormatEPUB.Name: true, models.FormatHTML.Name: true,
		models.FormatLaTeX.Name: true, models.FormatMarkdown.Name: true, models.FormatODT.Name: true,
		models.FormatRST.Name: true,
	}
	pandocOutputFormats = map[string]bool{
		models.FormatAsciiDoc.Name: true, models.FormatDocBook4.Name: true, models.FormatDocBook5.Name: true,
		models.FormatDOCX.Name: true, models.FormatEPUB.Name: true, models.FormatHTML.Name: true,
		models.FormatLaTeX.Name: true, models.FormatMarkdown.Name: true, models.FormatODT.Name: true,
		models.FormatRST.Name: true, models.FormatRTF.Name: true,
	}
)

type pandocStep struct {
	pipeline.BaseStep
	inputFormat  models.FileFormat
	outputFormat models.FileFormat
	extraArgs    []string
}

func newPandocStep(tmpl *models.Template, options map[string]string) (pipeline.Step, error) {
	from, ok := models.LookupFileFormat(options[optionFrom])
	if !ok || !pandocInputFormats[from.Name] {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "pandoc", Reason: fmt.Sprintf("unknown input format %q", options[optionFrom])}
	}
	to, ok := models.LookupFileFormat(options[optionTo])
	if !ok || !pandocOutputFormats[to.Name] {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "pandoc", Reason: fmt.Sprintf("unknown output format %q", options[optionTo])}
	}
	return &pandocStep{
		BaseStep:     pipeline.BaseStep{StepName: "pandoc"},
		inputFormat:  from,
		outputFormat: to,
		extraArgs:    splitArgs(options[optionArgs]),
	}, nil
}

func (s *pandocStep) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	if doc.Format.Name != s.inputFormat.Name {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "pandoc", Reason: fmt.Sprintf("unexpected input %q for pandoc, expected %q", doc.Format.Name, s.inputFormat.Name)}
	}
	cfg := externalsCfg.Pandoc
	args := append(append([]string{}, s.extraArgs...), cfg.Args...)
	out, err := convert.Pandoc(ctx, cfg.Command, workdir, doc.Content, s.inputFormat.Name, s.outputFormat.Name, args, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &models.DocumentFile{Format: s.outputFormat, Content: out}, nil
}
