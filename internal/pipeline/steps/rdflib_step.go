package steps

import (
	"context"
	"fmt"

	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
	"github.com/ternarybob/docworker/internal/rdf"
)

func init() {
	pipeline.Register("rdflib-convert", newRdfLibConvertStep)
}

var rdflibFormats = map[string]rdf.Format{
	models.FormatRDFXML.Name:   rdf.FormatRDFXML,
	models.FormatN3.Name:       rdf.FormatN3,
	models.FormatNTriples.Name: rdf.FormatNTriples,
	models.FormatTurtle.Name:   rdf.FormatTurtle,
	models.FormatTriG.Name:     rdf.FormatTriG,
	models.FormatJSONLD.Name:   rdf.FormatJSONLD,
}

type rdfLibConvertStep struct {
	pipeline.BaseStep
	inputFormat  models.FileFormat
	outputFormat models.FileFormat
}

func newRdfLibConvertStep(tmpl *models.Template, options map[string]string) (pipeline.Step, error) {
	from, ok := models.LookupFileFormat(options[optionFrom])
	if !ok {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "rdflib-convert", Reason: fmt.Sprintf("unknown input format %q", options[optionFrom])}
	}
	to, ok := models.LookupFileFormat(options[optionTo])
	if !ok {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "rdflib-convert", Reason: fmt.Sprintf("unknown output format %q", options[optionTo])}
	}
	if _, ok := rdflibFormats[from.Name]; !ok {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "rdflib-convert", Reason: fmt.Sprintf("unknown input format %q", from.Name)}
	}
	if _, ok := rdflibFormats[to.Name]; !ok {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "rdflib-convert", Reason: fmt.Sprintf("unknown output format %q", to.Name)}
	}
	return &rdfLibConvertStep{
		BaseStep:     pipeline.BaseStep{StepName: "rdflib-convert"},
		inputFormat:  from,
		outputFormat: to,
	}, nil
}

func (s *rdfLibConvertStep) ExecuteFollow(ctx context.Context, doc *models.DocumentFile, workdir string) (*models.DocumentFile, error) {
	if doc.Format.Name != s.inputFormat.Name {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "rdflib-convert", Reason: fmt.Sprintf("unexpected input %q for rdflib-convert (expecting %q)", doc.Format.Name, s.inputFormat.Name)}
	}
	out, err := rdf.Convert(rdflibFormats[s.inputFormat.Name], rdflibFormats[s.outputFormat.Name], doc.Content)
	if err != nil {
		return nil, fmt.Errorf("rdflib-convert step: %w", err)
	}
	return &models.DocumentFile{Format: s.outputFormat, Content: out}, nil
}
