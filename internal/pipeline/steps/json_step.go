// Package steps implements the closed registry of concrete step kinds:
// json, jinja, pandoc, wkhtmltopdf, prince, relaxed, rdflib-convert.
package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func init() {
	pipeline.Register("json", newJSONStep)
}

type jsonStep struct {
	pipeline.BaseStep
}

func newJSONStep(template *models.Template, options map[string]string) (pipeline.Step, error) {
	return jsonStep{BaseStep: pipeline.BaseStep{StepName: "json"}}, nil
}

// json.MarshalIndent emits map[string]any keys in sorted order, matching
// the source's sort_keys=True.
func (s jsonStep) ExecuteFirst(ctx context.Context, rc pipeline.RenderContext) (*models.DocumentFile, error) {
	out, err := json.MarshalIndent(rc.Data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json step: marshaling context: %w", err)
	}
	return &models.DocumentFile{Format: models.FormatJSON, Content: out}, nil
}
