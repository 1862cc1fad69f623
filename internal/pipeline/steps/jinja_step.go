package steps

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/ternarybob/docworker/internal/filters"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func init() {
	pipeline.Register("jinja", newJinjaStep)
}

const (
	optionRootFile    = "template"
	optionContentType = "content-type"
	optionExtension   = "extension"
)

// jinjaStep plays the role of the source's Jinja2Step: it renders a root
// template file from the template's workspace, with every other file in
// the workspace available as an associated template (the Go analogue of
// jinja2.FileSystemLoader resolving {% include %}/{% import %}).
type jinjaStep struct {
	pipeline.BaseStep
	rootFile  string
	outputFmt models.FileFormat
}

func newJinjaStep(tmpl *models.Template, options map[string]string) (pipeline.Step, error) {
	rootFile, ok := options[optionRootFile]
	if !ok || rootFile == "" {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "jinja", Reason: `missing required "template" option`}
	}

	contentType := options[optionContentType]
	if contentType == "" {
		contentType = models.FormatHTML.ContentType
	}
	extension := options[optionExtension]
	if extension == "" {
		extension = models.FormatHTML.Extension
	}

	return &jinjaStep{
		BaseStep:  pipeline.BaseStep{StepName: "jinja"},
		rootFile:  rootFile,
		outputFmt: models.FileFormat{Name: extension, ContentType: contentType, Extension: extension},
	}, nil
}

func (s *jinjaStep) ExecuteFirst(ctx context.Context, rc pipeline.RenderContext) (*models.DocumentFile, error) {
	tmpl, err := s.compile(rc.Files)
	if err != nil {
		return nil, fmt.Errorf("jinja step: %w", err)
	}

	renderCtx := map[string]any{
		"ctx":           rc.Data,
		"asset_fetcher": assetFetcherFunc(ctx, rc.AssetFetch),
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, s.rootFile, renderCtx); err != nil {
		return nil, &pipeline.ErrStepInvariantViolated{StepName: "jinja", Reason: fmt.Sprintf("rendering %q: %v", s.rootFile, err)}
	}

	return &models.DocumentFile{Format: s.outputFmt, Content: buf.Bytes()}, nil
}

// compile parses every workspace file as a named template in one shared
// template set, so the root file can reference the others by name.
func (s *jinjaStep) compile(files map[string]string) (*template.Template, error) {
	root := template.New(s.rootFile).Funcs(filters.FuncMap())
	for name, content := range files {
		var err error
		if name == s.rootFile {
			_, err = root.Parse(content)
		} else {
			_, err = root.New(name).Parse(content)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", name, err)
		}
	}
	if root.Lookup(s.rootFile) == nil {
		return nil, fmt.Errorf("root template %q not found among %d workspace files", s.rootFile, len(files))
	}
	return root, nil
}

// assetFetcherFunc adapts the workspace's context-taking AssetFetch into a
// single-argument closure usable from within a template, mirroring the
// asset_fetcher closure steps.py injects into the jinja render context.
func assetFetcherFunc(ctx context.Context, fetch func(context.Context, string) (models.Asset, error)) func(string) (models.Asset, error) {
	return func(fileName string) (models.Asset, error) {
		if fetch == nil {
			return models.Asset{}, fmt.Errorf("no asset fetcher configured")
		}
		return fetch(ctx, fileName)
	}
}
