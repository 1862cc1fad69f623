package steps

import (
	"context"
	"testing"

	"github.com/ternarybob/docworker/internal/config"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/pipeline"
)

func TestJSONStep_ProducesSortedIndentedJSON(t *testing.T) {
	step, err := pipeline.Create("json", &models.Template{}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	doc, err := step.ExecuteFirst(context.Background(), pipeline.RenderContext{Data: map[string]any{"b": 1, "a": 2}})
	if err != nil {
		t.Fatalf("ExecuteFirst() error = %v", err)
	}
	if doc.Format.Name != "json" {
		t.Fatalf("format = %q, want json", doc.Format.Name)
	}
	if want := "{\n  \"a\": 2,\n  \"b\": 1\n}"; string(doc.Content) != want {
		t.Fatalf("content = %q, want %q", doc.Content, want)
	}
}

func TestJinjaStep_RendersRootAgainstAssociatedTemplate(t *testing.T) {
	step, err := pipeline.Create("jinja", &models.Template{}, map[string]string{optionRootFile: "root.html"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rc := pipeline.RenderContext{
		Data: map[string]any{"Name": "Alice"},
		Files: map[string]string{
			"root.html":    `<html>{{template "partial.html" .}}</html>`,
			"partial.html": "Hello {{.ctx.Name}}",
		},
	}
	doc, err := step.ExecuteFirst(context.Background(), rc)
	if err != nil {
		t.Fatalf("ExecuteFirst() error = %v", err)
	}
	want := "<html>Hello Alice</html>"
	if string(doc.Content) != want {
		t.Fatalf("content = %q, want %q", doc.Content, want)
	}
}

func TestJinjaStep_MissingRootFileOptionIsInvariantViolation(t *testing.T) {
	if _, err := pipeline.Create("jinja", &models.Template{}, nil); err == nil {
		t.Fatal("Create() error = nil, want invariant violation")
	}
}

func TestPandocStep_RejectsUnknownFormats(t *testing.T) {
	if _, err := pipeline.Create("pandoc", &models.Template{}, map[string]string{optionFrom: "bogus", optionTo: "html"}); err == nil {
		t.Fatal("Create() error = nil, want unknown format error")
	}
}

func TestPandocStep_RejectsMismatchedInput(t *testing.T) {
	Configure(config.ExternalsConfig{})
	step, err := pipeline.Create("pandoc", &models.Template{}, map[string]string{optionFrom: "markdown", optionTo: "html"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = step.ExecuteFollow(context.Background(), &models.DocumentFile{Format: models.FormatHTML}, t.TempDir())
	if err == nil {
		t.Fatal("ExecuteFollow() error = nil, want mismatched-input invariant violation")
	}
}

func TestWkHtmlToPdfStep_RejectsNonHTMLInput(t *testing.T) {
	step, err := pipeline.Create("wkhtmltopdf", &models.Template{}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = step.ExecuteFollow(context.Background(), &models.DocumentFile{Format: models.FormatMarkdown}, t.TempDir())
	if err == nil {
		t.Fatal("ExecuteFollow() error = nil, want non-HTML input rejected")
	}
}

func TestRdfLibConvertStep_RoundTripsTurtleToNTriples(t *testing.T) {
	step, err := pipeline.Create("rdflib-convert", &models.Template{}, map[string]string{optionFrom: "turtle", optionTo: "ntriples"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	input := &models.DocumentFile{
		Format:  models.FormatTurtle,
		Content: []byte("@prefix ex: <http://example.org/> .\nex:s ex:p \"hello\" .\n"),
	}
	out, err := step.ExecuteFollow(context.Background(), input, t.TempDir())
	if err != nil {
		t.Fatalf("ExecuteFollow() error = %v", err)
	}
	if out.Format.Name != "ntriples" {
		t.Fatalf("format = %q, want ntriples", out.Format.Name)
	}
}

func TestRdfLibConvertStep_RejectsMismatchedInput(t *testing.T) {
	step, err := pipeline.Create("rdflib-convert", &models.Template{}, map[string]string{optionFrom: "turtle", optionTo: "ntriples"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = step.ExecuteFollow(context.Background(), &models.DocumentFile{Format: models.FormatJSONLD}, t.TempDir())
	if err == nil {
		t.Fatal("ExecuteFollow() error = nil, want mismatched-input invariant violation")
	}
}
