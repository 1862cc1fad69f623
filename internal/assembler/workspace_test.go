package assembler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/docworker/internal/models"
)

func TestNew_MaterializesFilesToDisk(t *testing.T) {
	baseDir := t.TempDir()
	composite := &models.TemplateComposite{
		Template: &models.Template{ID: "tmpl-1"},
		Files: []models.TemplateFile{
			{FileName: "default.html.j2", Content: "<html>{{ ctx.title }}</html>"},
			{FileName: "nested/partial.html.j2", Content: "partial"},
		},
		Assets: []models.TemplateAsset{
			{FileName: "logo.png", UUID: "asset-1", ContentType: "image/png"},
		},
	}

	ws, err := New(baseDir, composite, "tenant-1", func(ctx context.Context, appUUID, key string) ([]byte, bool, error) {
		return []byte("PNGDATA"), true, nil
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ws.Cleanup()

	content, err := os.ReadFile(filepath.Join(ws.Dir, "default.html.j2"))
	if err != nil {
		t.Fatalf("reading materialized file: %v", err)
	}
	if string(content) != "<html>{{ ctx.title }}</html>" {
		t.Fatalf("materialized content = %q", string(content))
	}

	if ws.Files["nested/partial.html.j2"] != "partial" {
		t.Fatalf("in-memory file map missing nested file")
	}
}

func TestFetchAsset_ResolvesFromStorage(t *testing.T) {
	baseDir := t.TempDir()
	composite := &models.TemplateComposite{
		Template: &models.Template{ID: "tmpl-1"},
		Assets: []models.TemplateAsset{
			{FileName: "logo.png", UUID: "asset-1", ContentType: "image/png"},
		},
	}

	ws, err := New(baseDir, composite, "tenant-1", func(ctx context.Context, appUUID, key string) ([]byte, bool, error) {
		if appUUID != "tenant-1" {
			t.Fatalf("appUUID = %q, want tenant-1", appUUID)
		}
		return []byte("PNGDATA"), true, nil
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ws.Cleanup()

	asset, err := ws.FetchAsset(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("FetchAsset() error = %v", err)
	}
	if string(asset.Content) != "PNGDATA" {
		t.Fatalf("asset content = %q", string(asset.Content))
	}
}

func TestFetchAsset_UnknownFileNameErrors(t *testing.T) {
	baseDir := t.TempDir()
	composite := &models.TemplateComposite{Template: &models.Template{ID: "tmpl-1"}}

	ws, err := New(baseDir, composite, "tenant-1", func(ctx context.Context, appUUID, key string) ([]byte, bool, error) {
		return nil, false, nil
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer ws.Cleanup()

	if _, err := ws.FetchAsset(context.Background(), "missing.png"); err == nil {
		t.Fatal("FetchAsset() error = nil, want not-found error")
	}
}
