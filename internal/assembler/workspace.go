// Package assembler implements the template assembler (C4): it turns a
// TemplateComposite plus a job's workdir into a materialized on-disk
// workspace that the converter drivers can operate against, and exposes
// asset-fetching closures for the jinja producer step.
package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ternarybob/docworker/internal/models"
)

// AssetFetcher resolves a template asset's bytes by file name, downloading
// it from object storage on first use. It mirrors steps.py's
// asset_fetcher/asset_path closures injected into the jinja render context.
type AssetFetcher func(ctx context.Context, fileName string) (models.Asset, error)

// Workspace is one job's materialized directory: template text files
// written to disk (for subprocess-based steps that need real file access,
// e.g. wkhtmltopdf's --allow flag) plus in-memory access to the same
// content (for the jinja loader) and to assets (lazily, via FetchAsset).
type Workspace struct {
	Dir          string
	Files        map[string]string // file name -> content, for the jinja loader
	FetchAsset   AssetFetcher
	templateID   string
	assetsByName map[string]models.TemplateAsset
}

// New materializes a workspace under baseDir for one job, writing every
// TemplateFile to disk and indexing TemplateAssets for lazy resolution.
func New(baseDir string, composite *models.TemplateComposite, appUUID string, fetch func(ctx context.Context, appUUID, key string) ([]byte, bool, error)) (*Workspace, error) {
	dir := filepath.Join(baseDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace dir %q: %w", dir, err)
	}

	files := make(map[string]string, len(composite.Files))
	for _, f := range composite.Files {
		path := filepath.Join(dir, f.FileName)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating parent dir for %q: %w", f.FileName, err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return nil, fmt.Errorf("writing template file %q: %w", f.FileName, err)
		}
		files[f.FileName] = f.Content
	}

	assetsByName := make(map[string]models.TemplateAsset, len(composite.Assets))
	for _, a := range composite.Assets {
		assetsByName[a.FileName] = a
	}

	ws := &Workspace{
		Dir:          dir,
		Files:        files,
		templateID:   composite.Template.ID,
		assetsByName: assetsByName,
	}
	ws.FetchAsset = func(ctx context.Context, fileName string) (models.Asset, error) {
		asset, ok := assetsByName[fileName]
		if !ok {
			return models.Asset{}, fmt.Errorf("asset %q not found in template %q", fileName, ws.templateID)
		}
		content, found, err := fetch(ctx, appUUID, assetObjectKey(ws.templateID, asset.UUID))
		if err != nil {
			return models.Asset{}, fmt.Errorf("fetching asset %q: %w", fileName, err)
		}
		if !found {
			return models.Asset{}, fmt.Errorf("asset %q (%s) missing from storage", fileName, asset.UUID)
		}
		return models.Asset{FileName: asset.FileName, ContentType: asset.ContentType, Content: content}, nil
	}

	return ws, nil
}

// assetObjectKey mirrors the storage layout used for template assets,
// distinct from the finished-document key layout.
func assetObjectKey(templateID, assetUUID string) string {
	return fmt.Sprintf("templates/%s/%s", templateID, assetUUID)
}

// AssetPath returns <workspace>/assets/<fileName>. Nothing in the
// workspace writes assets to that path: FetchAsset returns an asset's
// bytes in memory only.
func (w *Workspace) AssetPath(fileName string) string {
	return filepath.Join(w.Dir, "assets", fileName)
}

// Cleanup removes the workspace directory and its contents.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
