// Package coordinator runs a job through its full lifecycle: dequeued ->
// get_document -> prepare_template -> build_document -> store_document ->
// finalize -> FINISHED, with a failure edge to FAILED from every
// non-terminal state. It is the Go analogue of the source's Job.run.
package coordinator

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docworker/internal/assembler"
	"github.com/ternarybob/docworker/internal/config"
	"github.com/ternarybob/docworker/internal/convert"
	"github.com/ternarybob/docworker/internal/joberr"
	"github.com/ternarybob/docworker/internal/ledger"
	"github.com/ternarybob/docworker/internal/limits"
	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/naming"
	"github.com/ternarybob/docworker/internal/objectstore"
	"github.com/ternarybob/docworker/internal/pipeline"
)

// Coordinator owns the per-job state machine and its dependencies.
type Coordinator struct {
	ledger      *ledger.Ledger
	store       *objectstore.Client
	tenants     *ledger.TenantCache
	cfg         *config.Config
	logger      arbor.ILogger
	workdir     string
	watermarker *limits.Watermarker
}

// New builds a Coordinator. workdir is the base directory each job's
// per-job workspace is materialized under (the CLI's workdir argument).
// The Coordinator owns the single process-lifetime Watermarker so a
// tenant's watermark image is read from disk once and reused across jobs.
func New(l *ledger.Ledger, store *objectstore.Client, tenants *ledger.TenantCache, cfg *config.Config, logger arbor.ILogger, workdir string) *Coordinator {
	return &Coordinator{
		ledger:      l,
		store:       store,
		tenants:     tenants,
		cfg:         cfg,
		logger:      logger,
		workdir:     workdir,
		watermarker: limits.NewWatermarker(),
	}
}

// Handle runs one job end to end, satisfying queue.Handler. It always
// returns nil: job-domain failures, including a panic recovered while
// handling the job, are recorded as the document's FAILED state, and a
// document that is already FINISHED is skipped without any state change.
func (c *Coordinator) Handle(ctx context.Context, job *models.Job) error {
	defer func() {
		if r := recover(); r != nil {
			c.fail(ctx, job.DocumentUUID, joberr.New(joberr.Unexpected, fmt.Errorf("panic while handling job: %v", r)))
		}
	}()

	c.logger.Info().Str("document_uuid", job.DocumentUUID).Int64("job_id", job.ID).Msg("processing job")

	doc, err := c.getDocument(ctx, job)
	if err != nil {
		if joberr.Of(err).Kind == joberr.AlreadyFinished {
			c.logger.Info().Str("document_uuid", job.DocumentUUID).Msg("document already finished, skipping job")
			return nil
		}
		c.fail(ctx, job.DocumentUUID, err)
		return nil
	}

	jobTimeout := c.cfg.Experimental.JobTimeout
	if limitsRow, lerr := c.tenants.AppLimits(ctx, job.AppUUID); lerr == nil && limitsRow.JobTimeout > 0 {
		jobTimeout = limitsRow.JobTimeout
	}
	jobCtx := ctx
	var cancel context.CancelFunc
	if jobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, jobTimeout)
		defer cancel()
	}

	finalFile, ws, rerr := c.runPipeline(jobCtx, job, doc)
	if ws != nil {
		defer ws.Cleanup()
	}
	if rerr != nil {
		if jobCtx.Err() != nil {
			rerr = joberr.New(joberr.LimitExceeded, fmt.Errorf("job exceeded its configured timeout: %w", jobCtx.Err()))
		}
		c.fail(ctx, job.DocumentUUID, rerr)
		return nil
	}

	if err := c.storeDocument(ctx, job, doc, finalFile); err != nil {
		c.fail(ctx, job.DocumentUUID, err)
		return nil
	}

	if err := c.finalize(ctx, doc, finalFile); err != nil {
		c.fail(ctx, job.DocumentUUID, err)
		return nil
	}

	c.logger.Info().Str("document_uuid", job.DocumentUUID).Msg("job finished")
	return nil
}

// getDocument is the dequeued -> get_document transition: load the
// document row, reject it if already FINISHED, and mark it PROCESSING.
func (c *Coordinator) getDocument(ctx context.Context, job *models.Job) (*models.Document, error) {
	doc, err := c.ledger.FetchDocument(ctx, job.DocumentUUID)
	if err != nil {
		return nil, joberr.New(joberr.JobNotFound, err)
	}
	if doc.State == models.DocumentFinished {
		return nil, joberr.New(joberr.AlreadyFinished, fmt.Errorf("document %q is already marked as finished", doc.UUID))
	}
	if err := c.ledger.UpdateDocumentRetrieved(ctx, doc.UUID); err != nil {
		return nil, joberr.New(joberr.Unavailable, err)
	}
	return doc, nil
}

// runPipeline is prepare_template -> build_document: assembles the
// template workspace, builds the format's step pipeline, executes it, and
// enforces the per-tenant limits and watermark around the result.
func (c *Coordinator) runPipeline(ctx context.Context, job *models.Job, doc *models.Document) (*models.DocumentFile, *assembler.Workspace, error) {
	composite, err := c.ledger.FetchTemplateComposite(ctx, doc.TemplateID)
	if err != nil {
		return nil, nil, joberr.New(joberr.TemplateMalformed, err)
	}

	format, ok := findFormat(composite.Template, doc.FormatUUID)
	if !ok {
		return nil, nil, joberr.New(joberr.TemplateMalformed, fmt.Errorf("format %q not found in template %q", doc.FormatUUID, doc.TemplateID))
	}

	appConfig, err := c.tenants.AppConfig(ctx, job.AppUUID)
	if err != nil {
		return nil, nil, joberr.New(joberr.Unavailable, err)
	}
	appLimits, err := c.tenants.AppLimits(ctx, job.AppUUID)
	if err != nil {
		return nil, nil, joberr.New(joberr.Unavailable, err)
	}

	ws, err := assembler.New(c.workdir, composite, job.AppUUID, c.fetchFromStore)
	if err != nil {
		return nil, ws, joberr.New(joberr.Unavailable, err)
	}

	p, err := pipeline.Build(composite.Template, format)
	if err != nil {
		return nil, ws, joberr.New(joberr.TemplateMalformed, err)
	}

	rc := pipeline.RenderContext{
		Data:       job.DocumentContext,
		Files:      ws.Files,
		Workdir:    ws.Dir,
		AssetFetch: ws.FetchAsset,
	}
	finalFile, err := p.Execute(ctx, rc)
	if err != nil {
		var cf *convert.ErrConverterFailed
		if errors.As(err, &cf) {
			return nil, ws, joberr.New(joberr.ConverterFailed, err)
		}
		return nil, ws, joberr.New(joberr.StepInvariantViolated, err)
	}

	if err := limits.CheckFormat(finalFile.Format, appConfig); err != nil {
		return nil, ws, err
	}
	if err := limits.CheckDocumentSize(finalFile.ByteSize(), appLimits); err != nil {
		return nil, ws, err
	}
	usedSize, err := c.ledger.GetCurrentlyUsedSize(ctx, job.AppUUID)
	if err != nil {
		return nil, ws, joberr.New(joberr.Unavailable, err)
	}
	if err := limits.CheckStorageUsage(finalFile.ByteSize(), usedSize, appLimits); err != nil {
		return nil, ws, err
	}

	if finalFile.Format.Name == models.FormatPDF.Name {
		watermarkPath := c.cfg.Experimental.PDFWatermark
		watermarkTop := c.cfg.Experimental.PDFWatermarkTop
		if appConfig.WatermarkPath != "" {
			watermarkPath = appConfig.WatermarkPath
			watermarkTop = appConfig.WatermarkTop
		}
		watermarked, err := c.watermarker.Apply(finalFile.Content, watermarkPath, watermarkTop)
		if err != nil {
			return nil, ws, joberr.New(joberr.Unexpected, err)
		}
		finalFile.Content = watermarked
	}

	return finalFile, ws, nil
}

// storeDocument is the build_document -> store_document transition.
func (c *Coordinator) storeDocument(ctx context.Context, job *models.Job, doc *models.Document, file *models.DocumentFile) error {
	if err := c.store.EnsureBucket(ctx); err != nil {
		return joberr.New(joberr.Unavailable, err)
	}
	if _, err := c.store.StoreDocument(ctx, job.AppUUID, doc.UUID, file.Format.ContentType, file.Content); err != nil {
		return joberr.New(joberr.Unavailable, err)
	}
	return nil
}

// finalize is the store_document -> finalize -> FINISHED transition.
func (c *Coordinator) finalize(ctx context.Context, doc *models.Document, file *models.DocumentFile) error {
	fileName := naming.FileName(naming.Name(c.cfg.Documents.NamingStrategy, doc), file.Format)
	if err := c.ledger.UpdateDocumentFinished(ctx, doc.UUID, fileName, file.Format.ContentType, file.ByteSize()); err != nil {
		return joberr.New(joberr.Unavailable, err)
	}
	return nil
}

// fail classifies err and records the document as FAILED with a message
// derived from the classification — mirroring the source's catch-all
// run() handler that always tries to set FAILED, logging (but not
// panicking) if even that update fails.
func (c *Coordinator) fail(ctx context.Context, documentUUID string, err error) {
	je := joberr.Of(err)
	c.logger.Error().Str("document_uuid", documentUUID).Str("kind", string(je.Kind)).Err(je).Msg("job failed")
	if uerr := c.ledger.UpdateDocumentState(ctx, documentUUID, models.DocumentFailed, je.Error()); uerr != nil {
		c.logger.Warn().Str("document_uuid", documentUUID).Err(uerr).Msg("could not record FAILED state")
	}
}

func (c *Coordinator) fetchFromStore(ctx context.Context, appUUID, key string) ([]byte, bool, error) {
	var buf bytes.Buffer
	found, err := c.store.DownloadFile(ctx, c.store.TenantKey(appUUID, key), &buf)
	if err != nil || !found {
		return nil, found, err
	}
	return buf.Bytes(), true, nil
}

func findFormat(tmpl *models.Template, formatUUID string) (models.Format, bool) {
	for _, f := range tmpl.Formats {
		if f.UUID == formatUUID {
			return f, true
		}
	}
	return models.Format{}, false
}
