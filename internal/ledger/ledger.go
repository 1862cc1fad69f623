// Package ledger implements the job ledger (C2): the two long-lived
// Postgres connections the worker holds — one for ordinary queries under
// explicit transaction control, one in autocommit mode that also carries
// the LISTEN/NOTIFY channel for the queue listener.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docworker/internal/models"
	"github.com/ternarybob/docworker/internal/retry"
)

const (
	sqlSelectJob = `SELECT id, document_uuid, document_context, created_by, created_at, app_uuid
		FROM document_queue LIMIT 1 FOR UPDATE SKIP LOCKED`
	sqlDeleteJob = `DELETE FROM document_queue WHERE id = $1`

	sqlSelectDocument = `SELECT uuid, name, state, template_id, format_uuid, creator_uuid,
		app_uuid, retrieved_at, finished_at, file_name, content_type, file_size, worker_log, created_at
		FROM document WHERE uuid = $1`
	sqlUpdateDocumentRetrieved = `UPDATE document SET state = 'PROCESSING', retrieved_at = now() WHERE uuid = $1`
	sqlUpdateDocumentState     = `UPDATE document SET state = $2, worker_log = $3 WHERE uuid = $1`
	sqlUpdateDocumentFinished  = `UPDATE document SET state = 'FINISHED', finished_at = now(),
		file_name = $2, content_type = $3, file_size = $4 WHERE uuid = $1`

	sqlSelectTemplate      = `SELECT id, name, organization_id, version, metamodel_version, description,
		recommended_package_id, app_uuid, created_at FROM template WHERE id = $1`
	sqlSelectTemplateFiles  = `SELECT template_id, file_name, content, app_uuid FROM template_file WHERE template_id = $1`
	sqlSelectTemplateAssets = `SELECT template_id, uuid, file_name, content_type, app_uuid FROM template_asset WHERE template_id = $1`

	sqlSelectAppConfig = `SELECT app_uuid, pdf_allowed, watermark_path, watermark_top FROM app_config WHERE app_uuid = $1`
	sqlSelectAppLimits = `SELECT app_uuid, max_document_bytes, max_storage_bytes, job_timeout_seconds FROM app_limits WHERE app_uuid = $1`

	sqlSelectUsedSize = `SELECT COALESCE(SUM(file_size), 0) FROM document WHERE app_uuid = $1 AND state = 'FINISHED'`
)

// ErrJobNotFound indicates the queue had no rows available to lock.
var ErrJobNotFound = errors.New("ledger: no job available")

// ErrDocumentNotFound indicates the document row referenced by a job is
// missing — the coordinator classifies it as JobNotFound.
var ErrDocumentNotFound = errors.New("ledger: document not found")

// Ledger owns the two logical database connections described above.
type Ledger struct {
	query   *pgx.Conn
	queue   *pgx.Conn
	dsn     string
	channel string
	logger  arbor.ILogger

	connectTimeout time.Duration
	queueTimeout   time.Duration

	connectPolicy *retry.Policy
	queryPolicy   *retry.Policy
}

// Connect establishes both connections, retrying under the connect policy.
// connectTimeout bounds each individual connection attempt; queueTimeout
// bounds WaitForNotification (see that method). Either may be zero to wait
// indefinitely.
func Connect(ctx context.Context, dsn, channel string, connectTimeout, queueTimeout time.Duration, logger arbor.ILogger) (*Ledger, error) {
	l := &Ledger{
		dsn:            dsn,
		channel:        channel,
		logger:         logger,
		connectTimeout: connectTimeout,
		queueTimeout:   queueTimeout,
		connectPolicy:  retry.ConnectPolicy(),
		queryPolicy:    retry.QueryPolicy(),
	}

	if err := l.connectPolicy.Execute(ctx, logger, func() error {
		connCtx, cancel := l.boundedConnectCtx(ctx)
		defer cancel()
		conn, err := pgx.Connect(connCtx, dsn)
		if err != nil {
			return fmt.Errorf("connecting query connection: %w", err)
		}
		if _, err := conn.Exec(ctx, "SELECT 1"); err != nil {
			conn.Close(ctx)
			return fmt.Errorf("probing query connection: %w", err)
		}
		l.query = conn
		return nil
	}); err != nil {
		return nil, err
	}

	if err := l.connectQueueConn(ctx); err != nil {
		l.query.Close(ctx)
		return nil, err
	}

	return l, nil
}

// boundedConnectCtx bounds a single connection attempt by connectTimeout,
// or returns ctx with a no-op cancel if no timeout is configured. The
// returned context's cancellation only affects the dial itself, not
// anything done with the resulting connection afterwards.
func (l *Ledger) boundedConnectCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.connectTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, l.connectTimeout)
}

// connectQueueConn establishes the autocommit LISTEN connection under the
// initial connect policy. It is only called by Connect; Reconnect
// re-establishes the connection itself under the queue-reconnect policy.
func (l *Ledger) connectQueueConn(ctx context.Context) error {
	return l.connectPolicy.Execute(ctx, l.logger, func() error {
		connCtx, cancel := l.boundedConnectCtx(ctx)
		defer cancel()
		conn, err := pgx.Connect(connCtx, l.dsn)
		if err != nil {
			return fmt.Errorf("connecting queue connection: %w", err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
			conn.Close(ctx)
			return fmt.Errorf("listening on %q: %w", l.channel, err)
		}
		l.queue = conn
		return nil
	})
}

// Reconnect drops and re-establishes the queue connection, under the
// queue-reconnect retry policy (class c).
func (l *Ledger) Reconnect(ctx context.Context) error {
	if l.queue != nil {
		l.queue.Close(ctx)
	}
	policy := retry.QueueReconnectPolicy()
	return policy.Execute(ctx, l.logger, func() error {
		connCtx, cancel := l.boundedConnectCtx(ctx)
		defer cancel()
		conn, err := pgx.Connect(connCtx, l.dsn)
		if err != nil {
			return fmt.Errorf("reconnecting queue connection: %w", err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
			conn.Close(ctx)
			return fmt.Errorf("re-listening on %q: %w", l.channel, err)
		}
		l.queue = conn
		return nil
	})
}

// Close releases both connections.
func (l *Ledger) Close(ctx context.Context) {
	if l.query != nil {
		l.query.Close(ctx)
	}
	if l.queue != nil {
		l.queue.Close(ctx)
	}
}

// WaitForNotification blocks on the queue connection until a NOTIFY
// arrives, ctx is cancelled, the queue connection errors (signalling the
// caller to reconnect), or queueTimeout elapses. An elapsed queueTimeout is
// not an error: it returns (nil, nil) so the caller goes back to draining
// regardless, rather than blocking forever on a queue that may never NOTIFY
// again.
func (l *Ledger) WaitForNotification(ctx context.Context) (*pgx.Notification, error) {
	waitCtx := ctx
	if l.queueTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.queueTimeout)
		defer cancel()
	}

	n, err := l.queue.WaitForNotification(waitCtx)
	if err != nil && ctx.Err() == nil && waitCtx.Err() == context.DeadlineExceeded {
		return nil, nil
	}
	return n, err
}

// SelectNextJob locks and returns the next available job row, or
// ErrJobNotFound if the queue is empty. The queue connection runs
// autocommit, matching the source's behavior where the row lock is
// released as soon as DeleteJob commits.
func (l *Ledger) SelectNextJob(ctx context.Context) (*models.Job, error) {
	var job models.Job
	var docCtx []byte

	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		row := l.queue.QueryRow(ctx, sqlSelectJob)
		err := row.Scan(&job.ID, &job.DocumentUUID, &docCtx, &job.CreatedBy, &job.CreatedAt, &job.AppUUID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("selecting next job: %w", err)
		}
		job.DocumentContext, err = decodeJSON(docCtx)
		if err != nil {
			return fmt.Errorf("decoding job document_context: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if job.ID == 0 {
		return nil, ErrJobNotFound
	}
	return &job, nil
}

// DeleteJob removes the job row, releasing the row lock.
func (l *Ledger) DeleteJob(ctx context.Context, id int64) error {
	return l.queryPolicy.Execute(ctx, l.logger, func() error {
		_, err := l.queue.Exec(ctx, sqlDeleteJob, id)
		if err != nil {
			return fmt.Errorf("deleting job %d: %w", id, err)
		}
		return nil
	})
}

// FetchDocument loads the document row referenced by a job.
func (l *Ledger) FetchDocument(ctx context.Context, uuid string) (*models.Document, error) {
	var doc models.Document

	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		row := l.query.QueryRow(ctx, sqlSelectDocument, uuid)
		err := row.Scan(&doc.UUID, &doc.Name, &doc.State, &doc.TemplateID, &doc.FormatUUID,
			&doc.CreatorUUID, &doc.AppUUID, &doc.RetrievedAt, &doc.FinishedAt,
			&doc.FileName, &doc.ContentType, &doc.FileSize, &doc.WorkerLog, &doc.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDocumentNotFound
		}
		if err != nil {
			return fmt.Errorf("fetching document %q: %w", uuid, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocumentRetrieved marks the document PROCESSING and stamps
// retrieved_at, mirroring the source's fetch-marks-in-progress semantics.
func (l *Ledger) UpdateDocumentRetrieved(ctx context.Context, uuid string) error {
	return l.queryPolicy.Execute(ctx, l.logger, func() error {
		_, err := l.query.Exec(ctx, sqlUpdateDocumentRetrieved, uuid)
		if err != nil {
			return fmt.Errorf("marking document %q retrieved: %w", uuid, err)
		}
		return nil
	})
}

// UpdateDocumentState transitions the document to a new state, attaching
// a worker log message (used for the FAILED transition).
func (l *Ledger) UpdateDocumentState(ctx context.Context, uuid string, state models.DocumentState, workerLog string) error {
	return l.queryPolicy.Execute(ctx, l.logger, func() error {
		_, err := l.query.Exec(ctx, sqlUpdateDocumentState, uuid, state, workerLog)
		if err != nil {
			return fmt.Errorf("updating document %q state to %s: %w", uuid, state, err)
		}
		return nil
	})
}

// UpdateDocumentFinished marks the document FINISHED with its final
// object-store file metadata.
func (l *Ledger) UpdateDocumentFinished(ctx context.Context, uuid, fileName, contentType string, fileSize int64) error {
	return l.queryPolicy.Execute(ctx, l.logger, func() error {
		_, err := l.query.Exec(ctx, sqlUpdateDocumentFinished, uuid, fileName, contentType, fileSize)
		if err != nil {
			return fmt.Errorf("finishing document %q: %w", uuid, err)
		}
		return nil
	})
}

// FetchTemplateComposite loads a template together with its files and
// assets in three round trips, matching the source's separate
// fetch_template/fetch_template_files/fetch_template_assets calls.
func (l *Ledger) FetchTemplateComposite(ctx context.Context, id string) (*models.TemplateComposite, error) {
	tmpl, err := l.fetchTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := l.fetchTemplateFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	assets, err := l.fetchTemplateAssets(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.TemplateComposite{Template: tmpl, Files: files, Assets: assets}, nil
}

func (l *Ledger) fetchTemplate(ctx context.Context, id string) (*models.Template, error) {
	var t models.Template
	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		row := l.query.QueryRow(ctx, sqlSelectTemplate, id)
		err := row.Scan(&t.ID, &t.Name, &t.OrganizationID, &t.Version, &t.MetamodelVersion,
			&t.Description, &t.RecommendedPackageID, &t.AppUUID, &t.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: template %q", ErrDocumentNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("fetching template %q: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (l *Ledger) fetchTemplateFiles(ctx context.Context, id string) ([]models.TemplateFile, error) {
	var files []models.TemplateFile
	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		files = nil
		rows, err := l.query.Query(ctx, sqlSelectTemplateFiles, id)
		if err != nil {
			return fmt.Errorf("fetching template files for %q: %w", id, err)
		}
		defer rows.Close()
		for rows.Next() {
			var f models.TemplateFile
			if err := rows.Scan(&f.TemplateID, &f.FileName, &f.Content, &f.AppUUID); err != nil {
				return fmt.Errorf("scanning template file for %q: %w", id, err)
			}
			files = append(files, f)
		}
		return rows.Err()
	})
	return files, err
}

func (l *Ledger) fetchTemplateAssets(ctx context.Context, id string) ([]models.TemplateAsset, error) {
	var assets []models.TemplateAsset
	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		assets = nil
		rows, err := l.query.Query(ctx, sqlSelectTemplateAssets, id)
		if err != nil {
			return fmt.Errorf("fetching template assets for %q: %w", id, err)
		}
		defer rows.Close()
		for rows.Next() {
			var a models.TemplateAsset
			if err := rows.Scan(&a.TemplateID, &a.UUID, &a.FileName, &a.ContentType, &a.AppUUID); err != nil {
				return fmt.Errorf("scanning template asset for %q: %w", id, err)
			}
			assets = append(assets, a)
		}
		return rows.Err()
	})
	return assets, err
}

// FetchAppConfig loads the per-tenant render policy row directly from the
// ledger, bypassing any cache — used by the cache's own fill function.
func (l *Ledger) FetchAppConfig(ctx context.Context, appUUID string) (*models.AppConfig, error) {
	var c models.AppConfig
	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		row := l.query.QueryRow(ctx, sqlSelectAppConfig, appUUID)
		err := row.Scan(&c.AppUUID, &c.PDFAllowed, &c.WatermarkPath, &c.WatermarkTop)
		if errors.Is(err, pgx.ErrNoRows) {
			c = models.AppConfig{AppUUID: appUUID}
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetching app config for %q: %w", appUUID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FetchAppLimits loads the per-tenant resource policy row.
func (l *Ledger) FetchAppLimits(ctx context.Context, appUUID string) (*models.AppLimits, error) {
	var lim models.AppLimits
	var timeoutSeconds int64
	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		row := l.query.QueryRow(ctx, sqlSelectAppLimits, appUUID)
		err := row.Scan(&lim.AppUUID, &lim.MaxDocumentBytes, &lim.MaxStorageBytes, &timeoutSeconds)
		if errors.Is(err, pgx.ErrNoRows) {
			lim = models.AppLimits{AppUUID: appUUID}
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetching app limits for %q: %w", appUUID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	lim.JobTimeout = time.Duration(timeoutSeconds) * time.Second
	return &lim, nil
}

// GetCurrentlyUsedSize sums the stored file size of every FINISHED
// document belonging to a tenant, for the storage-usage limit check.
func (l *Ledger) GetCurrentlyUsedSize(ctx context.Context, appUUID string) (int64, error) {
	var usedSize int64
	err := l.queryPolicy.Execute(ctx, l.logger, func() error {
		row := l.query.QueryRow(ctx, sqlSelectUsedSize, appUUID)
		if err := row.Scan(&usedSize); err != nil {
			return fmt.Errorf("summing used storage for %q: %w", appUUID, err)
		}
		return nil
	})
	return usedSize, err
}
