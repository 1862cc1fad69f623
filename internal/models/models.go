// Package models defines the shared entity types that flow between the job
// ledger, the template assembler, the pipeline, and the coordinator.
package models

import (
	"encoding/base64"
	"time"
)

// NullTenant is the well-known app_uuid that denotes single-tenant mode.
const NullTenant = "00000000-0000-0000-0000-000000000000"

// DocumentState is the lifecycle state of a Document row.
type DocumentState string

const (
	DocumentQueued     DocumentState = "QUEUED"
	DocumentProcessing DocumentState = "PROCESSING"
	DocumentFailed     DocumentState = "FAILED"
	DocumentFinished   DocumentState = "FINISHED"
)

// Job is a work item dequeued from the shared queue.
type Job struct {
	ID              int64
	DocumentUUID    string
	DocumentContext map[string]any
	CreatedBy       *string
	CreatedAt       time.Time
	AppUUID         string
}

// Document is the durable record of a generation request.
type Document struct {
	UUID         string
	Name         string
	State        DocumentState
	TemplateID   string
	FormatUUID   string
	CreatorUUID  string
	AppUUID      string
	RetrievedAt  *time.Time
	FinishedAt   *time.Time
	FileName     *string
	ContentType  *string
	FileSize     *int64
	WorkerLog    *string
	CreatedAt    time.Time
}

// StepDescriptor names one link of a Format's pipeline plus its options.
type StepDescriptor struct {
	Name    string
	Options map[string]string
}

// Format is an ordered, non-empty Step chain producing one output type.
type Format struct {
	UUID  string
	Name  string
	Steps []StepDescriptor
}

// Template is a named generator of documents.
type Template struct {
	ID                    string
	Name                  string
	OrganizationID        string
	Version               string
	MetamodelVersion      int
	Description           string
	Formats               []Format
	AllowedPackages       map[string]any
	RecommendedPackageID  string
	AppUUID               string
	CreatedAt             time.Time
}

// TemplateFile is a text file belonging to a template.
type TemplateFile struct {
	TemplateID string
	FileName   string
	Content    string
	AppUUID    string
}

// TemplateAsset is a binary file belonging to a template, resolved lazily
// from object storage.
type TemplateAsset struct {
	TemplateID  string
	UUID        string
	FileName    string
	ContentType string
	AppUUID     string
}

// TemplateComposite bundles a Template with its files and assets, as
// materialized by the Job Ledger for one prepare_template step.
type TemplateComposite struct {
	Template *Template
	Files    []TemplateFile
	Assets   []TemplateAsset
}

// Asset is a resolved TemplateAsset with its bytes.
type Asset struct {
	FileName    string
	ContentType string
	Content     []byte
}

// DataURI renders the asset as a base64 data URI, for embedding in templates.
func (a Asset) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Content)
}

// AppConfig is per-tenant render policy.
type AppConfig struct {
	AppUUID       string
	PDFAllowed    bool
	WatermarkPath string
	WatermarkTop  float64
}

// AppLimits is per-tenant resource policy.
type AppLimits struct {
	AppUUID          string
	MaxDocumentBytes int64
	MaxStorageBytes  int64
	JobTimeout       time.Duration
}

// FileFormat maps a canonical name to a content-type and extension.
type FileFormat struct {
	Name        string
	ContentType string
	Extension   string
}

// DocumentFile is the in-memory artifact flowing between pipeline steps.
type DocumentFile struct {
	Format  FileFormat
	Content []byte
}

// ByteSize is the rendered artifact's size, as observed by limit checks.
func (d DocumentFile) ByteSize() int64 {
	return int64(len(d.Content))
}
