// Package limits implements the per-tenant enforcement checks the
// coordinator runs around prepare_template and build_document: format
// gating, per-document size, per-tenant storage usage, and PDF
// watermarking — mirroring the source's LimitsEnforcer.
package limits

import (
	"fmt"

	"github.com/ternarybob/docworker/internal/joberr"
	"github.com/ternarybob/docworker/internal/models"
)

// CheckFormat rejects PDF output for tenants whose AppConfig disables it.
// Every other format is unrestricted.
func CheckFormat(format models.FileFormat, appConfig *models.AppConfig) error {
	if format.Name != models.FormatPDF.Name {
		return nil
	}
	if appConfig != nil && !appConfig.PDFAllowed {
		return joberr.New(joberr.LimitExceeded, fmt.Errorf("PDF output is not allowed for app %q", appConfig.AppUUID))
	}
	return nil
}

// CheckDocumentSize rejects a rendered document larger than the tenant's
// MaxDocumentBytes. A zero limit means unlimited.
func CheckDocumentSize(docSize int64, appLimits *models.AppLimits) error {
	if appLimits == nil || appLimits.MaxDocumentBytes <= 0 {
		return nil
	}
	if docSize > appLimits.MaxDocumentBytes {
		return joberr.New(joberr.LimitExceeded, fmt.Errorf("document size %d exceeds limit %d bytes", docSize, appLimits.MaxDocumentBytes))
	}
	return nil
}

// CheckStorageUsage rejects a document that would push the tenant's total
// stored bytes (usedSize, queried from the ledger, plus this document)
// over MaxStorageBytes. A zero limit means unlimited.
func CheckStorageUsage(docSize, usedSize int64, appLimits *models.AppLimits) error {
	if appLimits == nil || appLimits.MaxStorageBytes <= 0 {
		return nil
	}
	if usedSize+docSize > appLimits.MaxStorageBytes {
		return joberr.New(joberr.LimitExceeded, fmt.Errorf("storage usage %d+%d would exceed limit %d bytes", usedSize, docSize, appLimits.MaxStorageBytes))
	}
	return nil
}
