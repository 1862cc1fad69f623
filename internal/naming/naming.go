// Package naming implements the document file-naming strategies
// (uuid/sanitize/slugify) a Document's final stored file name is derived
// under, matching the source's DocumentNameGiver.
package naming

import (
	"regexp"
	"strings"

	"github.com/ternarybob/docworker/internal/models"
)

const (
	StrategyUUID     = "uuid"
	StrategySanitize = "sanitize"
	StrategySlugify  = "slugify"
)

var (
	unsafeFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	slugNonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// Name returns the base file name (without extension) a document should be
// stored under, per the configured strategy, falling back to the
// document's UUID when the strategy yields an empty string.
func Name(strategy string, doc *models.Document) string {
	var name string
	switch strategy {
	case StrategySanitize:
		name = sanitize(doc.Name)
	case StrategySlugify:
		name = slugify(doc.Name)
	default:
		name = doc.UUID
	}
	if name == "" {
		return doc.UUID
	}
	return name
}

// sanitize strips characters that are unsafe in file names on common
// filesystems, mirroring pathvalidate.sanitize_filename's intent without
// pulling in a dedicated dependency for what is a small, fixed character
// class.
func sanitize(name string) string {
	cleaned := unsafeFileNameChars.ReplaceAllString(name, "_")
	return strings.TrimSpace(cleaned)
}

// slugify lowercases name and collapses runs of non-alphanumeric
// characters into single hyphens, trimming leading/trailing hyphens — the
// ASCII-only subset of python-slugify's behavior that the worker's
// document names actually exercise.
func slugify(name string) string {
	lowered := strings.ToLower(name)
	collapsed := slugNonAlphanumeric.ReplaceAllString(lowered, "-")
	return strings.Trim(collapsed, "-")
}

// FileName joins a base name with a FileFormat's extension.
func FileName(base string, format models.FileFormat) string {
	return base + "." + format.Extension
}
