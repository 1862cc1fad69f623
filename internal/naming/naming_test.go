package naming

import (
	"testing"

	"github.com/ternarybob/docworker/internal/models"
)

func TestName_UUIDStrategyAlwaysReturnsUUID(t *testing.T) {
	doc := &models.Document{UUID: "abc-123", Name: "My Report!!"}
	if got := Name(StrategyUUID, doc); got != "abc-123" {
		t.Fatalf("Name() = %q, want abc-123", got)
	}
}

func TestName_SlugifyStrategy(t *testing.T) {
	doc := &models.Document{UUID: "abc-123", Name: "Q3 Report (Final)"}
	if got := Name(StrategySlugify, doc); got != "q3-report-final" {
		t.Fatalf("Name() = %q, want q3-report-final", got)
	}
}

func TestName_FallsBackToUUIDWhenStrategyYieldsEmpty(t *testing.T) {
	doc := &models.Document{UUID: "abc-123", Name: "!!!"}
	if got := Name(StrategySlugify, doc); got != "abc-123" {
		t.Fatalf("Name() = %q, want fallback abc-123", got)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("report", models.FormatPDF); got != "report.pdf" {
		t.Fatalf("FileName() = %q, want report.pdf", got)
	}
}
