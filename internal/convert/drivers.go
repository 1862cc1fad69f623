package convert

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Pandoc converts between any of pandoc's supported formats via its
// -f/-t/-o flags, writing the result to stdout. extraArgs (the step's own
// "args" option plus the configured base args) are inserted ahead of the
// format flags, matching the source's template_args + config_args + args
// ordering.
func Pandoc(ctx context.Context, command, workdir string, input []byte, fromFormat, toFormat string, extraArgs []string, timeout time.Duration) ([]byte, error) {
	args := []string{command}
	args = append(args, extraArgs...)
	args = append(args, "-f", fromFormat, "-t", toFormat, "-o", "-")
	return Run(ctx, "pandoc", args, workdir, input, timeout)
}

// WkHtmlToPdf converts HTML to PDF, never as a first step. Local file
// access is disabled except for workdir, which is granted via --allow,
// matching the source's workdir-scoped local file access policy.
func WkHtmlToPdf(ctx context.Context, command, workdir string, input []byte, extraArgs []string, timeout time.Duration) ([]byte, error) {
	args := []string{command, "--quiet", "--load-error-handling", "ignore"}
	args = append(args, extraArgs...)
	args = append(args, "--disable-local-file-access", "--allow", workdir)
	args = append(args, "--encoding", "utf-8", "-", "-")
	return Run(ctx, "wkhtmltopdf", args, workdir, input, timeout)
}

// Prince converts HTML to PDF via Prince's stdin/stdout protocol.
func Prince(ctx context.Context, command, workdir string, input []byte, extraArgs []string, timeout time.Duration) ([]byte, error) {
	args := []string{command}
	args = append(args, extraArgs...)
	args = append(args, "-", "-o", "-")
	return Run(ctx, "prince", args, workdir, input, timeout)
}

// relaxedSourceFile and relaxedTargetFile are the fixed temp-file protocol
// the relaxed (Chromium-based) driver uses instead of stdin/stdout,
// matching the source's /tmp/docworker/document.{html,pdf} convention.
const (
	relaxedSourceFile = "document.html"
	relaxedTargetFile = "document.pdf"
)

// Relaxed converts HTML to PDF via a Chromium-based renderer that reads
// and writes fixed file names instead of stdin/stdout: the input is
// written to <workdir>/document.html, the renderer is run with
// --no-sandbox --build-once, and the result is read back from
// <workdir>/document.pdf.
func Relaxed(ctx context.Context, command, workdir string, input []byte, timeout time.Duration) ([]byte, error) {
	sourcePath := filepath.Join(workdir, relaxedSourceFile)
	targetPath := filepath.Join(workdir, relaxedTargetFile)

	if err := os.WriteFile(sourcePath, input, 0o644); err != nil {
		return nil, err
	}
	defer os.Remove(sourcePath)
	defer os.Remove(targetPath)

	args := []string{command, sourcePath, "--no-sandbox", "--build-once", targetPath}
	if _, err := Run(ctx, "relaxed", args, workdir, nil, timeout); err != nil {
		return nil, err
	}

	return os.ReadFile(targetPath)
}
