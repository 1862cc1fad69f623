package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"

	"github.com/ternarybob/docworker/internal/config"
)

// PrintBanner displays the application startup banner
func PrintBanner(cfg *config.Config, logger arbor.ILogger) {
	version := GetVersion()

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(80)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("DOCWORKER")
	b.PrintCenteredText("Document Generation Worker")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 15)
	b.PrintKeyValue("Environment", cfg.Environment, 15)
	b.PrintKeyValue("Bucket", cfg.S3.Bucket, 15)
	b.PrintKeyValue("Multi-tenant", fmt.Sprintf("%v", cfg.Experimental.MoreAppsEnabled), 15)
	b.PrintKeyValue("Naming", cfg.Documents.NamingStrategy, 15)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", version).
		Str("environment", cfg.Environment).
		Str("bucket", cfg.S3.Bucket).
		Bool("multi_tenant", cfg.Experimental.MoreAppsEnabled).
		Str("naming_strategy", cfg.Documents.NamingStrategy).
		Msg("Application started")

	printCapabilities(cfg, logger)
	fmt.Printf("\n")
}

// printCapabilities displays which converter drivers and opt-in behaviors
// are wired, so an operator can see at a glance which subprocess binaries
// the worker expects to find on PATH.
func printCapabilities(cfg *config.Config, logger arbor.ILogger) {
	fmt.Printf("Converter drivers:\n")
	fmt.Printf("   • pandoc: %s\n", cfg.Externals.Pandoc.Command)
	fmt.Printf("   • wkhtmltopdf: %s\n", cfg.Externals.WkHtmlToPdf.Command)
	fmt.Printf("   • prince: %s\n", cfg.Externals.Prince.Command)
	fmt.Printf("   • relaxed (headless chromium): %s\n", cfg.Externals.Relaxed.Command)

	if cfg.Experimental.PDFWatermark != "" {
		fmt.Printf("   • default PDF watermark: %s\n", cfg.Experimental.PDFWatermark)
	}

	logger.Info().
		Str("pandoc", cfg.Externals.Pandoc.Command).
		Str("wkhtmltopdf", cfg.Externals.WkHtmlToPdf.Command).
		Str("prince", cfg.Externals.Prince.Command).
		Str("relaxed", cfg.Externals.Relaxed.Command).
		Str("default_watermark", cfg.Experimental.PDFWatermark).
		Msg("Converter drivers configured")
}

// PrintShutdownBanner displays the application shutdown banner
func PrintShutdownBanner(logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText("DOCWORKER")
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().Msg("Application shutting down")
}

// PrintColorizedMessage prints a message with specified color to stdout; it does not log
func PrintColorizedMessage(color, message string, logger arbor.ILogger) {
	fmt.Printf("%s%s%s\n", color, message, banner.ColorReset)
}

// PrintSuccess prints a success message in green and logs it
func PrintSuccess(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorGreen, fmt.Sprintf("✓ %s", message), logger)
	logger.Info().Str("type", "success").Msg(message)
}

// PrintError prints an error message in red and logs it
func PrintError(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorRed, fmt.Sprintf("✗ %s", message), logger)
	logger.Error().Str("type", "error").Msg(message)
}

// PrintWarning prints a warning message in yellow and logs it
func PrintWarning(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorYellow, fmt.Sprintf("⚠ %s", message), logger)
	logger.Warn().Str("type", "warning").Msg(message)
}

// PrintInfo prints an info message in cyan and logs it
func PrintInfo(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorCyan, fmt.Sprintf("ℹ %s", message), logger)
	logger.Info().Str("type", "info").Msg(message)
}
