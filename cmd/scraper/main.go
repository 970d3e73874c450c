package main

import (
	"log/slog"
	"os"

	// Embedded zone database for brand timezones on minimal images.
	_ "time/tzdata"

	// Register all adapter types via init().
	_ "github.com/Vodeneev/exerciser/internal/scraper/integrations/all"
)

func main() {
	if err := Execute(); err != nil {
		slog.Error("Scraper failed", "error", err)
		os.Exit(1)
	}
}
