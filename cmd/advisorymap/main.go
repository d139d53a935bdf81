// Command advisorymap scrapes the travel advisory site, classifies the
// advisory level of every listed destination, and writes a JSON snapshot and
// a color-coded world map.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mattsblocklist/advisorymap/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Fatalf("advisorymap: %v", err)
	}
}
