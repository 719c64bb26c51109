// Command trials times the ECEF to geodetic converters over the standard
// latitude/altitude grid and prints per-trial error tables and a summary.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "warning: .env:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}
