package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dupstat/internal/dupstat"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

// progressLine renders a progress snapshot as a single status line.
func progressLine(p dupstat.Progress) string {
	switch p.Stage {
	case dupstat.StageWalk:
		return fmt.Sprintf("Scanning… %d files, %s",
			p.Files, humanize.IBytes(uint64(p.Bytes))) //nolint:gosec // Bytes is always positive
	case dupstat.StageHash:
		return fmt.Sprintf("Hashing… %d/%d candidates", p.Hashed, p.Candidates)
	default:
		return fmt.Sprintf("Comparing… %d candidates hashed", p.Hashed)
	}
}

func logic(ctx context.Context, stdout, stderr io.Writer, options dupstat.Options) error {
	enableProgress := options.Output == "table" &&
		!options.Debug &&
		isTerminal(stderr)

	level := slog.LevelWarn
	if options.Debug {
		level = slog.LevelDebug
	}

	options.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Simple progress callback that prints directly to stderr
	var progressHook dupstat.ProgressFunc

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(p dupstat.Progress) {
			fmt.Fprintf(stderr, "\r\033[2K%s\r", progressLine(p))
		}
	}

	result, err := dupstat.Scan(ctx, options, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch options.Output {
	case "json":
		return PrintJSON(result, stdout)
	case "paths":
		skipped, err := PrintPaths(result, stdout, options.Null)
		if skipped > 0 {
			options.Logger.Warn("skipped pairs with a tab or newline in a path; use --null to include them",
				"pairs", skipped)
		}

		return err
	case "table":
		return PrintTable(result, stdout)
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}
