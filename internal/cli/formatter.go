package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/dupstat/internal/dupstat"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

// PrintJSON outputs the scan result in JSON format.
func PrintJSON(result *dupstat.ScanResult, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPaths outputs the duplicate pairs for piping into other tools.
//
// By default each pair is one line, "A\tB". Pairs with a tab or newline in
// either path cannot be written that way and are skipped; their count is
// returned. With null set, every path is terminated by NUL instead
// (A\0B\0 per pair), which is safe for any path and nothing is skipped.
func PrintPaths(result *dupstat.ScanResult, writer io.Writer, null bool) (int, error) {
	skipped := 0

	for _, pair := range result.Pairs {
		if null {
			if _, err := fmt.Fprintf(writer, "%s\x00%s\x00", pair.A, pair.B); err != nil {
				return skipped, err
			}

			continue
		}

		if strings.ContainsAny(pair.A, "\t\n") || strings.ContainsAny(pair.B, "\t\n") {
			skipped++

			continue
		}

		if _, err := fmt.Fprintf(writer, "%s\t%s\n", pair.A, pair.B); err != nil {
			return skipped, err
		}
	}

	return skipped, nil
}

// displayPath returns path relative to root in slash form, or path itself
// when it is not below root.
func displayPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

func ibytes(n int64) string {
	return humanize.IBytes(uint64(n)) //nolint:gosec // Sizes are never negative
}

// PrintTable outputs the scan result in human-readable table format.
func PrintTable(result *dupstat.ScanResult, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	if len(result.Pairs) == 0 {
		fmt.Fprintln(w, "\nNo duplicate files found.\t\t")
	} else {
		fmt.Fprintln(w, "\nDuplicate files:\t\t")

		for i, pair := range result.Pairs {
			fmt.Fprintf(w, "  %d) '%s'\t'%s'\t%s\n",
				i+1, displayPath(result.Root, pair.A), displayPath(result.Root, pair.B), ibytes(pair.Size))
		}
	}

	fmt.Fprintln(w, "\nSummary:\t\t")
	fmt.Fprintf(w, "Total folder size:\t%s (%d bytes)\n", ibytes(result.TotalBytes), result.TotalBytes)
	fmt.Fprintf(w, "Total size without duplicates:\t%s\n", ibytes(result.UniqueBytes))
	fmt.Fprintf(w, "Total duplicate size:\t%s\n", ibytes(result.DuplicateBytes))
	fmt.Fprintf(w, "Total duplicate pairs:\t%d\n", result.PairCount)
	fmt.Fprintf(w, "Duplicate size percentage:\t%.2f%%\n", result.DuplicatePercent)

	fmt.Fprintln(w, "\nStats:\t\t")
	fmt.Fprintf(w, "Files scanned:\t%d\n", result.FileCount)
	fmt.Fprintf(w, "Candidates hashed:\t%d/%d (%s)\n", result.HashedCount, result.CandidateCount, result.Algorithm)

	if result.ErrorCount > 0 {
		fmt.Fprintf(w, "Skipped (errors):\t%d\n", result.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", result.Elapsed)

	return w.Flush()
}
