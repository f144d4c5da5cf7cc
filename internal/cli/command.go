package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/dupstat/internal/dupstat"
	"github.com/idelchi/dupstat/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// DefaultExcludes contains the default exclusion patterns.
//
//nolint:gochecknoglobals // Config constant
var DefaultExcludes = []string{`.*\.git/.*`, `.*node_modules/.*`}

// allowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json", "paths"}

// sizeFlags holds the human-readable size flags before parsing.
type sizeFlags struct {
	minSize   string
	chunkSize string
}

func bindFlags(flags *pflag.FlagSet, options *dupstat.Options, sizes *sizeFlags) {
	flags.IntVarP(&options.Workers, "workers", "w", dupstat.DefaultWorkers(), "Number of hashing workers")
	flags.StringVar(&sizes.chunkSize, "chunk-size", "128KiB", "Read size for hashing and comparison (e.g., 64KiB)")
	flags.StringVar(&options.Algorithm, "hash", dupstat.DefaultAlgorithm,
		fmt.Sprintf("Digest algorithm: one of %v", dupstat.Algorithms))
	flags.BoolVarP(&options.FollowSymlinks, "follow", "L", false, "Follow symbolic links")
	flags.StringSliceVarP(&options.Excludes, "exclude", "e", DefaultExcludes, "Regex patterns to exclude")
	flags.StringVar(&sizes.minSize, "min-size", "0B", "Minimum file size (e.g., 1KB)")
	flags.IntVarP(&options.Depth, "depth", "d", 0, "Maximum traversal depth (0=unlimited)")
	flags.StringVarP(&options.Output, "output", "o", "table", "Output format: table, json or paths")
	flags.BoolVarP(&options.Null, "null", "0", false, "Terminate each path with NUL in paths output")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.BoolVarP(&options.Integration, "init", "i", false, "Output init script for shell usage")

	flags.SortFlags = false
}

// parseSizes converts the human-readable size flags into options.
func parseSizes(options *dupstat.Options, sizes sizeFlags) error {
	if sizes.minSize != "" {
		size, err := humanize.ParseBytes(sizes.minSize)
		if err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}

		options.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	chunk, err := humanize.ParseBytes(sizes.chunkSize)
	if err != nil {
		return fmt.Errorf("invalid chunk-size: %w", err)
	}

	if chunk == 0 || chunk > 1<<30 {
		return fmt.Errorf("invalid chunk-size %q: must be between 1B and 1GiB", sizes.chunkSize)
	}

	options.ChunkSize = int(chunk) //nolint:gosec // Bounded above

	return nil
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var (
		options dupstat.Options
		sizes   sizeFlags
	)

	cmd := &cobra.Command{
		Use:   "dupstat [flags] [path]",
		Short: "Find duplicate files by content",
		Long: heredoc.Doc(`
			dupstat finds files with identical content below a directory and reports
			how much space the duplicates take up.

			Files are first grouped by size. Files sharing a size are hashed in parallel,
			and every digest match is confirmed with a byte-by-byte comparison before it
			is reported. Hidden files (names starting with '.') are ignored.

			Positional Arguments:
			  path                   Directory to scan. Defaults to current directory if not specified.

			The '-i' flag outputs a zsh function that pipes '--output paths' into 'fzf'
			for interactive browsing of the duplicate pairs.
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.Integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return nil
			}

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if !dupstat.ValidAlgorithm(options.Algorithm) {
				return fmt.Errorf("invalid hash %q: must be one of %v", options.Algorithm, dupstat.Algorithms)
			}

			if options.Depth < 0 {
				return errors.New("depth cannot be negative")
			}

			if options.Workers < 1 {
				return errors.New("workers must be at least 1")
			}

			if err := parseSizes(&options, sizes); err != nil {
				return err
			}

			if len(args) == 0 {
				options.Path = "."
			} else {
				options.Path = args[0]
			}

			return logic(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), options)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	bindFlags(cmd.Flags(), &options, &sizes)

	return cmd
}

// Execute runs the CLI with the process arguments. An interrupt cancels the scan.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.Command().ExecuteContext(ctx)
}
