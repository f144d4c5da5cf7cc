package dupstat

import (
	"log/slog"
	"runtime"
	"time"
)

const (
	// DefaultChunkSize is the read size used for hashing and byte comparison.
	DefaultChunkSize = 128 * 1024
	// DefaultAlgorithm is the digest used when none is configured.
	DefaultAlgorithm = "blake2b"
)

// FileRecord represents a single regular file discovered by the walk.
type FileRecord struct {
	// Path is the absolute file path.
	Path string `json:"path"`
	// Size is the size in bytes, taken once at discovery.
	Size int64 `json:"size"`
	// Digest is the hex content digest, empty until hashed.
	Digest string `json:"digest,omitempty"`

	id      fileID
	viaLink bool
}

// DuplicatePair is two files confirmed byte-identical.
type DuplicatePair struct {
	// A is the file validated first within its digest group.
	A string `json:"a"`
	// B is the file found to match A.
	B string `json:"b"`
	// Size is the shared size in bytes.
	Size int64 `json:"size"`
}

// ScanResult holds the confirmed duplicates and aggregate statistics of a scan.
type ScanResult struct {
	// Root is the absolute directory that was scanned.
	Root string `json:"root"`
	// Algorithm is the digest algorithm used for candidate hashing.
	Algorithm string `json:"algorithm"`
	// Pairs contains every confirmed duplicate pair.
	Pairs []DuplicatePair `json:"pairs"`
	// PairCount is len(Pairs).
	PairCount int `json:"pair_count"`
	// TotalBytes is the cumulative size of all scanned files.
	TotalBytes int64 `json:"total_bytes"`
	// DuplicateBytes counts one representative per set of identical files.
	DuplicateBytes int64 `json:"duplicate_bytes"`
	// UniqueBytes is TotalBytes minus DuplicateBytes.
	UniqueBytes int64 `json:"unique_bytes"`
	// DuplicatePercent is DuplicateBytes relative to TotalBytes, in [0, 100].
	DuplicatePercent float64 `json:"duplicate_percent"`
	// FileCount is the number of files scanned.
	FileCount int64 `json:"file_count"`
	// CandidateCount is the number of files sharing their size with another file.
	CandidateCount int64 `json:"candidate_count"`
	// HashedCount is the number of candidates hashed successfully.
	HashedCount int64 `json:"hashed_count"`
	// ErrorCount is the number of per-file errors encountered and skipped.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the total time taken for the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// Options configures a scan and CLI behavior.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Workers is the hashing pool size (0 = half the CPUs, at least 1).
	Workers int
	// ChunkSize is the read size in bytes for hashing and comparison (0 = 128 KiB).
	ChunkSize int
	// Algorithm names the digest: blake2b, blake3 or sha256.
	Algorithm string
	// FollowSymlinks makes the walk follow symbolic links.
	FollowSymlinks bool
	// Excludes contains regex patterns to exclude.
	Excludes []string
	// MinSize is the minimum file size in bytes.
	MinSize int64
	// Depth is the maximum traversal depth (0=unlimited).
	Depth int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger

	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (table, json or paths).
	Output string
	// Null terminates each path with NUL in paths output.
	Null bool
	// Integration indicates whether to output integration script.
	Integration bool
}

// DefaultWorkers returns half of the available CPUs, at least 1.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()/2)
}

// withDefaults fills zero-valued fields.
func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = "."
	}

	if o.Workers <= 0 {
		o.Workers = DefaultWorkers()
	}

	if o.ChunkSize == 0 {
		o.ChunkSize = DefaultChunkSize
	}

	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	return o
}
