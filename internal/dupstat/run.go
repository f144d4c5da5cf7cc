package dupstat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// prepare validates opt and resolves the root before any stage runs.
func prepare(opt Options) (Options, []*regexp.Regexp, error) {
	opt = opt.withDefaults()

	// Normalize to native format to handle both C:/Path and C:\Path inputs
	absPath, err := filepath.Abs(filepath.Clean(opt.Path))
	if err != nil {
		return opt, nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	opt.Path = absPath

	if statInfo, err := os.Stat(opt.Path); err != nil {
		return opt, nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return opt, nil, fmt.Errorf("path %q: %w", opt.Path, ErrNotDirectory)
	}

	if opt.ChunkSize < 0 {
		return opt, nil, fmt.Errorf("chunk size must be positive, got %d", opt.ChunkSize)
	}

	if opt.Depth < 0 {
		return opt, nil, errors.New("depth cannot be negative")
	}

	excludeRegexes := make([]*regexp.Regexp, 0, len(opt.Excludes))

	for _, p := range opt.Excludes {
		re, err := regexp.Compile(p)
		if err != nil {
			return opt, nil, fmt.Errorf("compiling exclusion pattern %q: %w", p, err)
		}

		excludeRegexes = append(excludeRegexes, re)
	}

	return opt, excludeRegexes, nil
}

// dropFailed removes records whose content could not be read, so they are
// left out of every count.
func dropFailed(records []FileRecord, failed map[string]struct{}) []FileRecord {
	if len(failed) == 0 {
		return records
	}

	kept := make([]FileRecord, 0, len(records)-len(failed))

	for _, rec := range records {
		if _, ok := failed[rec.Path]; !ok {
			kept = append(kept, rec)
		}
	}

	return kept
}

// Scan finds duplicate files under opt.Path and returns them with byte
// statistics.
//
// The pipeline walks the tree, buckets files by size, hashes every file that
// shares its size with another on a pool of opt.Workers goroutines, and then
// confirms each digest group by comparing file contents byte by byte.
// Confirmation starts only after all hashing has finished. Files that cannot
// be read at any step are left out and counted in ErrorCount.
//
// An invalid root or option is returned before anything is read. The scan
// can be cancelled via ctx. Progress updates are sent to progressHook if
// provided.
func Scan(ctx context.Context, opt Options, progressHook ProgressFunc) (*ScanResult, error) {
	opt, excludes, err := prepare(opt)
	if err != nil {
		return nil, err
	}

	newHash, err := newHasher(opt.Algorithm)
	if err != nil {
		return nil, err
	}

	log := opt.Logger

	log.Debug("starting scan",
		"root", opt.Path,
		"workers", opt.Workers,
		"chunk_size", opt.ChunkSize,
		"algorithm", opt.Algorithm,
		"follow_symlinks", opt.FollowSymlinks,
		"excludes", opt.Excludes,
	)

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := &progress{}

	stopProgress := startProgressReporter(ctx, prog, progressHook, opt.ProgressInterval)
	defer stopProgress()

	start := time.Now()

	prog.setStage(StageWalk)

	records, walkErrors, err := walkFiles(ctx, opt, excludes, prog)
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", opt.Path, err)
	}

	candidateFiles := candidates(bucketBySize(records))
	prog.candidates.Store(int64(len(candidateFiles)))

	log.Debug("walk complete", "files", len(records), "candidates", len(candidateFiles), "errors", walkErrors)

	prog.setStage(StageHash)

	groups, hashed, err := hashFiles(ctx, candidateFiles, hashConfig{
		workers:   opt.Workers,
		chunkSize: opt.ChunkSize,
		newHash:   newHash,
		log:       log,
	}, prog)
	if err != nil {
		return nil, fmt.Errorf("hashing: %w", err)
	}

	log.Debug("hashing complete", "hashed", hashed.hashed, "failed", hashed.failed, "groups", len(groups))

	prog.setStage(StageConfirm)

	pairs, compareErrors, err := confirmDuplicates(ctx, groups, opt.ChunkSize, log)
	if err != nil {
		return nil, fmt.Errorf("comparing: %w", err)
	}

	prog.errors.Add(compareErrors)
	prog.setStage(StageDone)

	records = dropFailed(records, hashed.failedPaths)
	sum := summarize(records, pairs)

	if pairs == nil {
		pairs = []DuplicatePair{}
	}

	return &ScanResult{
		Root:             opt.Path,
		Algorithm:        opt.Algorithm,
		Pairs:            pairs,
		PairCount:        len(pairs),
		TotalBytes:       sum.totalBytes,
		DuplicateBytes:   sum.duplicateBytes,
		UniqueBytes:      sum.totalBytes - sum.duplicateBytes,
		DuplicatePercent: sum.duplicatePercent,
		FileCount:        int64(len(records)),
		CandidateCount:   int64(len(candidateFiles)),
		HashedCount:      hashed.hashed,
		ErrorCount:       walkErrors + hashed.failed + compareErrors,
		Elapsed:          time.Since(start),
	}, nil
}
