package dupstat

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// errHashPanic marks a hashing task that panicked.
var errHashPanic = errors.New("hashing task panicked")

// digestKey groups files that share both size and digest.
type digestKey struct {
	size   int64
	digest string
}

// hashResult is the outcome of hashing one file: a record carrying its
// digest, or the error that excluded it.
type hashResult struct {
	rec FileRecord
	err error
}

// hashConfig configures the hashing pool.
type hashConfig struct {
	workers   int
	chunkSize int
	newHash   func() hash.Hash
	log       *slog.Logger
}

// hashStats counts the outcomes of a hashing pass.
type hashStats struct {
	hashed int64
	failed int64
	// failedPaths holds every file left out because it could not be hashed.
	failedPaths map[string]struct{}
}

// hashOne digests rec with a worker-owned hash and buffer. A panic is
// converted into a failed result so sibling workers keep running.
func hashOne(rec FileRecord, h hash.Hash, buf []byte) (res hashResult) {
	res.rec = rec

	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("%w: %v", errHashPanic, r)
		}
	}()

	res.rec.Digest, res.err = digestFile(rec.Path, h, buf)

	return res
}

// hashFiles digests every file on a pool of cfg.workers goroutines and
// groups the successes by size and digest. Workers only send results; the
// calling goroutine is the single writer of the group map. Files that fail
// are logged and left out. The returned error is non-nil only when ctx is
// cancelled.
func hashFiles(
	ctx context.Context,
	files []FileRecord,
	cfg hashConfig,
	p *progress,
) (map[digestKey][]FileRecord, hashStats, error) {
	jobs := make(chan FileRecord)
	results := make(chan hashResult, cfg.workers)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)

		for _, rec := range files {
			select {
			case jobs <- rec:
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return nil
	})

	for range cfg.workers {
		g.Go(func() error {
			h := cfg.newHash()
			buf := make([]byte, cfg.chunkSize)

			for rec := range jobs {
				res := hashOne(rec, h, buf)

				select {
				case results <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}

			return nil
		})
	}

	var poolErr error

	go func() {
		poolErr = g.Wait()

		close(results)
	}()

	groups := make(map[digestKey][]FileRecord)

	stats := hashStats{failedPaths: make(map[string]struct{})}

	for res := range results {
		if res.err != nil {
			cfg.log.Debug("cannot hash file, skipping", "path", res.rec.Path, "error", res.err)

			stats.failed++
			stats.failedPaths[res.rec.Path] = struct{}{}
			p.errors.Add(1)

			continue
		}

		key := digestKey{size: res.rec.Size, digest: res.rec.Digest}
		groups[key] = append(groups[key], res.rec)

		stats.hashed++
		p.hashed.Add(1)
	}

	if poolErr != nil {
		return nil, stats, poolErr
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	// Completion order is arbitrary.
	for _, members := range groups {
		sortByPath(members)
	}

	return groups, stats, nil
}
