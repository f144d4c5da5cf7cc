package dupstat

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
)

// collector aggregates file records from concurrent fastwalk callbacks using a mutex.
type collector struct {
	mu         sync.Mutex // Protect concurrent access
	records    []FileRecord
	errorCount int64
	progress   *progress
}

// newCollector creates a collector reporting into p.
func newCollector(p *progress) *collector {
	return &collector{
		records:  make([]FileRecord, 0, 256),
		progress: p,
	}
}

// addError increments the error counter. This operation is protected by a mutex
// since fastwalk calls the callback from multiple goroutines concurrently.
func (c *collector) addError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.errorCount++
	c.progress.errors.Add(1)
}

// add records a file. This operation is protected by a mutex
// since fastwalk calls the callback from multiple goroutines concurrently.
func (c *collector) add(rec FileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, rec)
	c.progress.files.Add(1)
	c.progress.bytes.Add(rec.Size)
}

// finalize sorts the records by path and drops symlink aliases of files
// that were also reached directly.
func (c *collector) finalize(log *slog.Logger) ([]FileRecord, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.records
	sortByPath(records)

	records = dropLinkAliases(records, log)

	return records, c.errorCount
}

// sortByPath orders records by path for stable output across runs.
func sortByPath(records []FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
}

// dropLinkAliases keeps one path per underlying file when symlinks were followed.
// A real path wins over a symlinked one; hard links are distinct paths and are kept.
func dropLinkAliases(records []FileRecord, log *slog.Logger) []FileRecord {
	owner := make(map[fileID]int)
	out := make([]FileRecord, 0, len(records))

	for _, rec := range records {
		if rec.id == (fileID{}) {
			out = append(out, rec)

			continue
		}

		idx, seen := owner[rec.id]
		switch {
		case !seen:
			owner[rec.id] = len(out)
			out = append(out, rec)
		case rec.viaLink:
			log.Debug("skipping symlink alias", "path", rec.Path, "target", out[idx].Path)
		case out[idx].viaLink:
			log.Debug("skipping symlink alias", "path", out[idx].Path, "target", rec.Path)
			out[idx] = rec
		default:
			out = append(out, rec)
		}
	}

	sortByPath(out)

	return out
}

// calculateDepth returns the depth of a path relative to the root.
func calculateDepth(path, root string) int {
	relPath := strings.TrimPrefix(path, root)

	relPath = strings.TrimPrefix(relPath, string(filepath.Separator))
	if relPath == "" {
		return 0
	}

	return strings.Count(relPath, string(filepath.Separator)) + 1
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// isHidden reports whether a file name carries the hidden-file marker.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// reachedViaLink reports whether path goes through a linked directory below root.
func reachedViaLink(path, root, realRoot string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}

	return resolved != filepath.Join(realRoot, rel)
}

// walkFiles walks the tree at opt.Path, which must be absolute, and returns
// every regular non-hidden file in path order along with the number of
// entries skipped because of errors.
//
//nolint:gocognit,cyclop,funlen // Walk callback handles all entry kinds.
func walkFiles(ctx context.Context, opt Options, excludes []*regexp.Regexp, p *progress) ([]FileRecord, int64, error) {
	log := opt.Logger
	collector := newCollector(p)

	realRoot := opt.Path
	if opt.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(opt.Path); err == nil {
			realRoot = resolved
		}
	}

	conf := &fastwalk.Config{
		Follow: opt.FollowSymlinks,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("error accessing path", "path", path, "error", err)
			collector.addError()

			return nil // Silently skip errors
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if opt.Depth > 0 && calculateDepth(path, opt.Path) > opt.Depth {
			if d.IsDir() {
				log.Debug("skipping directory beyond depth", "depth", opt.Depth, "path", path)

				return filepath.SkipDir
			}

			return nil
		}

		if re := shouldExcludeByPattern(path, excludes); re != nil {
			log.Debug("excluding path", "path", filepath.ToSlash(path), "regex", re.String())

			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		if isHidden(d.Name()) {
			log.Debug("skipping hidden file", "path", path)

			return nil
		}

		isLink := d.Type()&fs.ModeSymlink != 0

		var (
			info    fs.FileInfo
			infoErr error
		)

		switch {
		case isLink && !opt.FollowSymlinks:
			return nil
		case isLink:
			// fastwalk descends into linked directories itself.
			info, infoErr = os.Stat(path)
		case d.Type().IsRegular():
			info, infoErr = d.Info()
		default:
			return nil
		}

		if infoErr != nil {
			log.Debug("cannot stat file, skipping", "path", path, "error", infoErr)
			collector.addError()

			return nil
		}

		if !info.Mode().IsRegular() || info.Size() < opt.MinSize {
			return nil
		}

		rec := FileRecord{
			Path: path,
			Size: info.Size(),
		}

		if opt.FollowSymlinks {
			rec.id, _ = statID(path)
			rec.viaLink = isLink || reachedViaLink(path, opt.Path, realRoot)
		}

		collector.add(rec)

		return nil
	})
	if walkErr != nil {
		return nil, 0, walkErr
	}

	records, errorCount := collector.finalize(log)

	return records, errorCount, nil
}
