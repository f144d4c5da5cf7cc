package dupstat

// summary holds the byte accounting of a scan.
type summary struct {
	totalBytes       int64
	duplicateBytes   int64
	duplicatePercent float64
}

// summarize totals the scanned bytes and counts one representative per set
// of identical files. A set is every file linked through confirmed pairs, so
// a file that appears in several pairs contributes once and three identical
// files contribute one file's size.
func summarize(records []FileRecord, pairs []DuplicatePair) summary {
	var s summary

	for _, rec := range records {
		s.totalBytes += rec.Size
	}

	parent := make(map[string]string)
	size := make(map[string]int64)

	var find func(string) string
	find = func(p string) string {
		root, ok := parent[p]
		if !ok {
			parent[p] = p

			return p
		}

		if root == p {
			return p
		}

		root = find(root)
		parent[p] = root

		return root
	}

	for _, pair := range pairs {
		ra, rb := find(pair.A), find(pair.B)
		if ra != rb {
			parent[rb] = ra
		}

		size[pair.A] = pair.Size
		size[pair.B] = pair.Size
	}

	counted := make(map[string]bool)

	for path := range parent {
		root := find(path)
		if counted[root] {
			continue
		}

		counted[root] = true
		s.duplicateBytes += size[path]
	}

	if s.totalBytes > 0 {
		s.duplicatePercent = float64(s.duplicateBytes) / float64(s.totalBytes) * 100
	}

	return s
}
