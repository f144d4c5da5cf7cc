package dupstat

import "sort"

// bucketBySize partitions records by exact byte size. Record order within
// a bucket follows the input order.
func bucketBySize(records []FileRecord) map[int64][]FileRecord {
	buckets := make(map[int64][]FileRecord)

	for _, rec := range records {
		buckets[rec.Size] = append(buckets[rec.Size], rec)
	}

	return buckets
}

// candidates returns the members of every bucket holding two or more files,
// ordered by size and then by position in the bucket. Files of unique size
// cannot have a duplicate and are dropped.
func candidates(buckets map[int64][]FileRecord) []FileRecord {
	sizes := make([]int64, 0, len(buckets))

	for size, bucket := range buckets {
		if len(bucket) > 1 {
			sizes = append(sizes, size)
		}
	}

	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	var out []FileRecord
	for _, size := range sizes {
		out = append(out, buckets[size]...)
	}

	return out
}
