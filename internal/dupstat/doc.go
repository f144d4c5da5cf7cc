// Package dupstat finds duplicate files by content.
//
// It walks directory trees using fastwalk for parallel traversal, buckets
// files by size, hashes same-size candidates on a bounded worker pool and
// confirms every digest match with a byte-by-byte comparison before
// reporting it, along with the bytes that removing duplicates would free.
package dupstat
