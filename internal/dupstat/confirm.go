package dupstat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
)

// sortedKeys returns the group keys, largest size first, then by digest.
func sortedKeys(groups map[digestKey][]FileRecord) []digestKey {
	keys := make([]digestKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].size != keys[j].size {
			return keys[i].size > keys[j].size
		}

		return keys[i].digest < keys[j].digest
	})

	return keys
}

// confirmDuplicates compares the members of every group of two or more
// files byte by byte. Each file is checked against all files of its group
// validated before it, and every match is emitted as a pair. A comparison
// that fails to read is treated as a mismatch and counted.
func confirmDuplicates(
	ctx context.Context,
	groups map[digestKey][]FileRecord,
	chunkSize int,
	log *slog.Logger,
) ([]DuplicatePair, int64, error) {
	var (
		pairs  []DuplicatePair
		failed int64
	)

	for _, key := range sortedKeys(groups) {
		members := groups[key]
		if len(members) < 2 {
			continue
		}

		validated := make([]FileRecord, 0, len(members))

		for _, rec := range members {
			if err := ctx.Err(); err != nil {
				return nil, failed, err
			}

			for _, prev := range validated {
				equal, err := sameContent(prev.Path, rec.Path, chunkSize)
				if err != nil {
					log.Debug("content comparison failed", "a", prev.Path, "b", rec.Path, "error", err)

					failed++

					continue
				}

				if equal {
					pairs = append(pairs, DuplicatePair{A: prev.Path, B: rec.Path, Size: rec.Size})
				}
			}

			validated = append(validated, rec)
		}
	}

	return pairs, failed, nil
}

// sameContent reports whether two files have identical content. The sizes
// are checked again before reading both files in lockstep.
func sameContent(pathA, pathB string, chunkSize int) (bool, error) {
	infoA, err := os.Stat(pathA)
	if err != nil {
		return false, err
	}

	infoB, err := os.Stat(pathB)
	if err != nil {
		return false, err
	}

	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	fa, err := os.Open(pathA)
	if err != nil {
		return false, err
	}
	defer fa.Close()

	fb, err := os.Open(pathB)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)

	for {
		nA, errA := io.ReadFull(fa, bufA)
		nB, errB := io.ReadFull(fb, bufB)

		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}

		eofA := isEOF(errA)
		eofB := isEOF(errB)

		switch {
		case eofA && eofB:
			return true, nil
		case eofA != eofB:
			return false, nil
		case errA != nil:
			return false, errA
		case errB != nil:
			return false, errB
		}
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
