package dupstat

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
)

func TestSameContent(t *testing.T) {
	root := t.TempDir()
	content := sized("abc", 10_000)

	a := writeFile(t, filepath.Join(root, "a"), content)
	b := writeFile(t, filepath.Join(root, "b"), content)
	lastByte := writeFile(t, filepath.Join(root, "last"), content[:len(content)-1]+"#")
	shorter := writeFile(t, filepath.Join(root, "short"), content[:len(content)-1])
	empty1 := writeFile(t, filepath.Join(root, "empty1"), "")
	empty2 := writeFile(t, filepath.Join(root, "empty2"), "")

	tests := []struct {
		name    string
		a, b    string
		want    bool
		wantErr bool
	}{
		{name: "identical", a: a, b: b, want: true},
		{name: "differs in last chunk", a: a, b: lastByte},
		{name: "size mismatch", a: a, b: shorter},
		{name: "empty files", a: empty1, b: empty2, want: true},
		{name: "missing file", a: a, b: filepath.Join(root, "missing"), wantErr: true},
	}

	for _, tt := range tests {
		for _, chunk := range []int{7, 4096, DefaultChunkSize} {
			got, err := sameContent(tt.a, tt.b, chunk)
			if (err != nil) != tt.wantErr {
				t.Fatalf("%s (chunk %d): err = %v", tt.name, chunk, err)
			}

			if got != tt.want {
				t.Fatalf("%s (chunk %d): equal = %v, want %v", tt.name, chunk, got, tt.want)
			}
		}
	}
}

func TestConfirmDuplicates_AllPairsWithinGroup(t *testing.T) {
	root := t.TempDir()

	a := writeFile(t, filepath.Join(root, "a"), "same")
	b := writeFile(t, filepath.Join(root, "b"), "same")
	c := writeFile(t, filepath.Join(root, "c"), "same")

	key := digestKey{size: 4, digest: "d"}
	groups := map[digestKey][]FileRecord{
		key: {{Path: a, Size: 4}, {Path: b, Size: 4}, {Path: c, Size: 4}},
	}

	pairs, failed, err := confirmDuplicates(context.Background(), groups, 2, discardLogger())
	if err != nil || failed != 0 {
		t.Fatalf("err = %v, failed = %d", err, failed)
	}

	want := []DuplicatePair{
		{A: a, B: b, Size: 4},
		{A: a, B: c, Size: 4},
		{A: b, B: c, Size: 4},
	}

	if !slices.Equal(pairs, want) {
		t.Fatalf("pairs = %v, want %v", pairs, want)
	}
}

func TestConfirmDuplicates_RejectsDigestCollision(t *testing.T) {
	root := t.TempDir()

	// Same size and a forged shared digest, different bytes.
	a := writeFile(t, filepath.Join(root, "a"), "AAAA")
	b := writeFile(t, filepath.Join(root, "b"), "BBBB")
	c := writeFile(t, filepath.Join(root, "c"), "AAAA")

	groups := map[digestKey][]FileRecord{
		{size: 4, digest: "collision"}: {{Path: a, Size: 4}, {Path: b, Size: 4}, {Path: c, Size: 4}},
		{size: 4, digest: "lonely"}:    {{Path: a, Size: 4}},
	}

	pairs, _, err := confirmDuplicates(context.Background(), groups, DefaultChunkSize, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	want := []DuplicatePair{{A: a, B: c, Size: 4}}
	if !slices.Equal(pairs, want) {
		t.Fatalf("pairs = %v, want %v", pairs, want)
	}
}

func TestConfirmDuplicates_ReadFailureIsMismatch(t *testing.T) {
	root := t.TempDir()

	a := writeFile(t, filepath.Join(root, "a"), "same")
	gone := filepath.Join(root, "gone")

	groups := map[digestKey][]FileRecord{
		{size: 4, digest: "d"}: {{Path: a, Size: 4}, {Path: gone, Size: 4}},
	}

	pairs, failed, err := confirmDuplicates(context.Background(), groups, DefaultChunkSize, discardLogger())
	if err != nil {
		t.Fatal(err)
	}

	if len(pairs) != 0 || failed != 1 {
		t.Fatalf("pairs = %v, failed = %d, want no pairs and one failure", pairs, failed)
	}
}

func TestSortedKeys(t *testing.T) {
	groups := map[digestKey][]FileRecord{
		{size: 1, digest: "b"}: nil,
		{size: 9, digest: "z"}: nil,
		{size: 1, digest: "a"}: nil,
	}

	want := []digestKey{{9, "z"}, {1, "a"}, {1, "b"}}
	if got := sortedKeys(groups); !slices.Equal(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
}
