package dupstat

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func walk(t *testing.T, opt Options) ([]FileRecord, int64) {
	t.Helper()

	opt, excludes, err := prepare(opt)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	records, errorCount, err := walkFiles(context.Background(), opt, excludes, &progress{})
	if err != nil {
		t.Fatalf("walkFiles: %v", err)
	}

	return records, errorCount
}

func TestWalkFiles_SkipsHiddenFilesAndDirectories(t *testing.T) {
	root := t.TempDir()

	visible := writeFile(t, filepath.Join(root, "a.txt"), "a")
	nested := writeFile(t, filepath.Join(root, "sub", "deeper", "b.txt"), "b")
	inHiddenDir := writeFile(t, filepath.Join(root, ".cache", "c.txt"), "c")
	writeFile(t, filepath.Join(root, ".hidden"), "h")
	writeFile(t, filepath.Join(root, "sub", ".env"), "e")

	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}

	records, _ := walk(t, Options{Path: root})

	want := []string{inHiddenDir, visible, nested}
	slices.Sort(want)

	if got := paths(records); !slices.Equal(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}

	for _, rec := range records {
		if rec.Size != 1 {
			t.Errorf("%s: size = %d, want 1", rec.Path, rec.Size)
		}

		if !filepath.IsAbs(rec.Path) {
			t.Errorf("%s: path is not absolute", rec.Path)
		}
	}
}

func TestWalkFiles_Filters(t *testing.T) {
	root := t.TempDir()

	small := writeFile(t, filepath.Join(root, "small.txt"), "x")
	big := writeFile(t, filepath.Join(root, "big.txt"), sized("y", 64))
	deep := writeFile(t, filepath.Join(root, "a", "b", "deep.txt"), sized("z", 64))
	skipped := writeFile(t, filepath.Join(root, "node_modules", "pkg.js"), sized("p", 64))

	tests := []struct {
		name string
		opt  Options
		want []string
	}{
		{
			name: "no filters",
			opt:  Options{},
			want: []string{deep, big, skipped, small},
		},
		{
			name: "min size",
			opt:  Options{MinSize: 2},
			want: []string{deep, big, skipped},
		},
		{
			name: "exclude pattern",
			opt:  Options{Excludes: []string{`.*node_modules/.*`}},
			want: []string{deep, big, small},
		},
		{
			name: "depth",
			opt:  Options{Depth: 2},
			want: []string{big, skipped, small},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opt.Path = root

			records, _ := walk(t, tt.opt)

			want := slices.Clone(tt.want)
			slices.Sort(want)

			if got := paths(records); !slices.Equal(got, want) {
				t.Fatalf("paths = %v, want %v", got, want)
			}
		})
	}
}

func TestWalkFiles_UnreadableDirectoryIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || canReadEverything() {
		t.Skip("permissions are not enforced")
	}

	root := t.TempDir()

	ok := writeFile(t, filepath.Join(root, "ok.txt"), "ok")
	locked := filepath.Join(root, "locked")
	writeFile(t, filepath.Join(locked, "secret.txt"), "secret")

	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	records, errorCount := walk(t, Options{Path: root})

	if got := paths(records); !slices.Equal(got, []string{ok}) {
		t.Fatalf("paths = %v, want [%s]", got, ok)
	}

	if errorCount == 0 {
		t.Fatalf("expected the locked directory to be counted as an error")
	}
}

func TestWalkFiles_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()

	realFile := writeFile(t, filepath.Join(root, "realFile.txt"), "content")
	external := writeFile(t, filepath.Join(outside, "external.txt"), "content")

	alias := filepath.Join(root, "alias.txt")
	if err := os.Symlink(realFile, alias); err != nil {
		t.Fatal(err)
	}

	linkToExternal := filepath.Join(root, "link-external.txt")
	if err := os.Symlink(external, linkToExternal); err != nil {
		t.Fatal(err)
	}

	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling.txt")); err != nil {
		t.Fatal(err)
	}

	// A loop back to the root must not hang the walk.
	if err := os.Symlink(root, filepath.Join(root, "loop")); err != nil {
		t.Fatal(err)
	}

	t.Run("not followed", func(t *testing.T) {
		records, _ := walk(t, Options{Path: root})

		if got := paths(records); !slices.Equal(got, []string{realFile}) {
			t.Fatalf("paths = %v, want [%s]", got, realFile)
		}
	})

	t.Run("followed", func(t *testing.T) {
		records, errorCount := walk(t, Options{Path: root, FollowSymlinks: true})

		want := []string{linkToExternal, realFile}
		if got := paths(records); !slices.Equal(got, want) {
			t.Fatalf("paths = %v, want %v", got, want)
		}

		if errorCount == 0 {
			t.Fatalf("expected the dangling link to be counted as an error")
		}
	})
}

func TestDropLinkAliases(t *testing.T) {
	id := fileID{dev: 1, ino: 42}

	records := []FileRecord{
		{Path: "/a-link", id: id, viaLink: true},
		{Path: "/b-realFile", id: id},
		{Path: "/c-hardlink", id: id},
		{Path: "/d-link", id: id, viaLink: true},
		{Path: "/e-other"},
	}

	got := paths(dropLinkAliases(records, discardLogger()))
	want := []string{"/b-realFile", "/c-hardlink", "/e-other"}

	if !slices.Equal(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
}

func TestCalculateDepth(t *testing.T) {
	sep := string(filepath.Separator)
	root := sep + "root"

	tests := []struct {
		path string
		want int
	}{
		{root, 0},
		{root + sep + "a", 1},
		{root + sep + "a" + sep + "b", 2},
	}

	for _, tt := range tests {
		if got := calculateDepth(tt.path, root); got != tt.want {
			t.Errorf("calculateDepth(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}
