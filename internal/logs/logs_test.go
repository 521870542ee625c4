package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/loykin/solarctl/internal/project"
)

var projSeq atomic.Int64

// testProject gives each project a unique directory name so slugs (and the
// artifact files derived from them) never collide across parallel packages.
func testProject(t *testing.T) *project.Project {
	t.Helper()
	name := fmt.Sprintf("%s-%d", strings.ReplaceAll(t.Name(), "/", "_"), projSeq.Add(1))
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.lua"), []byte(""), 0o644); err != nil {
		t.Fatalf("write main.lua: %v", err)
	}
	p, err := project.Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return p
}

func TestReadNoLogsYet(t *testing.T) {
	p := testProject(t)
	_ = os.Remove(p.LogPath())

	tail, err := Read(p, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !tail.NoLogsYet {
		t.Fatal("expected NoLogsYet for missing file")
	}
	if tail.Path != p.LogPath() {
		t.Fatalf("path = %q, want %q", tail.Path, p.LogPath())
	}
}

func TestReadTailsLastN(t *testing.T) {
	p := testProject(t)
	content := "one\ntwo\nthree\nfour\n"
	if err := os.WriteFile(p.LogPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(p.LogPath()) })

	tail, err := Read(p, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tail.Lines) != 2 || tail.Lines[0] != "three" || tail.Lines[1] != "four" {
		t.Fatalf("unexpected tail: %v", tail.Lines)
	}
}

func TestReadDropsPartialTrailingLine(t *testing.T) {
	p := testProject(t)
	if err := os.WriteFile(p.LogPath(), []byte("done\nhalf-writ"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(p.LogPath()) })

	tail, err := Read(p, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(tail.Lines) != 1 || tail.Lines[0] != "done" {
		t.Fatalf("partial line must be dropped, got %v", tail.Lines)
	}
}

func TestSplitComplete(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a\n", 1},
		{"a\nb\n", 2},
		{"a\nb", 1},
		{"partial", 0},
	}
	for _, c := range cases {
		if got := splitComplete(c.in); len(got) != c.want {
			t.Fatalf("splitComplete(%q) = %v, want %d lines", c.in, got, c.want)
		}
	}
}
