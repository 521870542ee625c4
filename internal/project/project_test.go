package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"mygame", "mygame"},
		{"My Game!", "My_Game_"},
		{"space invaders 2", "space_invaders_2"},
		{"a.b_c-d", "a.b_c-d"},
		{"한글이름", "____"},
		{"", "_"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Fatalf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveFromDir(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.lua")
	if err := os.WriteFile(main, []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("write main.lua: %v", err)
	}

	p, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve dir: %v", err)
	}
	if p.Dir != dir || p.Main != main {
		t.Fatalf("unexpected project: %+v", p)
	}
	if p.Slug != Slugify(filepath.Base(dir)) {
		t.Fatalf("slug mismatch: %q", p.Slug)
	}
}

func TestResolveFromMainLua(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.lua")
	if err := os.WriteFile(main, []byte(""), 0o644); err != nil {
		t.Fatalf("write main.lua: %v", err)
	}

	p, err := Resolve(main)
	if err != nil {
		t.Fatalf("resolve main.lua: %v", err)
	}
	if p.Dir != dir {
		t.Fatalf("dir = %q, want %q", p.Dir, dir)
	}
}

func TestResolveMissing(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "nothing-here"))
	if err == nil {
		t.Fatal("expected error for missing project")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestArtifactPathsAreStable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.lua"), []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	a, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	b, err := Resolve(filepath.Join(dir, "main.lua"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if a.LogPath() != b.LogPath() ||
		a.ScreenshotDir() != b.ScreenshotDir() ||
		a.ControlFile() != b.ControlFile() ||
		a.DisplayInfoFile() != b.DisplayInfoFile() {
		t.Fatal("artifact paths differ between equivalent resolutions")
	}
	if !strings.Contains(a.LogPath(), a.Slug) {
		t.Fatalf("log path %q should embed slug %q", a.LogPath(), a.Slug)
	}
}
