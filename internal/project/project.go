package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EntryFile is the entry point every Solar2D project must have.
const EntryFile = "main.lua"

// NotFoundError indicates the project entry file could not be located.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project not found: no %s at %s", EntryFile, e.Path)
}

// Project is a resolved Solar2D project. It is immutable after Resolve:
// all artifact paths are pure functions of the slug so repeated operations
// always target the same files.
type Project struct {
	Dir  string // absolute project directory
	Main string // absolute path to main.lua
	Slug string // sanitized directory base name
}

// Resolve accepts either a project directory or a path to main.lua and
// returns the resolved project. It returns *NotFoundError when the entry
// file does not exist.
func Resolve(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	main := abs
	if filepath.Base(abs) != EntryFile {
		main = filepath.Join(abs, EntryFile)
	}
	if fi, err := os.Stat(main); err != nil || fi.IsDir() {
		return nil, &NotFoundError{Path: abs}
	}

	dir := filepath.Dir(main)
	return &Project{Dir: dir, Main: main, Slug: Slugify(filepath.Base(dir))}, nil
}

// Slugify maps a directory name onto the stable identifier used to derive
// artifact paths. Characters outside [A-Za-z0-9._-] become '_'.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// The artifact paths below live in the system temp directory by convention.
// The instrumented runtime writes them; the controller only derives their
// locations.

// LogPath returns the log file the injected logger module appends to.
func (p *Project) LogPath() string {
	return filepath.Join(os.TempDir(), "solar2d_log_"+p.Slug+".txt")
}

// ScreenshotDir returns the directory the injected screenshot module
// writes captured frames into.
func (p *Project) ScreenshotDir() string {
	return filepath.Join(os.TempDir(), "solar2d_screenshots_"+p.Slug)
}

// ControlFile returns the per-project control file consumed by the
// injected runtime modules.
func (p *Project) ControlFile() string {
	return filepath.Join(os.TempDir(), "solar2d_control_"+p.Slug+".json")
}

// DisplayInfoFile returns the file the injected touch module writes the
// runtime's display metrics into on startup.
func (p *Project) DisplayInfoFile() string {
	return filepath.Join(os.TempDir(), "solar2d_display_"+p.Slug+".json")
}
