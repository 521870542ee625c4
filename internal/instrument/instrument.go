// Package instrument generates the cooperating Lua modules and injects
// their require statements into a project's entry file. All operations are
// idempotent: a module file is only written when absent, and a require line
// is only inserted when no require of that module exists yet.
package instrument

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/loykin/solarctl/internal/project"
)

// WriteError indicates an instrumentation file could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ModuleStatus reports what EnsureInstrumented did for one module.
type ModuleStatus struct {
	Name            string `json:"name"`
	FileCreated     bool   `json:"file_created"`
	RequireInjected bool   `json:"require_injected"`
}

// Result aggregates the three capability modules.
type Result struct {
	Logger     ModuleStatus `json:"logger"`
	Screenshot ModuleStatus `json:"screenshot"`
	Touch      ModuleStatus `json:"touch"`
}

// EnsureInstrumented makes sure all three cooperating modules exist in the
// project directory and are required from the entry file. Calling it any
// number of times yields exactly one require line per module.
func EnsureInstrumented(p *project.Project) (Result, error) {
	var res Result

	modules := []struct {
		name   string
		render func(*project.Project) string
		out    *ModuleStatus
	}{
		{LoggerModule, renderLogger, &res.Logger},
		{ScreenshotModule, renderScreenshot, &res.Screenshot},
		{TouchModule, renderTouch, &res.Touch},
	}

	for _, m := range modules {
		m.out.Name = m.name
		created, err := ensureModuleFile(p, m.name, m.render(p))
		if err != nil {
			return res, err
		}
		m.out.FileCreated = created

		injected, err := ensureRequire(p.Main, m.name)
		if err != nil {
			return res, err
		}
		m.out.RequireInjected = injected
	}
	return res, nil
}

// ensureModuleFile writes the module source into the project directory if
// the file does not exist yet.
func ensureModuleFile(p *project.Project, name, src string) (bool, error) {
	path := filepath.Join(p.Dir, name+".lua")
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return false, &WriteError{Path: path, Err: err}
	}
	return true, nil
}

// ensureRequire inserts a require line for module into the entry file,
// evaluated against the current file contents. It reports whether the file
// was rewritten.
func ensureRequire(mainPath, module string) (bool, error) {
	data, err := os.ReadFile(mainPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &project.NotFoundError{Path: mainPath}
		}
		return false, err
	}

	updated, changed := insertRequire(string(data), module)
	if !changed {
		return false, nil
	}
	if err := os.WriteFile(mainPath, []byte(updated), 0o644); err != nil {
		return false, &WriteError{Path: mainPath, Err: err}
	}
	return true, nil
}

// insertRequire applies the insertion ordering policy:
//  1. immediately after an existing debugger-bootstrap (mobdebug) require,
//  2. otherwise immediately before the first non-comment require,
//  3. otherwise after any leading comments and blank lines.
func insertRequire(content, module string) (string, bool) {
	if strings.Contains(content, `require("`+module+`")`) ||
		strings.Contains(content, `require('`+module+`')`) {
		return content, false
	}

	lines := strings.Split(content, "\n")
	idx := 0
	found := false
	for i, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "mobdebug") && strings.Contains(lower, "require") {
			idx = i + 1
			found = true
			break
		}
		if strings.Contains(line, "require") && !strings.HasPrefix(strings.TrimSpace(line), "--") {
			idx = i
			found = true
			break
		}
	}
	if !found {
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				idx = i
				break
			}
		}
	}

	injected := `require("` + module + `")  -- injected by solarctl`
	lines = append(lines, "")
	copy(lines[idx+1:], lines[idx:])
	lines[idx] = injected
	return strings.Join(lines, "\n"), true
}
