// Package logs reads the log file the injected logger module appends to.
// Reads are best-effort snapshots: the external writer is never locked out,
// and a trailing unterminated line is dropped rather than returned malformed.
package logs

import (
	"os"
	"strings"

	"github.com/loykin/solarctl/internal/metrics"
	"github.com/loykin/solarctl/internal/project"
)

// Tail is the result of a log read. NoLogsYet is a soft signal, not an
// error: the runtime creates the log file lazily on first launch.
type Tail struct {
	Lines     []string `json:"lines"`
	NoLogsYet bool     `json:"no_logs_yet"`
	Path      string   `json:"path"`
}

// Read returns the most recent maxLines complete lines, oldest first.
func Read(p *project.Project, maxLines int) (Tail, error) {
	metrics.IncLogRead()
	path := p.LogPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tail{NoLogsYet: true, Path: path}, nil
		}
		return Tail{Path: path}, err
	}

	lines := splitComplete(string(data))
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return Tail{Lines: lines, Path: path}, nil
}

// splitComplete splits on newlines and drops a trailing partial line: the
// external writer may be mid-append at snapshot time.
func splitComplete(content string) []string {
	if content == "" {
		return nil
	}
	complete := strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if !complete && len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}
