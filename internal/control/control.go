package control

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/loykin/solarctl/internal/metrics"
	"github.com/loykin/solarctl/internal/project"
)

// Kind tags a directive variant.
type Kind string

const (
	KindStartRecording  Kind = "start_recording"
	KindExtendRecording Kind = "extend_recording"
	KindStopRecording   Kind = "stop_recording"
	KindCapture         Kind = "capture"
	KindTap             Kind = "tap"
	KindDrag            Kind = "drag"
)

// Directive is the tagged-variant message written to a project's control
// file. Only the fields belonging to the Kind are meaningful. The injected
// runtime modules poll the file once per tick and consume the directives
// addressed to them; delivery is at-most-once and best-effort.
type Directive struct {
	Kind Kind `json:"kind"`

	// start_recording / extend_recording: seconds until the recording
	// window ends, measured from the moment the runtime picks it up.
	DurationSec float64 `json:"duration_sec,omitempty"`

	// tap: center of the target box, percentages of content size.
	CenterX float64 `json:"center_x,omitempty"`
	CenterY float64 `json:"center_y,omitempty"`

	// drag: start and end centers (percentages) plus gesture duration.
	FromX      float64 `json:"from_x,omitempty"`
	FromY      float64 `json:"from_y,omitempty"`
	ToX        float64 `json:"to_x,omitempty"`
	ToY        float64 `json:"to_y,omitempty"`
	DurationMS int     `json:"duration_ms,omitempty"`
}

// Channel is the file-based signaling primitive shared by the screenshot
// recorder and the touch synthesizer. Writes are atomic replacements
// (temp file + rename) so the external reader never observes a partial
// directive. A new write logically supersedes any unconsumed one.
type Channel struct{}

// Write replaces the project's control file with the encoded directive.
func (Channel) Write(p *project.Project, d Directive) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	path := p.ControlFile()
	tmp, err := os.CreateTemp(filepath.Dir(path), ".control-*")
	if err != nil {
		return fmt.Errorf("write control file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write control file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write control file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write control file: %w", err)
	}
	metrics.IncDirective(string(d.Kind))
	return nil
}

// ReadLatest decodes the currently pending directive, or returns nil when
// no directive is pending (absent file).
func (Channel) ReadLatest(p *project.Project) (*Directive, error) {
	data, err := os.ReadFile(p.ControlFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var d Directive
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode control file: %w", err)
	}
	return &d, nil
}
