// Package touch translates bounding-box percentages into tap and drag
// directives. Hit-testing and event dispatch happen inside the injected
// runtime module; this package does coordinate math and signaling only.
package touch

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/loykin/solarctl/internal/control"
	"github.com/loykin/solarctl/internal/project"
)

// InvalidCoordinateError reports a rejected bounding box. Validation
// failures have no side effects: nothing is written to the control file.
type InvalidCoordinateError struct {
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return "invalid coordinates: " + e.Reason
}

// DisplayInfo is the coordinate-system metadata the instrumented runtime
// writes on startup, passed through unmodified.
type DisplayInfo struct {
	ContentWidth        float64 `json:"contentWidth"`
	ContentHeight       float64 `json:"contentHeight"`
	ActualContentWidth  float64 `json:"actualContentWidth"`
	ActualContentHeight float64 `json:"actualContentHeight"`
	ScreenOriginX       float64 `json:"screenOriginX"`
	ScreenOriginY       float64 `json:"screenOriginY"`
}

// ErrNoDisplayInfo signals the runtime has not reported display metrics
// yet (written by the injected touch module on startup).
var ErrNoDisplayInfo = fmt.Errorf("display info not found; make sure the simulator is running")

// Synthesizer writes touch directives through the control channel,
// serialized per project by the shared channel's atomic writes.
type Synthesizer struct {
	mu sync.Mutex
	ch control.Channel
}

func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

// Tap validates the bounding box and writes a tap directive at its center.
// All four values are percentages of the content area.
func (s *Synthesizer) Tap(p *project.Project, left, right, top, bottom float64) (float64, float64, error) {
	if err := validateBox(left, right, top, bottom); err != nil {
		return 0, 0, err
	}
	cx := (left + right) / 2
	cy := (top + bottom) / 2

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ch.Write(p, control.Directive{
		Kind:    control.KindTap,
		CenterX: cx,
		CenterY: cy,
	}); err != nil {
		return 0, 0, err
	}
	return cx, cy, nil
}

// Drag validates both boxes and writes a drag directive between their
// centers over durationMS milliseconds.
func (s *Synthesizer) Drag(p *project.Project, from, to [4]float64, durationMS int) error {
	if err := validateBox(from[0], from[1], from[2], from[3]); err != nil {
		return err
	}
	if err := validateBox(to[0], to[1], to[2], to[3]); err != nil {
		return err
	}
	if durationMS <= 0 {
		durationMS = 250
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Write(p, control.Directive{
		Kind:       control.KindDrag,
		FromX:      (from[0] + from[1]) / 2,
		FromY:      (from[2] + from[3]) / 2,
		ToX:        (to[0] + to[1]) / 2,
		ToY:        (to[2] + to[3]) / 2,
		DurationMS: durationMS,
	})
}

// DisplayInfoFor reads the display metadata the runtime reported.
func DisplayInfoFor(p *project.Project) (DisplayInfo, error) {
	data, err := os.ReadFile(p.DisplayInfoFile())
	if err != nil {
		if os.IsNotExist(err) {
			return DisplayInfo{}, ErrNoDisplayInfo
		}
		return DisplayInfo{}, err
	}
	var info DisplayInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return DisplayInfo{}, fmt.Errorf("decode display info: %w", err)
	}
	return info, nil
}

func validateBox(left, right, top, bottom float64) error {
	switch {
	case left < 0 || right > 100:
		return &InvalidCoordinateError{Reason: fmt.Sprintf("horizontal range %.1f-%.1f outside [0,100]", left, right)}
	case top < 0 || bottom > 100:
		return &InvalidCoordinateError{Reason: fmt.Sprintf("vertical range %.1f-%.1f outside [0,100]", top, bottom)}
	case left >= right:
		return &InvalidCoordinateError{Reason: fmt.Sprintf("left (%.1f) must be less than right (%.1f)", left, right)}
	case top >= bottom:
		return &InvalidCoordinateError{Reason: fmt.Sprintf("top (%.1f) must be less than bottom (%.1f)", top, bottom)}
	}
	return nil
}
