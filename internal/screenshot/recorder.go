// Package screenshot drives the injected screenshot module through the
// control channel and discovers the files it writes. The capture itself
// happens inside the instrumented runtime; the recorder's responsibility
// ends at directive bookkeeping and result discovery.
package screenshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/loykin/solarctl/internal/control"
	"github.com/loykin/solarctl/internal/metrics"
	"github.com/loykin/solarctl/internal/project"
)

const (
	// DefaultDuration applies when a start request carries no duration.
	DefaultDuration = 60 * time.Second
	// MaxDuration caps a single start/extend window.
	MaxDuration = 300 * time.Second

	// LatestFile is the on-demand capture target, outside the recorded
	// sequence.
	LatestFile = "screenshot_latest.jpg"

	defaultCaptureTimeout = 2 * time.Second
	defaultPollInterval   = 100 * time.Millisecond
)

// ErrCaptureTimeout is returned when an on-demand capture does not appear
// within the bounded wait. Usually the simulator is not running.
var ErrCaptureTimeout = errors.New("timed out waiting for on-demand capture; is the simulator running?")

// NotFoundError reports a missing screenshot. Index < 0 means no recorded
// screenshots exist at all.
type NotFoundError struct {
	Index     int
	Available int
}

func (e *NotFoundError) Error() string {
	if e.Index < 0 {
		return "no recorded screenshots; start a recording first"
	}
	return fmt.Sprintf("screenshot %d not found (available: %d)", e.Index, e.Available)
}

// Shot is one discovered screenshot file. Sequence numbers are assigned by
// the instrumented runtime; the controller only observes them.
type Shot struct {
	Seq     int       `json:"seq"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Status reports the session state after a start/stop transition.
type Status struct {
	Recording bool      `json:"recording"`
	Extended  bool      `json:"extended,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Seq       int       `json:"seq"`
	Note      string    `json:"note,omitempty"`
}

// session is the per-project state machine: Idle or Recording. Sessions
// are keyed by slug so operations on different projects never block each
// other; the session mutex linearizes start/extend/stop per project.
type session struct {
	mu        sync.Mutex
	recording bool
	startedAt time.Time
	endTime   time.Time
	seq       int
}

// Recorder owns all screenshot sessions for the controller's lifetime.
type Recorder struct {
	mu       sync.Mutex
	sessions map[string]*session

	ch             control.Channel
	now            func() time.Time
	captureTimeout time.Duration
	pollInterval   time.Duration
}

// Option configures a Recorder; used by tests to shorten waits and fake
// the clock.
type Option func(*Recorder)

func WithClock(f func() time.Time) Option {
	return func(r *Recorder) { r.now = f }
}

func WithCaptureWait(timeout, interval time.Duration) Option {
	return func(r *Recorder) {
		r.captureTimeout = timeout
		r.pollInterval = interval
	}
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		sessions:       make(map[string]*session),
		now:            time.Now,
		captureTimeout: defaultCaptureTimeout,
		pollInterval:   defaultPollInterval,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Recorder) session(slug string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[slug]
	if !ok {
		s = &session{}
		r.sessions[slug] = s
	}
	return s
}

// Start begins a recording session, or extends the current one. A fresh
// start clears the screenshot directory and resets the sequence counter;
// an extend does neither and only pushes the end time forward, never back.
func (r *Recorder) Start(p *project.Project, duration time.Duration) (Status, error) {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if duration > MaxDuration {
		duration = MaxDuration
	}

	s := r.session(p.Slug)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := r.now()
	if !s.recording {
		if err := clearDir(p.ScreenshotDir()); err != nil {
			return Status{}, err
		}
		if err := r.ch.Write(p, control.Directive{
			Kind:        control.KindStartRecording,
			DurationSec: duration.Seconds(),
		}); err != nil {
			return Status{}, err
		}
		s.recording = true
		s.startedAt = now
		s.endTime = now.Add(duration)
		s.seq = 0
		return Status{Recording: true, EndTime: s.endTime, Seq: s.seq}, nil
	}

	// Already recording: extend. endTime only moves forward.
	newEnd := now.Add(duration)
	if newEnd.After(s.endTime) {
		s.endTime = newEnd
	}
	if err := r.ch.Write(p, control.Directive{
		Kind:        control.KindExtendRecording,
		DurationSec: s.endTime.Sub(now).Seconds(),
	}); err != nil {
		return Status{}, err
	}
	return Status{Recording: true, Extended: true, EndTime: s.endTime, Seq: s.seq}, nil
}

// Stop ends the recording session. Stopping an idle session is a no-op
// reported as a status, not an error.
func (r *Recorder) Stop(p *project.Project) (Status, error) {
	s := r.session(p.Slug)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return Status{Recording: false, Seq: s.seq, Note: "not recording"}, nil
	}
	if err := r.ch.Write(p, control.Directive{Kind: control.KindStopRecording}); err != nil {
		return Status{}, err
	}
	s.recording = false
	return Status{Recording: false, Seq: s.seq, Note: "recording stopped"}, nil
}

// CaptureLatest requests a fresh on-demand capture regardless of recording
// state and waits (bounded) for the runtime to produce it. This is the only
// blocking operation in the controller.
func (r *Recorder) CaptureLatest(p *project.Project) (Shot, error) {
	dir := p.ScreenshotDir()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Shot{}, err
	}
	target := filepath.Join(dir, LatestFile)

	var prevMod time.Time
	if fi, err := os.Stat(target); err == nil {
		prevMod = fi.ModTime()
	}

	if err := r.ch.Write(p, control.Directive{Kind: control.KindCapture}); err != nil {
		return Shot{}, err
	}

	deadline := time.Now().Add(r.captureTimeout)
	for time.Now().Before(deadline) {
		time.Sleep(r.pollInterval)
		fi, err := os.Stat(target)
		if err != nil {
			continue
		}
		if fi.ModTime().After(prevMod) || (prevMod.IsZero() && fi.Size() > 0) {
			return Shot{Path: target, Size: fi.Size(), ModTime: fi.ModTime()}, nil
		}
	}
	metrics.IncCaptureTimeout()
	return Shot{}, ErrCaptureTimeout
}

// Get resolves a selector against the project's screenshots.
func (r *Recorder) Get(p *project.Project, sel Selector) ([]Shot, error) {
	if sel.kind == selLatest {
		shot, err := r.CaptureLatest(p)
		if err != nil {
			return nil, err
		}
		return []Shot{shot}, nil
	}

	shots, err := r.List(p)
	if err != nil {
		return nil, err
	}

	switch sel.kind {
	case selAll:
		if len(shots) == 0 {
			return nil, &NotFoundError{Index: -1}
		}
		return shots, nil
	case selLast:
		if len(shots) == 0 {
			return nil, &NotFoundError{Index: -1}
		}
		return shots[len(shots)-1:], nil
	default: // selByIndex
		for _, s := range shots {
			if s.Seq == sel.index {
				return []Shot{s}, nil
			}
		}
		return nil, &NotFoundError{Index: sel.index, Available: len(shots)}
	}
}

var seqFileRe = regexp.MustCompile(`^screenshot_(\d+)\.jpg$`)

// List enumerates recorded screenshots sorted by sequence number, with
// sizes. The on-demand LatestFile is excluded.
func (r *Recorder) List(p *project.Project) ([]Shot, error) {
	entries, err := os.ReadDir(p.ScreenshotDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	shots := make([]Shot, 0, len(entries))
	for _, e := range entries {
		m := seqFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		shots = append(shots, Shot{
			Seq:     seq,
			Path:    filepath.Join(p.ScreenshotDir(), e.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}
	sort.Slice(shots, func(i, j int) bool { return shots[i].Seq < shots[j].Seq })
	return shots, nil
}

// clearDir empties (or creates) the screenshot directory for a fresh
// session.
func clearDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o750)
}
