// Package telemetry keeps the most recent navigation and robot-health
// snapshots reported by the robot host, persisted to disk so they survive a
// restart.
//
// The rule that matters here: a snapshot that was never recorded is absent,
// not defaulted. Returning nil keeps fabricated sensor values out of
// generated answers.
package telemetry

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/savo-robotics/savocore/internal/models"
	"github.com/savo-robotics/savocore/internal/util"
)

// File names inside the telemetry data directory.
const (
	navStateFile    = "nav_state.json"
	robotStatusFile = "robot_status.json"
)

// Recorder stores the latest NavState and RobotStatus snapshots in memory
// and mirrors them to JSON files via atomic writes. Reads are safe across
// concurrent turns; writes come from the single robot host feed.
type Recorder struct {
	dir string

	mu       sync.RWMutex
	navState *models.NavState
	status   *models.RobotStatus
}

// NewRecorder creates a recorder rooted at dir and loads any snapshots a
// previous process left behind.
func NewRecorder(dir string) *Recorder {
	r := &Recorder{dir: dir}

	var nav models.NavState
	if util.ReadJSONSafely(r.navPath(), &nav) {
		r.navState = &nav
		slog.Info("Recorder: restored nav state snapshot", "state", nav.State, "recorded_at", nav.TimestampUTC)
	}
	var status models.RobotStatus
	if util.ReadJSONSafely(r.statusPath(), &status) {
		r.status = &status
		slog.Info("Recorder: restored robot status snapshot", "recorded_at", status.TimestampUTC)
	}
	return r
}

// RecordNavState stores a new navigation snapshot and persists it.
func (r *Recorder) RecordNavState(state models.NavState) error {
	if state.TimestampUTC.IsZero() {
		state.TimestampUTC = time.Now().UTC()
	}
	r.mu.Lock()
	r.navState = &state
	r.mu.Unlock()

	if err := util.WriteJSONAtomic(r.navPath(), state); err != nil {
		slog.Error("Recorder.RecordNavState: failed to persist snapshot", "error", err)
		return err
	}
	slog.Debug("Recorder.RecordNavState: snapshot recorded", "state", state.State, "goal", state.NavGoal)
	return nil
}

// RecordStatus stores a new robot health snapshot and persists it.
func (r *Recorder) RecordStatus(status models.RobotStatus) error {
	if status.TimestampUTC.IsZero() {
		status.TimestampUTC = time.Now().UTC()
	}
	r.mu.Lock()
	r.status = &status
	r.mu.Unlock()

	if err := util.WriteJSONAtomic(r.statusPath(), status); err != nil {
		slog.Error("Recorder.RecordStatus: failed to persist snapshot", "error", err)
		return err
	}
	slog.Debug("Recorder.RecordStatus: snapshot recorded", "power_state", status.PowerState)
	return nil
}

// NavState returns the latest navigation snapshot, or nil when none was
// ever recorded.
func (r *Recorder) NavState() *models.NavState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.navState == nil {
		return nil
	}
	nav := *r.navState
	return &nav
}

// Status returns the latest robot health snapshot, or nil when none was
// ever recorded.
func (r *Recorder) Status() *models.RobotStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.status == nil {
		return nil
	}
	status := *r.status
	return &status
}

func (r *Recorder) navPath() string {
	return filepath.Join(r.dir, navStateFile)
}

func (r *Recorder) statusPath() string {
	return filepath.Join(r.dir, robotStatusFile)
}
