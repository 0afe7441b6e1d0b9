package models

import "time"

// NavStateKind is the robot's high-level navigation state.
type NavStateKind string

const (
	// NavIdle means the robot is not moving and has no active goal.
	NavIdle NavStateKind = "IDLE"
	// NavNavigating means the robot is moving toward a goal.
	NavNavigating NavStateKind = "NAVIGATING"
	// NavFollowing means the robot is in person-following mode.
	NavFollowing NavStateKind = "FOLLOWING"
	// NavStopped means the robot stopped on request or for an obstacle.
	NavStopped NavStateKind = "STOPPED"
	// NavError means navigation failed and needs attention.
	NavError NavStateKind = "ERROR"
)

// NavState is a snapshot of the robot's navigation situation, recorded by
// the robot host and read back when answering status or navigation
// questions. Pointer fields stay nil when the sensor value is unknown so
// generation can never be fed fabricated numbers.
type NavState struct {
	TimestampUTC      time.Time    `json:"timestamp_utc"`
	SessionID         string       `json:"session_id,omitempty"`
	State             NavStateKind `json:"state"`
	NavGoal           string       `json:"nav_goal,omitempty"`
	NavGoalDisplay    string       `json:"nav_goal_display,omitempty"`
	FrameID           string       `json:"frame_id,omitempty"`
	X                 *float64     `json:"x,omitempty"`
	Y                 *float64     `json:"y,omitempty"`
	Yaw               *float64     `json:"yaw,omitempty"`
	DistToGoalM       *float64     `json:"dist_to_goal_m,omitempty"`
	LinearSpeedMps    *float64     `json:"linear_speed_mps,omitempty"`
	AngularSpeedRps   *float64     `json:"angular_speed_radps,omitempty"`
	MinFrontM         *float64     `json:"min_front_m,omitempty"`
	MinBackM          *float64     `json:"min_back_m,omitempty"`
	BlockedByObstacle bool         `json:"blocked_by_obstacle,omitempty"`
}

// PowerState describes the robot's power situation.
type PowerState string

const (
	// PowerOK means battery levels are healthy.
	PowerOK PowerState = "OK"
	// PowerLow means battery is low and the robot should return soon.
	PowerLow PowerState = "LOW"
	// PowerCritical means shutdown is imminent.
	PowerCritical PowerState = "CRITICAL"
)

// RobotStatus is a snapshot of the robot's health: power, thermals, compute
// load, and connectivity. Same nil-means-unknown rule as NavState.
type RobotStatus struct {
	TimestampUTC      time.Time  `json:"timestamp_utc"`
	SessionID         string     `json:"session_id,omitempty"`
	UpsVoltageV       *float64   `json:"ups_voltage_v,omitempty"`
	UpsSocPct         *float64   `json:"ups_soc_pct,omitempty"`
	KitVoltageV       *float64   `json:"kit_voltage_v,omitempty"`
	KitSocPct         *float64   `json:"kit_soc_pct,omitempty"`
	PowerState        PowerState `json:"power_state,omitempty"`
	ShutdownSoon      bool       `json:"shutdown_soon,omitempty"`
	TempCpuC          *float64   `json:"temp_cpu_c,omitempty"`
	TempBoardC        *float64   `json:"temp_board_c,omitempty"`
	ThermalThrottling bool       `json:"thermal_throttling,omitempty"`
	CpuLoadPct        *float64   `json:"cpu_load_pct,omitempty"`
	MemUsedPct        *float64   `json:"mem_used_pct,omitempty"`
	DiskUsedPct       *float64   `json:"disk_used_pct,omitempty"`
	WifiSsid          string     `json:"wifi_ssid,omitempty"`
	WifiRssiDbm       *float64   `json:"wifi_rssi_dbm,omitempty"`
	NetworkOK         bool       `json:"network_ok,omitempty"`
	HasErrors         bool       `json:"has_errors,omitempty"`
	ErrorSummary      string     `json:"error_summary,omitempty"`
	HealthNote        string     `json:"health_note,omitempty"`
}
