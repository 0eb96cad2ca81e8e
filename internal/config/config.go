// Package config loads simulation plans for the rtsched command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalid is wrapped by every validation error.
	ErrInvalid = errors.New("config: invalid plan")
)

type (
	// Plan describes a simulated workload: a set of periodic tasks, run
	// against a drifting reference clock, for a fixed duration.
	Plan struct {
		Duration  time.Duration `yaml:"duration"`
		Log       Log           `yaml:"log"`
		Scheduler Scheduler     `yaml:"scheduler"`
		TimeSync  TimeSync      `yaml:"timesync"`
		Reference Reference     `yaml:"reference"`
		Driver    Driver        `yaml:"driver"`
		Stats     Stats         `yaml:"stats"`
		Tasks     []Task        `yaml:"tasks"`
	}

	Log struct {
		// Level is a logiface level name, e.g. "info", "debug".
		Level string `yaml:"level"`
	}

	Scheduler struct {
		RateWindow          time.Duration `yaml:"rate_window"`
		// StarvationThreshold of zero uses the scheduler default.
		StarvationThreshold int32         `yaml:"starvation_threshold"`
		Metrics             bool          `yaml:"metrics"`
	}

	TimeSync struct {
		CorrectionLimit float64       `yaml:"correction_limit"`
		SlewPeriod      time.Duration `yaml:"slew_period"`
		StepThreshold   time.Duration `yaml:"step_threshold"`
	}

	// Reference simulates an external clock, which runs DriftPPM fast (or
	// slow, if negative) relative to the platform clock, starting Offset
	// ahead, and reports every Interval, with up to Jitter of latency.
	Reference struct {
		Enabled  bool          `yaml:"enabled"`
		DriftPPM float64       `yaml:"drift_ppm"`
		Offset   time.Duration `yaml:"offset"`
		Interval time.Duration `yaml:"interval"`
		Jitter   time.Duration `yaml:"jitter"`
		Buffer   int           `yaml:"buffer"`
	}

	Driver struct {
		MaxIdle time.Duration `yaml:"max_idle"`
	}

	// Stats configures persistence of task statistics to SQLite. An empty
	// Path disables it.
	Stats struct {
		Path     string        `yaml:"path"`
		Interval time.Duration `yaml:"interval"`
	}

	// Task is a simulated periodic task, that busy-waits for Work each run.
	Task struct {
		Name        string        `yaml:"name"`
		Interval    time.Duration `yaml:"interval"`
		Start       time.Duration `yaml:"start"`
		Slip        time.Duration `yaml:"slip"`
		Work        time.Duration `yaml:"work"`
		Priority    uint16        `yaml:"priority"`
		SkipOverdue *bool         `yaml:"skip_overdue"`
	}
)

// Default returns the plan used when no file is given: three tasks at
// different rates, against a reference that drifts by 200ppm.
func Default() *Plan {
	p := &Plan{
		Duration:  5 * time.Second,
		Reference: Reference{Enabled: true, DriftPPM: 200, Offset: 5 * time.Millisecond},
		Tasks: []Task{
			{Name: "imu", Interval: 5 * time.Millisecond, Work: 200 * time.Microsecond, Priority: 10},
			{Name: "control", Interval: 10 * time.Millisecond, Work: 500 * time.Microsecond, Priority: 20},
			{Name: "telemetry", Interval: 100 * time.Millisecond, Work: 2 * time.Millisecond},
		},
	}
	p.SetDefaults()
	return p
}

// Load reads and validates the plan at path, from fs.
func Load(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("config: read plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML plan. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("config: parse plan: %w", err)
	}
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the plan to path, on fs, as YAML.
func Save(fs afero.Fs, path string, p *Plan) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("config: encode plan: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("config: write plan: %w", err)
	}
	return nil
}

// SetDefaults fills in zero values.
func (p *Plan) SetDefaults() {
	if p.Duration == 0 {
		p.Duration = 10 * time.Second
	}
	if p.Log.Level == "" {
		p.Log.Level = "info"
	}
	if p.Scheduler.RateWindow == 0 {
		p.Scheduler.RateWindow = 5 * time.Second
	}
	if p.TimeSync.CorrectionLimit == 0 {
		p.TimeSync.CorrectionLimit = 2
	}
	if p.TimeSync.SlewPeriod == 0 {
		p.TimeSync.SlewPeriod = time.Second
	}
	if p.Reference.Interval == 0 {
		p.Reference.Interval = 100 * time.Millisecond
	}
	if p.Reference.Buffer == 0 {
		p.Reference.Buffer = 16
	}
	if p.Driver.MaxIdle == 0 {
		p.Driver.MaxIdle = 100 * time.Millisecond
	}
	if p.Stats.Interval == 0 {
		p.Stats.Interval = time.Second
	}
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.Slip == 0 {
			t.Slip = time.Millisecond
		}
		if t.SkipOverdue == nil {
			v := true
			t.SkipOverdue = &v
		}
	}
}

// Validate checks the plan, returning an error wrapping ErrInvalid.
func (p *Plan) Validate() error {
	if p.Duration < 0 {
		return invalid("duration must not be negative")
	}
	if _, ok := ParseLevel(p.Log.Level); !ok {
		return invalid("unknown log level %q", p.Log.Level)
	}
	if p.Scheduler.RateWindow < 0 {
		return invalid("scheduler.rate_window must be positive")
	}
	if p.Scheduler.StarvationThreshold < 0 {
		return invalid("scheduler.starvation_threshold must not be negative")
	}
	if p.TimeSync.CorrectionLimit < 1 {
		return invalid("timesync.correction_limit must be >= 1")
	}
	if p.TimeSync.SlewPeriod < 0 || p.TimeSync.StepThreshold < 0 {
		return invalid("timesync periods must not be negative")
	}
	if p.Reference.Interval < 0 || p.Reference.Jitter < 0 || p.Reference.Buffer < 0 {
		return invalid("reference interval, jitter and buffer must not be negative")
	}
	if p.Reference.DriftPPM <= -1e6 {
		return invalid("reference.drift_ppm must be > -1000000")
	}
	if p.Driver.MaxIdle < 0 {
		return invalid("driver.max_idle must be positive")
	}
	if p.Stats.Interval < 0 {
		return invalid("stats.interval must be positive")
	}
	if len(p.Tasks) == 0 {
		return invalid("at least one task is required")
	}
	names := make(map[string]struct{}, len(p.Tasks))
	for i, t := range p.Tasks {
		if t.Name == "" {
			return invalid("tasks[%d]: name is required", i)
		}
		if _, ok := names[t.Name]; ok {
			return invalid("tasks[%d]: duplicate name %q", i, t.Name)
		}
		names[t.Name] = struct{}{}
		if t.Interval <= 0 {
			return invalid("task %q: interval must be positive", t.Name)
		}
		if t.Start < 0 || t.Slip < 0 || t.Work < 0 {
			return invalid("task %q: start, slip and work must not be negative", t.Name)
		}
	}
	return nil
}

// ParseLevel maps a level name to a logiface level.
func ParseLevel(name string) (logiface.Level, bool) {
	for _, level := range [...]logiface.Level{
		logiface.LevelDisabled,
		logiface.LevelEmergency,
		logiface.LevelAlert,
		logiface.LevelCritical,
		logiface.LevelError,
		logiface.LevelWarning,
		logiface.LevelNotice,
		logiface.LevelInformational,
		logiface.LevelDebug,
		logiface.LevelTrace,
	} {
		if level.String() == name {
			return level, true
		}
	}
	return 0, false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
