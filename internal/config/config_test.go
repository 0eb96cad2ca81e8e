package config

import (
	"testing"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlan = `
duration: 2s
log:
  level: debug
scheduler:
  rate_window: 1s
  starvation_threshold: 50
  metrics: true
timesync:
  correction_limit: 1.5
  step_threshold: 20ms
reference:
  enabled: true
  drift_ppm: -150
  offset: 3ms
  interval: 50ms
  jitter: 500us
stats:
  path: /tmp/stats.db
tasks:
  - name: fast
    interval: 1ms
    work: 100us
    priority: 5
  - name: slow
    interval: 250ms
    start: 10ms
    slip: 5ms
    skip_overdue: false
`

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/plan.yaml", []byte(samplePlan), 0o644))

	p, err := Load(fs, "/plan.yaml")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, p.Duration)
	assert.Equal(t, "debug", p.Log.Level)
	assert.Equal(t, Scheduler{RateWindow: time.Second, StarvationThreshold: 50, Metrics: true}, p.Scheduler)
	assert.Equal(t, TimeSync{CorrectionLimit: 1.5, SlewPeriod: time.Second, StepThreshold: 20 * time.Millisecond}, p.TimeSync)
	assert.Equal(t, Reference{
		Enabled:  true,
		DriftPPM: -150,
		Offset:   3 * time.Millisecond,
		Interval: 50 * time.Millisecond,
		Jitter:   500 * time.Microsecond,
		Buffer:   16,
	}, p.Reference)
	assert.Equal(t, 100*time.Millisecond, p.Driver.MaxIdle)
	assert.Equal(t, Stats{Path: "/tmp/stats.db", Interval: time.Second}, p.Stats)

	require.Len(t, p.Tasks, 2)
	fast, slow := p.Tasks[0], p.Tasks[1]
	assert.Equal(t, "fast", fast.Name)
	assert.Equal(t, time.Millisecond, fast.Interval)
	assert.Equal(t, time.Millisecond, fast.Slip)
	assert.Equal(t, 100*time.Microsecond, fast.Work)
	assert.Equal(t, uint16(5), fast.Priority)
	require.NotNil(t, fast.SkipOverdue)
	assert.True(t, *fast.SkipOverdue)
	assert.Equal(t, 10*time.Millisecond, slow.Start)
	assert.Equal(t, 5*time.Millisecond, slow.Slip)
	require.NotNil(t, slow.SkipOverdue)
	assert.False(t, *slow.SkipOverdue)
}

func TestLoad_missing(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestParse_unknownField(t *testing.T) {
	_, err := Parse([]byte("tasks: []\nbogus: 1\n"))
	assert.ErrorContains(t, err, "bogus")
}

func TestParse_invalid(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		yaml string
		want string
	}{
		{"no tasks", "duration: 1s\n", "at least one task"},
		{"negative duration", "duration: -1s\ntasks: [{name: a, interval: 1ms}]\n", "duration"},
		{"bad level", "log: {level: loud}\ntasks: [{name: a, interval: 1ms}]\n", "loud"},
		{"low limit", "timesync: {correction_limit: 0.5}\ntasks: [{name: a, interval: 1ms}]\n", "correction_limit"},
		{"no name", "tasks: [{interval: 1ms}]\n", "name is required"},
		{"duplicate", "tasks: [{name: a, interval: 1ms}, {name: a, interval: 2ms}]\n", "duplicate"},
		{"zero interval", "tasks: [{name: a}]\n", "interval"},
		{"negative work", "tasks: [{name: a, interval: 1ms, work: -1ms}]\n", "work"},
		{"drift", "reference: {drift_ppm: -1000000}\ntasks: [{name: a, interval: 1ms}]\n", "drift_ppm"},
		{"starvation", "scheduler: {starvation_threshold: -1}\ntasks: [{name: a, interval: 1ms}]\n", "starvation"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Len(t, p.Tasks, 3)
	assert.True(t, p.Reference.Enabled)
	assert.Empty(t, p.Stats.Path)
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, Save(fs, "/out.yaml", Default()))
	p, err := Load(fs, "/out.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, logiface.LevelWarning, level)
	level, ok = ParseLevel("disabled")
	assert.True(t, ok)
	assert.False(t, level.Enabled())
	_, ok = ParseLevel("warn")
	assert.False(t, ok)
}
