package trellis

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that YAML-decodes from strings like "300ms".
type Duration struct{ time.Duration }

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = dur
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Config holds every engine tunable. Load one with DefaultConfig and adjust
// fields, or layer a YAML file over the defaults with LoadConfig.
type Config struct {
	// ClickThreshold is the maximum pointer travel in screen pixels for a
	// press/release pair to count as a click. Exceeding it starts a drag.
	ClickThreshold float64 `yaml:"click_threshold"`
	// ClickDelay is the double-click window. A single click is reported
	// only after this delay passes without a second click.
	ClickDelay Duration `yaml:"click_delay"`
	// LongPress is how long a touch must stay within the click threshold
	// to open a context menu.
	LongPress Duration `yaml:"long_press"`

	// BatchSize is the mutation count that triggers an immediate flush.
	BatchSize int `yaml:"batch_size"`
	// BatchDelay is how long a partial batch may wait before flushing.
	BatchDelay Duration `yaml:"batch_delay"`

	// ErrorThreshold is the backend error count that marks the engine
	// degraded.
	ErrorThreshold int `yaml:"error_threshold"`
	// MinFPS is the frame rate floor; sustained rates below it mark the
	// engine degraded.
	MinFPS float64 `yaml:"min_fps"`
	// MaxFrameTime is the average draw duration ceiling.
	MaxFrameTime Duration `yaml:"max_frame_time"`
	// MaxMemoryMB is the heap ceiling in mebibytes. Zero disables the
	// check.
	MaxMemoryMB float64 `yaml:"max_memory_mb"`
	// RollbackDelay is how long a degraded engine waits before re-checking
	// health and, if still degraded, swapping backends.
	RollbackDelay Duration `yaml:"rollback_delay"`
	// MaxRetries caps how many backend swaps a session may perform.
	MaxRetries int `yaml:"max_retries"`

	// MinZoom and MaxZoom bound the viewport zoom factor.
	MinZoom float64 `yaml:"min_zoom"`
	MaxZoom float64 `yaml:"max_zoom"`
	// CullPadding expands the visible bounds by this many world units
	// before querying the spatial index, so objects sliding into view
	// appear without popping.
	CullPadding float64 `yaml:"cull_padding"`

	// QuadMaxObjects and QuadMaxDepth tune the spatial index.
	QuadMaxObjects int `yaml:"quad_max_objects"`
	QuadMaxDepth   int `yaml:"quad_max_depth"`
	// WorldBounds is the region the spatial index subdivides. Objects
	// outside it are still tracked, just less efficiently.
	WorldBounds Rect `yaml:"world_bounds"`

	// DefaultNodeWidth and DefaultNodeHeight apply to nodes created with
	// zero size, before growing to fit their label.
	DefaultNodeWidth  float64 `yaml:"default_node_width"`
	DefaultNodeHeight float64 `yaml:"default_node_height"`

	// Background fills the screen each frame before drawing. The zero
	// color selects white.
	Background Color `yaml:"background"`

	// SampleWindow is the health history length and SampleInterval the
	// time between samples.
	SampleWindow   int      `yaml:"sample_window"`
	SampleInterval Duration `yaml:"sample_interval"`

	// PanOnCanvasDrag makes dragging empty canvas pan the viewport.
	PanOnCanvasDrag bool `yaml:"pan_on_canvas_drag"`
	// DragMovesNodes makes dragging a node submit position updates through
	// the mutation batcher. Disable it to handle node drags purely through
	// event callbacks.
	DragMovesNodes bool `yaml:"drag_moves_nodes"`
	// WheelZoom makes the mouse wheel zoom toward the cursor, scaled by
	// WheelZoomStep per wheel notch.
	WheelZoom     bool    `yaml:"wheel_zoom"`
	WheelZoomStep float64 `yaml:"wheel_zoom_step"`

	// Logger receives engine warnings and rollback notices. Nil selects a
	// quiet default logging at warn level.
	Logger *logrus.Logger `yaml:"-"`
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		ClickThreshold: 4.0,
		ClickDelay:     Duration{300 * time.Millisecond},
		LongPress:      Duration{500 * time.Millisecond},

		BatchSize:  50,
		BatchDelay: Duration{16 * time.Millisecond},

		ErrorThreshold: 5,
		MinFPS:         30,
		MaxFrameTime:   Duration{50 * time.Millisecond},
		MaxMemoryMB:    512,
		RollbackDelay:  Duration{2 * time.Second},
		MaxRetries:     1,

		MinZoom:     0.1,
		MaxZoom:     4.0,
		CullPadding: 50,

		QuadMaxObjects: 8,
		QuadMaxDepth:   8,
		WorldBounds:    Rect{X: -100000, Y: -100000, Width: 200000, Height: 200000},

		DefaultNodeWidth:  120,
		DefaultNodeHeight: 48,

		Background: ColorWhite,

		SampleWindow:   300,
		SampleInterval: Duration{time.Second},

		PanOnCanvasDrag: true,
		DragMovesNodes:  true,
		WheelZoom:       true,
		WheelZoomStep:   0.1,
	}
}

// fillDefaults replaces zero-valued numeric fields with their DefaultConfig
// values so a sparse Config literal behaves sensibly. Booleans keep their
// zero value, as do MaxRetries (zero means never swap backends) and
// MaxMemoryMB (zero disables the check).
func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.ClickThreshold <= 0 {
		c.ClickThreshold = d.ClickThreshold
	}
	if c.ClickDelay.Duration <= 0 {
		c.ClickDelay = d.ClickDelay
	}
	if c.LongPress.Duration <= 0 {
		c.LongPress = d.LongPress
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.BatchDelay.Duration <= 0 {
		c.BatchDelay = d.BatchDelay
	}
	if c.ErrorThreshold <= 0 {
		c.ErrorThreshold = d.ErrorThreshold
	}
	if c.MinFPS <= 0 {
		c.MinFPS = d.MinFPS
	}
	if c.MaxFrameTime.Duration <= 0 {
		c.MaxFrameTime = d.MaxFrameTime
	}
	if c.RollbackDelay.Duration <= 0 {
		c.RollbackDelay = d.RollbackDelay
	}
	if c.MinZoom <= 0 {
		c.MinZoom = d.MinZoom
	}
	if c.MaxZoom <= 0 {
		c.MaxZoom = d.MaxZoom
	}
	if c.CullPadding <= 0 {
		c.CullPadding = d.CullPadding
	}
	if c.QuadMaxObjects <= 0 {
		c.QuadMaxObjects = d.QuadMaxObjects
	}
	if c.QuadMaxDepth <= 0 {
		c.QuadMaxDepth = d.QuadMaxDepth
	}
	if c.WorldBounds.Width <= 0 || c.WorldBounds.Height <= 0 {
		c.WorldBounds = d.WorldBounds
	}
	if c.DefaultNodeWidth <= 0 {
		c.DefaultNodeWidth = d.DefaultNodeWidth
	}
	if c.DefaultNodeHeight <= 0 {
		c.DefaultNodeHeight = d.DefaultNodeHeight
	}
	if colorUnset(c.Background) {
		c.Background = d.Background
	}
	if c.SampleWindow <= 0 {
		c.SampleWindow = d.SampleWindow
	}
	if c.SampleInterval.Duration <= 0 {
		c.SampleInterval = d.SampleInterval
	}
	if c.WheelZoomStep <= 0 {
		c.WheelZoomStep = d.WheelZoomStep
	}
}

// LoadConfig layers a YAML file over the defaults. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig layers YAML bytes over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first nonsensical setting.
func (c *Config) Validate() error {
	if c.ClickThreshold < 0 {
		return fmt.Errorf("click_threshold must be >= 0, got %v", c.ClickThreshold)
	}
	if c.ClickDelay.Duration < 0 {
		return fmt.Errorf("click_delay must be >= 0, got %v", c.ClickDelay)
	}
	if c.LongPress.Duration <= 0 {
		return fmt.Errorf("long_press must be > 0, got %v", c.LongPress)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0, got %d", c.BatchSize)
	}
	if c.BatchDelay.Duration <= 0 {
		return fmt.Errorf("batch_delay must be > 0, got %v", c.BatchDelay)
	}
	if c.ErrorThreshold <= 0 {
		return fmt.Errorf("error_threshold must be > 0, got %d", c.ErrorThreshold)
	}
	if c.MinFPS < 0 {
		return fmt.Errorf("min_fps must be >= 0, got %v", c.MinFPS)
	}
	if c.RollbackDelay.Duration < 0 {
		return fmt.Errorf("rollback_delay must be >= 0, got %v", c.RollbackDelay)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0, got %d", c.MaxRetries)
	}
	if c.MinZoom <= 0 {
		return fmt.Errorf("min_zoom must be > 0, got %v", c.MinZoom)
	}
	if c.MaxZoom < c.MinZoom {
		return fmt.Errorf("max_zoom %v must be >= min_zoom %v", c.MaxZoom, c.MinZoom)
	}
	if c.WorldBounds.Width <= 0 || c.WorldBounds.Height <= 0 {
		return fmt.Errorf("world_bounds must have positive size, got %vx%v",
			c.WorldBounds.Width, c.WorldBounds.Height)
	}
	if c.DefaultNodeWidth <= 0 || c.DefaultNodeHeight <= 0 {
		return fmt.Errorf("default node size must be positive, got %vx%v",
			c.DefaultNodeWidth, c.DefaultNodeHeight)
	}
	if c.SampleWindow <= 0 {
		return fmt.Errorf("sample_window must be > 0, got %d", c.SampleWindow)
	}
	if c.SampleInterval.Duration <= 0 {
		return fmt.Errorf("sample_interval must be > 0, got %v", c.SampleInterval)
	}
	return nil
}

// logger returns the configured logger or a quiet default.
func (c *Config) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	return log
}
