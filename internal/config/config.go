package config

import (
	"time"

	"github.com/tbung/wezterm/internal/geometry"
	"github.com/tbung/wezterm/internal/mux"
)

// CloseConfirmation controls whether closing a window asks first.
type CloseConfirmation string

const (
	AlwaysPrompt CloseConfirmation = "AlwaysPrompt"
	NeverPrompt  CloseConfirmation = "NeverPrompt"
)

// Padding is the window padding in pixels.
type Padding struct {
	Left   int `toml:"left" json:"left"`
	Right  int `toml:"right" json:"right"`
	Top    int `toml:"top" json:"top"`
	Bottom int `toml:"bottom" json:"bottom"`
}

// Colors holds the user-specified palette entries as hex strings.
type Colors struct {
	Foreground  string `toml:"foreground" json:"foreground"`
	Background  string `toml:"background" json:"background"`
	CursorBg    string `toml:"cursor_bg" json:"cursor_bg"`
	SelectionFg string `toml:"selection_fg" json:"selection_fg"`
	SelectionBg string `toml:"selection_bg" json:"selection_bg"`
}

// KeyBinding maps a key chord to a named action.
type KeyBinding struct {
	Key    string `toml:"key" json:"key"`
	Mods   string `toml:"mods" json:"mods"`
	Action string `toml:"action" json:"action"`
	Arg    string `toml:"arg" json:"arg"`
}

// LaunchItem is an entry of the launcher menu.
type LaunchItem struct {
	Label string   `toml:"label" json:"label"`
	Args  []string `toml:"args" json:"args"`
}

// Config is an immutable configuration snapshot. Callers never mutate a
// Config obtained from a Store; they derive a copy instead.
type Config struct {
	FontSize float64  `toml:"font_size" json:"font_size"`
	DPI      *float64 `toml:"dpi" json:"dpi,omitempty"`

	WindowPadding            Padding `toml:"window_padding" json:"window_padding"`
	EnableTabBar             bool    `toml:"enable_tab_bar" json:"enable_tab_bar"`
	HideTabBarIfOnlyOneTab   bool    `toml:"hide_tab_bar_if_only_one_tab" json:"hide_tab_bar_if_only_one_tab"`
	EnableScrollBar          bool    `toml:"enable_scroll_bar" json:"enable_scroll_bar"`
	CursorBlinkRate          int     `toml:"cursor_blink_rate" json:"cursor_blink_rate"`
	DefaultCursorStyle       string  `toml:"default_cursor_style" json:"default_cursor_style"`
	ScrollToBottomOnInput    bool    `toml:"scroll_to_bottom_on_input" json:"scroll_to_bottom_on_input"`
	AdjustWindowSizeOnFont   bool    `toml:"adjust_window_size_when_changing_font_size" json:"adjust_window_size_when_changing_font_size"`
	WindowCloseConfirmation  string  `toml:"window_close_confirmation" json:"window_close_confirmation"`
	InitialRows              int     `toml:"initial_rows" json:"initial_rows"`
	InitialCols              int     `toml:"initial_cols" json:"initial_cols"`
	WindowBackgroundImage    string  `toml:"window_background_image" json:"window_background_image"`
	SelectionWordBoundary    string  `toml:"selection_word_boundary" json:"selection_word_boundary"`
	WindowClass              string  `toml:"window_class" json:"window_class"`
	MaintenanceIntervalMs    int     `toml:"maintenance_interval" json:"maintenance_interval"`
	EventScript              string  `toml:"event_script" json:"event_script"`
	LineHeight               float64 `toml:"line_height" json:"line_height"`

	Colors     Colors       `toml:"colors" json:"colors"`
	Keys       []KeyBinding `toml:"keys" json:"keys"`
	LaunchMenu []LaunchItem `toml:"launch_menu" json:"launch_menu"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FontSize:                12.0,
		EnableTabBar:            true,
		CursorBlinkRate:         800,
		DefaultCursorStyle:      "SteadyBlock",
		ScrollToBottomOnInput:   true,
		AdjustWindowSizeOnFont:  true,
		WindowCloseConfirmation: string(AlwaysPrompt),
		InitialRows:             24,
		InitialCols:             80,
		SelectionWordBoundary:   " \t\n{}[]()\"'`",
		WindowClass:             "org.wezfurlong.wezterm",
		MaintenanceIntervalMs:   35,
		LineHeight:              1.0,
		Colors: Colors{
			Foreground:  "#b2b2b2",
			Background:  "#000000",
			CursorBg:    "#52ad70",
			SelectionFg: "#000000",
			SelectionBg: "#fffacd",
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.DPI != nil {
		dpi := *c.DPI
		out.DPI = &dpi
	}
	out.Keys = append([]KeyBinding(nil), c.Keys...)
	out.LaunchMenu = make([]LaunchItem, len(c.LaunchMenu))
	for i, item := range c.LaunchMenu {
		out.LaunchMenu[i] = LaunchItem{Label: item.Label, Args: append([]string(nil), item.Args...)}
	}
	return &out
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.FontSize <= 0 {
		return &ValidationError{Field: "font_size", Value: c.FontSize, Message: "must be positive"}
	}
	if c.DPI != nil && *c.DPI <= 0 {
		return &ValidationError{Field: "dpi", Value: *c.DPI, Message: "must be positive"}
	}
	if c.CursorBlinkRate < 0 {
		return &ValidationError{Field: "cursor_blink_rate", Value: c.CursorBlinkRate, Message: "must not be negative"}
	}
	if _, ok := mux.ParseCursorShape(c.DefaultCursorStyle); !ok {
		return &ValidationError{Field: "default_cursor_style", Value: c.DefaultCursorStyle, Message: "unknown cursor style"}
	}
	switch CloseConfirmation(c.WindowCloseConfirmation) {
	case AlwaysPrompt, NeverPrompt:
	default:
		return &ValidationError{Field: "window_close_confirmation", Value: c.WindowCloseConfirmation, Message: "must be AlwaysPrompt or NeverPrompt"}
	}
	if c.InitialRows < 1 || c.InitialCols < 1 {
		return &ValidationError{Field: "initial_rows/initial_cols", Value: [2]int{c.InitialRows, c.InitialCols}, Message: "must be at least 1"}
	}
	if c.MaintenanceIntervalMs < 1 {
		return &ValidationError{Field: "maintenance_interval", Value: c.MaintenanceIntervalMs, Message: "must be at least 1ms"}
	}
	if c.LineHeight <= 0 {
		return &ValidationError{Field: "line_height", Value: c.LineHeight, Message: "must be positive"}
	}
	p := c.WindowPadding
	if p.Left < 0 || p.Right < 0 || p.Top < 0 || p.Bottom < 0 {
		return &ValidationError{Field: "window_padding", Value: p, Message: "must not be negative"}
	}
	return nil
}

// EffectiveDPI returns the configured DPI or geometry.DefaultDPI.
func (c *Config) EffectiveDPI() int {
	if c.DPI == nil {
		return geometry.DefaultDPI
	}
	return int(*c.DPI)
}

// Padding returns the window padding in geometry form.
func (c *Config) Padding() geometry.Padding {
	return geometry.Padding{
		Left:   c.WindowPadding.Left,
		Right:  c.WindowPadding.Right,
		Top:    c.WindowPadding.Top,
		Bottom: c.WindowPadding.Bottom,
	}
}

// CursorBlinkInterval returns the blink interval; zero disables blinking.
func (c *Config) CursorBlinkInterval() time.Duration {
	return time.Duration(c.CursorBlinkRate) * time.Millisecond
}

// MaintenanceInterval returns the period of the window maintenance tick.
func (c *Config) MaintenanceInterval() time.Duration {
	return time.Duration(c.MaintenanceIntervalMs) * time.Millisecond
}

// DefaultCursorShape returns the parsed default cursor style.
func (c *Config) DefaultCursorShape() mux.CursorShape {
	shape, _ := mux.ParseCursorShape(c.DefaultCursorStyle)
	if shape == mux.CursorDefault {
		return mux.CursorSteadyBlock
	}
	return shape
}

// CloseConfirmation returns the parsed window close confirmation mode.
func (c *Config) CloseConfirmation() CloseConfirmation {
	return CloseConfirmation(c.WindowCloseConfirmation)
}

// ShowTabBar decides tab bar visibility for a window holding numTabs tabs.
func (c *Config) ShowTabBar(numTabs int) bool {
	if numTabs <= 1 {
		return c.EnableTabBar && !c.HideTabBarIfOnlyOneTab
	}
	return c.EnableTabBar
}
