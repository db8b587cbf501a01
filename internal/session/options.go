package session

import (
	"fmt"
	"strings"

	"github.com/matjam/shmpaper/internal/wayland"
	"github.com/spf13/viper"
)

// Shell selects the overlay the window is created with.
type Shell string

const (
	ShellLayer Shell = "layer"
	ShellXdg   Shell = "xdg"
)

// Options is the resolved configuration of a session.
type Options struct {
	Display string
	Shell   Shell
	Width   int
	Height  int

	Layer                 wayland.Layer
	Namespace             string
	Anchor                wayland.Anchor
	ExclusiveZone         int32
	Margins               wayland.Margins
	KeyboardInteractivity wayland.KeyboardInteractivity

	Title string
	AppID string

	StopKey uint32
}

// DefaultOptions matches the shipped shmpaper.toml.
func DefaultOptions() Options {
	return Options{
		Shell:                 ShellLayer,
		Width:                 320,
		Height:                240,
		Layer:                 wayland.LayerTop,
		Namespace:             "shmpaper",
		Anchor:                wayland.AnchorAll,
		KeyboardInteractivity: wayland.KeyboardOnDemand,
		Title:                 "shmpaper",
		AppID:                 "shmpaper",
		StopKey:               wayland.KeyEscape,
	}
}

// OptionsFromConfig reads the options from viper. Unset keys keep their
// defaults.
func OptionsFromConfig() (Options, error) {
	o := DefaultOptions()

	if v := viper.GetString("display"); v != "" {
		o.Display = v
	}
	if v := viper.GetString("shell"); v != "" {
		o.Shell = Shell(strings.ToLower(v))
	}
	if viper.IsSet("width") {
		o.Width = viper.GetInt("width")
	}
	if viper.IsSet("height") {
		o.Height = viper.GetInt("height")
	}
	if v := viper.GetString("layer"); v != "" {
		l, err := wayland.ParseLayer(v)
		if err != nil {
			return o, err
		}
		o.Layer = l
	}
	if v := viper.GetString("namespace"); v != "" {
		o.Namespace = v
	}
	if v := viper.GetString("anchor"); v != "" {
		a, err := wayland.ParseAnchor(v)
		if err != nil {
			return o, err
		}
		o.Anchor = a
	}
	o.ExclusiveZone = viper.GetInt32("exclusive_zone")
	if m := viper.GetIntSlice("margin"); len(m) > 0 {
		margins, err := parseMargins(m)
		if err != nil {
			return o, err
		}
		o.Margins = margins
	}
	if v := viper.GetString("keyboard_interactivity"); v != "" {
		k, err := wayland.ParseKeyboardInteractivity(v)
		if err != nil {
			return o, err
		}
		o.KeyboardInteractivity = k
	}
	if v := viper.GetString("title"); v != "" {
		o.Title = v
	}
	if v := viper.GetString("app_id"); v != "" {
		o.AppID = v
	}
	if viper.IsSet("stop_key") {
		o.StopKey = viper.GetUint32("stop_key")
	}
	return o, o.Validate()
}

// parseMargins follows the CSS shorthand: one value for all sides, two for
// vertical and horizontal, four for top, right, bottom, left.
func parseMargins(m []int) (wayland.Margins, error) {
	switch len(m) {
	case 1:
		v := int32(m[0])
		return wayland.Margins{Top: v, Right: v, Bottom: v, Left: v}, nil
	case 2:
		return wayland.Margins{Top: int32(m[0]), Right: int32(m[1]), Bottom: int32(m[0]), Left: int32(m[1])}, nil
	case 4:
		return wayland.Margins{Top: int32(m[0]), Right: int32(m[1]), Bottom: int32(m[2]), Left: int32(m[3])}, nil
	}
	return wayland.Margins{}, fmt.Errorf("margin needs 1, 2 or 4 values, got %d", len(m))
}

func (o Options) Validate() error {
	if o.Shell != ShellLayer && o.Shell != ShellXdg {
		return fmt.Errorf("unknown shell %q (want %q or %q)", o.Shell, ShellLayer, ShellXdg)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", o.Width, o.Height)
	}
	// the pool size travels as an int32
	if int64(o.Width)*int64(o.Height)*4 > 1<<31-1 {
		return fmt.Errorf("size %dx%d is too large for a shm pool", o.Width, o.Height)
	}
	return nil
}
